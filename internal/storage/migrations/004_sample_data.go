package migrations

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// migration004Up inserts sample data for development and testing
func migration004Up(db *gorm.DB) error {
	// Sample participants with fixed UUIDs for consistent testing
	participants := `
        INSERT INTO participants (id, email, first_name, last_name, role, city, state, zip, school_or_employer, field_of_interest, created_at, updated_at) VALUES
        ('550e8400-e29b-41d4-a716-446655440001', 'maria.gonzalez@example.com', 'Maria', 'Gonzalez', 'Student', 'Provo', 'UT', '84601', 'Provo High School', 'Engineering', NOW() - INTERVAL '8 months', NOW()),
        ('550e8400-e29b-41d4-a716-446655440002', 'carlos.rivera@example.com', 'Carlos', 'Rivera', 'Student', 'Provo', 'UT', '84604', 'Timpview High School', 'Computer Science', NOW() - INTERVAL '6 months', NOW()),
        ('550e8400-e29b-41d4-a716-446655440003', 'ana.torres@example.com', 'Ana', 'Torres', 'Parent', 'Salt Lake City', 'UT', '84101', '', '', NOW() - INTERVAL '5 months', NOW()),
        ('550e8400-e29b-41d4-a716-446655440004', 'luis.mendoza@example.com', 'Luis', 'Mendoza', 'Mentor', 'Salt Lake City', 'UT', '84111', 'University of Utah', 'Biology', NOW() - INTERVAL '4 months', NOW()),
        ('550e8400-e29b-41d4-a716-446655440005', 'sofia.herrera@example.com', 'Sofia', 'Herrera', 'Student', 'Orem', 'UT', '84057', 'Orem High School', 'Medicine', NOW() - INTERVAL '2 months', NOW())
        ON CONFLICT (id) DO NOTHING
    `
	if err := db.Exec(participants).Error; err != nil {
		return fmt.Errorf("failed to insert sample participants: %w", err)
	}

	definitions := `
        INSERT INTO event_definitions (id, name, description, event_type, recurrence_pattern, created_at, updated_at) VALUES
        ('660e8400-e29b-41d4-a716-446655440001', 'Robotics Workshop', 'Hands-on robotics for high schoolers', 'STEAM', 'weekly', NOW() - INTERVAL '8 months', NOW()),
        ('660e8400-e29b-41d4-a716-446655440002', 'Dia de los Muertos Celebration', 'Community heritage celebration', 'Heritage', 'yearly', NOW() - INTERVAL '8 months', NOW()),
        ('660e8400-e29b-41d4-a716-446655440003', 'Youth Leadership Summit', 'Leadership training for program participants', 'Leadership', 'monthly', NOW() - INTERVAL '6 months', NOW())
        ON CONFLICT (id) DO NOTHING
    `
	if err := db.Exec(definitions).Error; err != nil {
		return fmt.Errorf("failed to insert sample event definitions: %w", err)
	}

	instances := `
        INSERT INTO event_instances (id, event_definition_id, start_time, end_time, location, capacity, created_at, updated_at) VALUES
        ('770e8400-e29b-41d4-a716-446655440001', '660e8400-e29b-41d4-a716-446655440001', NOW() - INTERVAL '2 months', NOW() - INTERVAL '2 months' + INTERVAL '2 hours', 'Provo Rec Center', 30, NOW(), NOW()),
        ('770e8400-e29b-41d4-a716-446655440002', '660e8400-e29b-41d4-a716-446655440002', NOW() - INTERVAL '1 month', NOW() - INTERVAL '1 month' + INTERVAL '4 hours', 'Pioneer Park', 200, NOW(), NOW()),
        ('770e8400-e29b-41d4-a716-446655440003', '660e8400-e29b-41d4-a716-446655440003', NOW() + INTERVAL '2 weeks', NOW() + INTERVAL '2 weeks' + INTERVAL '3 hours', 'Community Center', 50, NOW(), NOW())
        ON CONFLICT (id) DO NOTHING
    `
	if err := db.Exec(instances).Error; err != nil {
		return fmt.Errorf("failed to insert sample event instances: %w", err)
	}

	registrations := `
        INSERT INTO registrations (id, participant_id, event_instance_id, status, attended, created_at) VALUES
        ('880e8400-e29b-41d4-a716-446655440001', '550e8400-e29b-41d4-a716-446655440001', '770e8400-e29b-41d4-a716-446655440001', 'registered', true, NOW() - INTERVAL '2 months'),
        ('880e8400-e29b-41d4-a716-446655440002', '550e8400-e29b-41d4-a716-446655440002', '770e8400-e29b-41d4-a716-446655440001', 'registered', false, NOW() - INTERVAL '2 months'),
        ('880e8400-e29b-41d4-a716-446655440003', '550e8400-e29b-41d4-a716-446655440003', '770e8400-e29b-41d4-a716-446655440002', 'registered', true, NOW() - INTERVAL '1 month'),
        ('880e8400-e29b-41d4-a716-446655440004', '550e8400-e29b-41d4-a716-446655440001', '770e8400-e29b-41d4-a716-446655440003', 'registered', false, NOW() - INTERVAL '1 week')
        ON CONFLICT (id) DO NOTHING
    `
	if err := db.Exec(registrations).Error; err != nil {
		return fmt.Errorf("failed to insert sample registrations: %w", err)
	}

	surveys := `
        INSERT INTO surveys (id, registration_id, satisfaction_score, usefulness_score, instructor_score, recommendation_score, overall_score, nps_bucket, comments, submitted_at) VALUES
        ('990e8400-e29b-41d4-a716-446655440001', '880e8400-e29b-41d4-a716-446655440001', 5, 4, 5, 5, 4.75, 'Promoter', 'Loved building the robot arm', NOW() - INTERVAL '2 months' + INTERVAL '1 day'),
        ('990e8400-e29b-41d4-a716-446655440002', '880e8400-e29b-41d4-a716-446655440003', 4, 3, 4, 3, 3.50, 'Passive', '', NOW() - INTERVAL '1 month' + INTERVAL '1 day')
        ON CONFLICT (id) DO NOTHING
    `
	if err := db.Exec(surveys).Error; err != nil {
		return fmt.Errorf("failed to insert sample surveys: %w", err)
	}

	milestones := `
        INSERT INTO milestones (id, participant_id, title, achieved_on, created_at) VALUES
        ('aa0e8400-e29b-41d4-a716-446655440001', '550e8400-e29b-41d4-a716-446655440001', 'Accepted to Utah Valley University', NOW() - INTERVAL '1 month', NOW() - INTERVAL '1 month'),
        ('aa0e8400-e29b-41d4-a716-446655440002', '550e8400-e29b-41d4-a716-446655440002', 'Completed FAFSA application', NOW() - INTERVAL '2 weeks', NOW() - INTERVAL '2 weeks'),
        ('aa0e8400-e29b-41d4-a716-446655440003', '550e8400-e29b-41d4-a716-446655440004', 'Started internship at biotech lab', NOW() - INTERVAL '3 weeks', NOW() - INTERVAL '3 weeks')
        ON CONFLICT (id) DO NOTHING
    `
	if err := db.Exec(milestones).Error; err != nil {
		return fmt.Errorf("failed to insert sample milestones: %w", err)
	}

	donations := `
        INSERT INTO donations (id, participant_id, amount, date, created_at) VALUES
        ('bb0e8400-e29b-41d4-a716-446655440001', '550e8400-e29b-41d4-a716-446655440003', 250.00, NOW() - INTERVAL '2 months', NOW() - INTERVAL '2 months'),
        ('bb0e8400-e29b-41d4-a716-446655440002', '550e8400-e29b-41d4-a716-446655440004', 100.00, NOW() - INTERVAL '3 weeks', NOW() - INTERVAL '3 weeks'),
        ('bb0e8400-e29b-41d4-a716-446655440003', NULL, 75.00, NOW() - INTERVAL '1 week', NOW() - INTERVAL '1 week')
        ON CONFLICT (id) DO NOTHING
    `
	if err := db.Exec(donations).Error; err != nil {
		return fmt.Errorf("failed to insert sample donations: %w", err)
	}

	// Default manager account for local development. Hash at insert time so no
	// plaintext or precomputed hash lives in the schema.
	hash, err := bcrypt.GenerateFromPassword([]byte("changeme"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash default manager password: %w", err)
	}

	if err := db.Exec(`
        INSERT INTO app_users (id, username, password_hash, role, created_at, updated_at) VALUES
        ('cc0e8400-e29b-41d4-a716-446655440001', 'admin', ?, 'manager', NOW(), NOW())
        ON CONFLICT (id) DO NOTHING
    `, string(hash)).Error; err != nil {
		return fmt.Errorf("failed to insert default manager account: %w", err)
	}

	return nil
}

// migration004Down removes the sample data
func migration004Down(db *gorm.DB) error {
	statements := []string{
		"DELETE FROM app_users WHERE id = 'cc0e8400-e29b-41d4-a716-446655440001'",
		"DELETE FROM donations WHERE id::text LIKE 'bb0e8400-e29b-41d4-a716-%'",
		"DELETE FROM milestones WHERE id::text LIKE 'aa0e8400-e29b-41d4-a716-%'",
		"DELETE FROM surveys WHERE id::text LIKE '990e8400-e29b-41d4-a716-%'",
		"DELETE FROM registrations WHERE id::text LIKE '880e8400-e29b-41d4-a716-%'",
		"DELETE FROM event_instances WHERE id::text LIKE '770e8400-e29b-41d4-a716-%'",
		"DELETE FROM event_definitions WHERE id::text LIKE '660e8400-e29b-41d4-a716-%'",
		"DELETE FROM participants WHERE id::text LIKE '550e8400-e29b-41d4-a716-%'",
	}

	for _, stmt := range statements {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}

	return nil
}
