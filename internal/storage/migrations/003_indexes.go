package migrations

import "gorm.io/gorm"

// migration003Up creates performance indexes for the dashboard aggregates
func migration003Up(db *gorm.DB) error {
	indexes := []string{
		// Filter resolution scans participants by demographic attributes
		"CREATE INDEX IF NOT EXISTS idx_participants_city ON participants(city)",
		"CREATE INDEX IF NOT EXISTS idx_participants_role ON participants(role)",
		"CREATE INDEX IF NOT EXISTS idx_participants_created_at ON participants(created_at)",

		// Registration lookups by participant, instance and month bucket
		"CREATE INDEX IF NOT EXISTS idx_registrations_participant_id ON registrations(participant_id)",
		"CREATE INDEX IF NOT EXISTS idx_registrations_event_instance_id ON registrations(event_instance_id)",
		"CREATE INDEX IF NOT EXISTS idx_registrations_created_at ON registrations(created_at)",

		// Instance joins back to definitions and upcoming-event scans
		"CREATE INDEX IF NOT EXISTS idx_event_instances_definition_id ON event_instances(event_definition_id)",
		"CREATE INDEX IF NOT EXISTS idx_event_instances_start_time ON event_instances(start_time)",

		// Survey and milestone aggregates
		"CREATE INDEX IF NOT EXISTS idx_surveys_submitted_at ON surveys(submitted_at)",
		"CREATE INDEX IF NOT EXISTS idx_milestones_participant_id ON milestones(participant_id)",

		// Donation totals filter on donor and date
		"CREATE INDEX IF NOT EXISTS idx_donations_participant_id ON donations(participant_id)",
		"CREATE INDEX IF NOT EXISTS idx_donations_date ON donations(date)",
	}

	for _, index := range indexes {
		if err := db.Exec(index).Error; err != nil {
			return err
		}
	}

	return nil
}

// migration003Down drops the performance indexes
func migration003Down(db *gorm.DB) error {
	indexes := []string{
		"DROP INDEX IF EXISTS idx_participants_city",
		"DROP INDEX IF EXISTS idx_participants_role",
		"DROP INDEX IF EXISTS idx_participants_created_at",
		"DROP INDEX IF EXISTS idx_registrations_participant_id",
		"DROP INDEX IF EXISTS idx_registrations_event_instance_id",
		"DROP INDEX IF EXISTS idx_registrations_created_at",
		"DROP INDEX IF EXISTS idx_event_instances_definition_id",
		"DROP INDEX IF EXISTS idx_event_instances_start_time",
		"DROP INDEX IF EXISTS idx_surveys_submitted_at",
		"DROP INDEX IF EXISTS idx_milestones_participant_id",
		"DROP INDEX IF EXISTS idx_donations_participant_id",
		"DROP INDEX IF EXISTS idx_donations_date",
	}

	for _, index := range indexes {
		if err := db.Exec(index).Error; err != nil {
			return err
		}
	}

	return nil
}
