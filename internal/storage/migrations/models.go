package migrations

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Custom types for GORM

// AppUserRole gates the admin surface. Managers see the dashboard and the
// maintenance pages; common users only see their own data.
type AppUserRole string

const (
	AppUserRoleManager AppUserRole = "manager"
	AppUserRoleCommon  AppUserRole = "common"
)

func (r *AppUserRole) Scan(value any) error {
	if value == nil {
		*r = AppUserRoleCommon
		return nil
	}
	if str, ok := value.(string); ok {
		*r = AppUserRole(str)
		return nil
	}
	return fmt.Errorf("cannot scan %T into AppUserRole", value)
}

func (r AppUserRole) Value() (driver.Value, error) {
	return string(r), nil
}

// NPSBucket is the derived loyalty segment of a survey's recommendation score
// on the 0-5 scale: 4-5 promoter, 3 passive, 0-2 detractor.
type NPSBucket string

const (
	NPSBucketPromoter  NPSBucket = "Promoter"
	NPSBucketPassive   NPSBucket = "Passive"
	NPSBucketDetractor NPSBucket = "Detractor"
)

func (b *NPSBucket) Scan(value any) error {
	if value == nil {
		*b = ""
		return nil
	}
	if str, ok := value.(string); ok {
		*b = NPSBucket(str)
		return nil
	}
	return fmt.Errorf("cannot scan %T into NPSBucket", value)
}

func (b NPSBucket) Value() (driver.Value, error) {
	if b == "" {
		return nil, nil
	}
	return string(b), nil
}

// Core Models for the Program Management System

// Participant is a person enrolled in the organization's programs. City and
// role are the demographic attributes the dashboard filters on.
type Participant struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	Email            string     `gorm:"uniqueIndex;not null" json:"email"`
	FirstName        string     `gorm:"not null" json:"first_name"`
	LastName         string     `gorm:"not null" json:"last_name"`
	DateOfBirth      *time.Time `gorm:"type:date" json:"date_of_birth"`
	Role             string     `gorm:"size:50" json:"role"`
	Phone            string     `gorm:"size:30" json:"phone"`
	City             string     `gorm:"size:100" json:"city"`
	State            string     `gorm:"size:50" json:"state"`
	Zip              string     `gorm:"size:20" json:"zip"`
	SchoolOrEmployer string     `json:"school_or_employer"`
	FieldOfInterest  string     `json:"field_of_interest"`
	CreatedAt        time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	// Relations
	Registrations []Registration `gorm:"foreignKey:ParticipantID" json:"registrations,omitempty"`
	Milestones    []Milestone    `gorm:"foreignKey:ParticipantID" json:"milestones,omitempty"`
	Donations     []Donation     `gorm:"foreignKey:ParticipantID" json:"donations,omitempty"`
}

func (Participant) TableName() string {
	return "participants"
}

// EventDefinition is a reusable event template: name, type and recurrence.
type EventDefinition struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	Name              string    `gorm:"not null" json:"name"`
	Description       string    `gorm:"type:text" json:"description"`
	EventType         string    `gorm:"size:50;not null" json:"event_type"`
	RecurrencePattern string    `gorm:"size:50" json:"recurrence_pattern"`
	CreatedAt         time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Relations
	Instances []EventInstance `gorm:"foreignKey:EventDefinitionID" json:"instances,omitempty"`
}

func (EventDefinition) TableName() string {
	return "event_definitions"
}

// EventInstance is one scheduled occurrence of a definition.
type EventInstance struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	EventDefinitionID uuid.UUID `gorm:"type:uuid;not null" json:"event_definition_id"`
	StartTime         time.Time `gorm:"not null" json:"start_time"`
	EndTime           time.Time `gorm:"not null" json:"end_time"`
	Location          string    `gorm:"size:200" json:"location"`
	Capacity          *int      `json:"capacity"`
	CreatedAt         time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Relations
	Definition    EventDefinition `gorm:"foreignKey:EventDefinitionID" json:"definition,omitempty"`
	Registrations []Registration  `gorm:"foreignKey:EventInstanceID" json:"registrations,omitempty"`
}

func (EventInstance) TableName() string {
	return "event_instances"
}

// Registration enrolls a participant in one event instance. A participant
// registers at most once per instance.
type Registration struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	ParticipantID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_registrations_participant_instance" json:"participant_id"`
	EventInstanceID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_registrations_participant_instance" json:"event_instance_id"`
	Status          string    `gorm:"size:30;not null;default:'registered'" json:"status"`
	Attended        bool      `gorm:"not null;default:false" json:"attended"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`

	// Relations
	Participant Participant   `gorm:"foreignKey:ParticipantID" json:"participant,omitempty"`
	Instance    EventInstance `gorm:"foreignKey:EventInstanceID" json:"instance,omitempty"`
	Survey      *Survey       `gorm:"foreignKey:RegistrationID" json:"survey,omitempty"`
}

func (Registration) TableName() string {
	return "registrations"
}

// Survey is the post-event feedback for one registration, at most one per
// registration. Scores are 0-5; nil means the question was not answered and
// the aggregator treats it as "no response", never as zero.
type Survey struct {
	ID                  uuid.UUID  `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	RegistrationID      uuid.UUID  `gorm:"type:uuid;uniqueIndex;not null" json:"registration_id"`
	SatisfactionScore   *int       `json:"satisfaction_score"`
	UsefulnessScore     *int       `json:"usefulness_score"`
	InstructorScore     *int       `json:"instructor_score"`
	RecommendationScore *int       `json:"recommendation_score"`
	OverallScore        *float64   `gorm:"type:decimal(4,2)" json:"overall_score"`
	NPSBucket           NPSBucket  `gorm:"type:nps_bucket" json:"nps_bucket"`
	Comments            string     `gorm:"type:text" json:"comments"`
	SubmittedAt         *time.Time `json:"submitted_at"`

	// Relations
	Registration Registration `gorm:"foreignKey:RegistrationID" json:"registration,omitempty"`
}

func (Survey) TableName() string {
	return "surveys"
}

// Milestone is a participant achievement. Classification (higher-ed, job,
// STEAM) is keyword matching on the free-text title; there is no category
// column. Known data-model gap carried over from the schema.
type Milestone struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	ParticipantID uuid.UUID  `gorm:"type:uuid;not null" json:"participant_id"`
	Title         string     `gorm:"not null" json:"title"`
	AchievedOn    *time.Time `gorm:"type:date" json:"achieved_on"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"created_at"`

	// Relations
	Participant Participant `gorm:"foreignKey:ParticipantID" json:"participant,omitempty"`
}

func (Milestone) TableName() string {
	return "milestones"
}

// Donation may be anonymous: ParticipantID is NULL for visitor donations from
// the public site. Amount and Date are nullable in the wild, so time-bounded
// aggregates must exclude NULL and future-dated rows.
type Donation struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	ParticipantID *uuid.UUID `gorm:"type:uuid" json:"participant_id"`
	Amount        *float64   `gorm:"type:decimal(14,2)" json:"amount"`
	Date          *time.Time `json:"date"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"created_at"`

	// Relations
	Participant *Participant `gorm:"foreignKey:ParticipantID" json:"participant,omitempty"`
}

func (Donation) TableName() string {
	return "donations"
}

// AppUser is a login account for the admin surface, optionally linked to a
// participant record.
type AppUser struct {
	ID            uuid.UUID   `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	Username      string      `gorm:"uniqueIndex;not null" json:"username"`
	PasswordHash  string      `gorm:"not null" json:"-"`
	Role          AppUserRole `gorm:"type:app_user_role;not null;default:'common'" json:"role"`
	ParticipantID *uuid.UUID  `gorm:"type:uuid" json:"participant_id"`
	CreatedAt     time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time   `gorm:"autoUpdateTime" json:"updated_at"`

	// Relations
	Participant *Participant `gorm:"foreignKey:ParticipantID" json:"participant,omitempty"`
}

func (AppUser) TableName() string {
	return "app_users"
}

// AllModels returns a slice of all models for migration
func AllModels() []any {
	return []any{
		&Participant{},
		&EventDefinition{},
		&EventInstance{},
		&Registration{},
		&Survey{},
		&Milestone{},
		&Donation{},
		&AppUser{},
	}
}
