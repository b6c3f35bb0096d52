package postgres

import (
	"time"

	"github.com/google/uuid"

	"github.com/adelante-org/impact-api/internal/domain/dashboard"
	"github.com/adelante-org/impact-api/internal/storage/migrations"
)

// DashboardRepository exposes the aggregate queries behind the admin dashboard.
// Every method that takes an IDSets respects its scope: unfiltered runs hit the
// whole table, filtered runs are restricted to the resolved ID sets, and a
// filtered run with an empty set short-circuits to zero without touching the DB.
type DashboardRepository interface {
	FilterOptions() (*dashboard.FilterOptions, error)
	ResolveFilters(filters dashboard.Filters) (*dashboard.IDSets, error)

	ParticipantCount(ids *dashboard.IDSets) (int64, error)
	AverageSatisfaction(ids *dashboard.IDSets) (avg float64, scored int64, err error)
	HigherEdMilestoneCount(ids *dashboard.IDSets) (int64, error)
	DonationTotal(ids *dashboard.IDSets, now time.Time) (float64, error)
	NPSCounts(ids *dashboard.IDSets) (promoters, detractors, total int64, err error)
	AttendanceCounts(ids *dashboard.IDSets) (attended, total int64, err error)
	EventInstanceCount() (int64, error)
	UpcomingRegistrationCount(ids *dashboard.IDSets, now time.Time) (int64, error)

	ParticipantCountInWindow(ids *dashboard.IDSets, w dashboard.Window) (int64, error)
	DonationTotalInWindow(ids *dashboard.IDSets, w dashboard.Window) (float64, error)
	AverageSatisfactionInWindow(ids *dashboard.IDSets, w dashboard.Window) (avg float64, scored int64, err error)
	HigherEdMilestoneCountInWindow(ids *dashboard.IDSets, w dashboard.Window) (int64, error)

	SatisfactionByEventType(ids *dashboard.IDSets) ([]dashboard.TypeScore, error)
	DonationTotalsByCity(ids *dashboard.IDSets, now time.Time, topN int) ([]dashboard.CityAmount, error)
	MonthlyRegistrations(ids *dashboard.IDSets, w dashboard.Window) ([]dashboard.MonthCount, error)
	MonthlySatisfaction(ids *dashboard.IDSets, w dashboard.Window) ([]dashboard.MonthScore, error)
	MonthlyDonations(ids *dashboard.IDSets, w dashboard.Window) ([]dashboard.MonthAmount, error)
}

// DonationRepository records donations and answers the donor insight queries.
type DonationRepository interface {
	Create(donation *migrations.Donation) error
	TopDonors(limit int, now time.Time) ([]DonorSummary, error)
	OverallStats(now time.Time) (*DonationStats, error)
}

// EventRepository serves the public upcoming-events listing.
type EventRepository interface {
	UpcomingInstances(now time.Time, limit int) ([]*migrations.EventInstance, error)
}

// UserRepository looks up login accounts for the admin surface.
type UserRepository interface {
	GetByUsername(username string) (*migrations.AppUser, error)
	GetByID(id uuid.UUID) (*migrations.AppUser, error)
}
