package postgres

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/adelante-org/impact-api/internal/logger"
	"github.com/adelante-org/impact-api/internal/storage/migrations"
)

// DonorSummary is one row of the top-donors insight: a linked donor and their
// lifetime giving.
type DonorSummary struct {
	ParticipantID uuid.UUID `json:"participant_id"`
	FirstName     string    `json:"first_name"`
	LastName      string    `json:"last_name"`
	City          string    `json:"city"`
	Total         float64   `json:"total"`
	Count         int64     `json:"count"`
}

// DonationStats summarizes all qualifying donations, split by whether the
// donation is linked to a participant.
type DonationStats struct {
	Total           float64 `json:"total"`
	Count           int64   `json:"count"`
	AnonymousTotal  float64 `json:"anonymous_total"`
	AnonymousCount  int64   `json:"anonymous_count"`
	AverageDonation float64 `json:"average_donation"`
}

// PostgresDonationRepository implements DonationRepository using GORM
type PostgresDonationRepository struct {
	db  *gorm.DB
	log *log.Logger
}

// NewPostgresDonationRepository creates a new PostgreSQL donation repository
func NewPostgresDonationRepository(db *gorm.DB) *PostgresDonationRepository {
	return &PostgresDonationRepository{
		db:  db,
		log: logger.Repository("donation"),
	}
}

// Create records a donation. ParticipantID stays nil for visitor donations
// from the public site.
func (r *PostgresDonationRepository) Create(donation *migrations.Donation) error {
	if donation.Amount == nil || *donation.Amount <= 0 {
		r.log.Error("Rejected donation with missing or non-positive amount")
		return fmt.Errorf("donation amount must be positive")
	}

	if err := r.db.Create(donation).Error; err != nil {
		r.log.Error("Failed to create donation", "error", err)
		return fmt.Errorf("failed to create donation: %w", err)
	}

	r.log.Info("Donation recorded", "id", donation.ID, "anonymous", donation.ParticipantID == nil)
	return nil
}

// TopDonors returns linked donors ordered by lifetime giving. Null-amount,
// null-date and future-dated rows are excluded the same way the dashboard
// excludes them.
func (r *PostgresDonationRepository) TopDonors(limit int, now time.Time) ([]DonorSummary, error) {
	if limit <= 0 {
		limit = 10
	}

	var donors []DonorSummary
	if err := r.db.Model(&migrations.Donation{}).
		Select(`donations.participant_id AS participant_id,
            participants.first_name AS first_name,
            participants.last_name AS last_name,
            participants.city AS city,
            COALESCE(SUM(donations.amount), 0) AS total,
            COUNT(*) AS count`).
		Joins("JOIN participants ON participants.id = donations.participant_id").
		Where("donations.amount IS NOT NULL AND donations.date IS NOT NULL AND donations.date <= ?", now).
		Group("donations.participant_id, participants.first_name, participants.last_name, participants.city").
		Order("total DESC").
		Limit(limit).
		Scan(&donors).Error; err != nil {
		r.log.Error("Failed to load top donors", "error", err)
		return nil, fmt.Errorf("failed to load top donors: %w", err)
	}

	r.log.Debug("Top donors loaded", "count", len(donors))
	return donors, nil
}

// OverallStats returns the global donation summary.
func (r *PostgresDonationRepository) OverallStats(now time.Time) (*DonationStats, error) {
	var stats DonationStats
	if err := r.db.Model(&migrations.Donation{}).
		Select(`COALESCE(SUM(amount), 0) AS total,
            COUNT(*) AS count,
            COALESCE(SUM(amount) FILTER (WHERE participant_id IS NULL), 0) AS anonymous_total,
            COUNT(*) FILTER (WHERE participant_id IS NULL) AS anonymous_count,
            COALESCE(AVG(amount), 0) AS average_donation`).
		Where("amount IS NOT NULL AND date IS NOT NULL AND date <= ?", now).
		Scan(&stats).Error; err != nil {
		r.log.Error("Failed to load donation stats", "error", err)
		return nil, fmt.Errorf("failed to load donation stats: %w", err)
	}

	return &stats, nil
}
