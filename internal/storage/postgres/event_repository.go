package postgres

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"gorm.io/gorm"

	"github.com/adelante-org/impact-api/internal/logger"
	"github.com/adelante-org/impact-api/internal/storage/migrations"
)

// PostgresEventRepository implements EventRepository using GORM
type PostgresEventRepository struct {
	db  *gorm.DB
	log *log.Logger
}

// NewPostgresEventRepository creates a new PostgreSQL event repository
func NewPostgresEventRepository(db *gorm.DB) *PostgresEventRepository {
	return &PostgresEventRepository{
		db:  db,
		log: logger.Repository("event"),
	}
}

// UpcomingInstances returns event instances starting after now, soonest first,
// with their definitions preloaded for the public listing.
func (r *PostgresEventRepository) UpcomingInstances(now time.Time, limit int) ([]*migrations.EventInstance, error) {
	if limit <= 0 {
		limit = 20
	}

	var instances []*migrations.EventInstance
	if err := r.db.Preload("Definition").
		Where("start_time > ?", now).
		Order("start_time ASC").
		Limit(limit).
		Find(&instances).Error; err != nil {
		r.log.Error("Failed to load upcoming event instances", "error", err)
		return nil, fmt.Errorf("failed to load upcoming event instances: %w", err)
	}

	r.log.Debug("Upcoming event instances loaded", "count", len(instances))
	return instances, nil
}
