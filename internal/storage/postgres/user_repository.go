package postgres

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/adelante-org/impact-api/internal/logger"
	"github.com/adelante-org/impact-api/internal/storage/migrations"
)

// ErrUserNotFound is returned when a login account does not exist.
var ErrUserNotFound = errors.New("user not found")

// PostgresUserRepository implements UserRepository using GORM
type PostgresUserRepository struct {
	db  *gorm.DB
	log *log.Logger
}

// NewPostgresUserRepository creates a new PostgreSQL user repository
func NewPostgresUserRepository(db *gorm.DB) *PostgresUserRepository {
	return &PostgresUserRepository{
		db:  db,
		log: logger.Repository("user"),
	}
}

func (r *PostgresUserRepository) GetByUsername(username string) (*migrations.AppUser, error) {
	r.log.Debug("retrieving user by username", "username", username)

	if username == "" {
		return nil, errors.New("username cannot be empty")
	}

	var user migrations.AppUser
	if err := r.db.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.log.Debug("User not found", "username", username)
			return nil, ErrUserNotFound
		}
		r.log.Error("Failed to get user by username", "username", username, "error", err)
		return nil, fmt.Errorf("failed to get user by username: %w", err)
	}

	return &user, nil
}

func (r *PostgresUserRepository) GetByID(id uuid.UUID) (*migrations.AppUser, error) {
	r.log.Debug("retrieving user by ID", "user_id", id)

	var user migrations.AppUser
	if err := r.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.log.Debug("User not found", "user_id", id)
			return nil, ErrUserNotFound
		}
		r.log.Error("Failed to get user by ID", "user_id", id, "error", err)
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}

	return &user, nil
}
