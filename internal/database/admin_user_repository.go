package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/templetrust/seva-booking-backend/internal/models"
)

// AdminUserRepository handles database operations for temple staff
// accounts
type AdminUserRepository struct {
	db DB
}

// NewAdminUserRepository creates a new AdminUserRepository
func NewAdminUserRepository(db DB) *AdminUserRepository {
	return &AdminUserRepository{db: db}
}

// GetByPhone retrieves a staff account by phone number
func (r *AdminUserRepository) GetByPhone(phone string) (*models.AdminUser, error) {
	query := `
		SELECT id, phone, name, password_hash, role, created_at, updated_at
		FROM admin_users
		WHERE phone = $1`

	var user models.AdminUser
	if err := r.db.Get(&user, query, phone); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch admin user: %w", err)
	}

	return &user, nil
}

// GetByID retrieves a staff account by ID
func (r *AdminUserRepository) GetByID(userID uuid.UUID) (*models.AdminUser, error) {
	query := `
		SELECT id, phone, name, password_hash, role, created_at, updated_at
		FROM admin_users
		WHERE id = $1`

	var user models.AdminUser
	if err := r.db.Get(&user, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch admin user: %w", err)
	}

	return &user, nil
}

// UpdatePassword stores a new bcrypt hash for a staff account
func (r *AdminUserRepository) UpdatePassword(userID uuid.UUID, passwordHash string) error {
	result, err := r.db.Exec(`UPDATE admin_users SET password_hash = $2, updated_at = NOW() WHERE id = $1`,
		userID, passwordHash)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}
