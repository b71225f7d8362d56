package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/templetrust/seva-booking-backend/internal/models"
)

// sevaColumns is the canonical column list for seva scans
const sevaColumns = `id, title, title_kn, temple_name, temple_name_kn,
	location, location_kn, price, category, created_at, updated_at`

// SevaRepository is the read-only view of the seva catalog the booking
// engine resolves against. Catalog management lives outside this
// service.
type SevaRepository struct {
	db DB
}

// NewSevaRepository creates a new SevaRepository
func NewSevaRepository(db DB) *SevaRepository {
	return &SevaRepository{db: db}
}

// GetByID retrieves a seva by ID
func (r *SevaRepository) GetByID(sevaID uuid.UUID) (*models.Seva, error) {
	query := `SELECT ` + sevaColumns + ` FROM sevas WHERE id = $1`

	var seva models.Seva
	if err := r.db.Get(&seva, query, sevaID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSevaNotFound
		}
		return nil, fmt.Errorf("failed to fetch seva: %w", err)
	}

	return &seva, nil
}

// List retrieves the full catalog ordered by title
func (r *SevaRepository) List() ([]models.Seva, error) {
	query := `SELECT ` + sevaColumns + ` FROM sevas ORDER BY title`

	sevas := []models.Seva{}
	if err := r.db.Select(&sevas, query); err != nil {
		return nil, fmt.Errorf("failed to list sevas: %w", err)
	}

	return sevas, nil
}
