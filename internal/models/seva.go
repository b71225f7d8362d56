package models

import (
	"time"

	"github.com/google/uuid"
)

// Seva is a catalog entry for a paid ritual. The booking engine only
// reads the catalog; names are snapshotted onto bookings at creation so
// historical receipts stay stable if the catalog changes.
type Seva struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Title        string    `json:"title" db:"title"`
	TitleKn      *string   `json:"title_kn,omitempty" db:"title_kn"`
	TempleName   string    `json:"temple_name" db:"temple_name"`
	TempleNameKn *string   `json:"temple_name_kn,omitempty" db:"temple_name_kn"`
	Location     *string   `json:"location,omitempty" db:"location"`
	LocationKn   *string   `json:"location_kn,omitempty" db:"location_kn"`
	Price        float64   `json:"price" db:"price"`
	Category     *string   `json:"category,omitempty" db:"category"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// DisplayName returns the readable name used for receipts and
// notifications
func (s *Seva) DisplayName() string {
	if s.Title != "" {
		return s.Title
	}
	if s.TitleKn != nil {
		return *s.TitleKn
	}
	return "Seva"
}
