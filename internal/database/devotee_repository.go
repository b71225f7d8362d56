package database

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"github.com/templetrust/seva-booking-backend/internal/models"
)

// devoteeColumns is the canonical column list for devotee scans
const devoteeColumns = `id, mobile, full_name, gothram, state, district, taluk,
	pincode, place, full_address, total_amount_spent, seva_count, created_at, updated_at`

// DevoteeRepository handles database operations for the devotee
// directory
type DevoteeRepository struct {
	db     *sqlx.DB
	logger *logrus.Logger
}

// NewDevoteeRepository creates a new DevoteeRepository
func NewDevoteeRepository(db *sqlx.DB, logger *logrus.Logger) *DevoteeRepository {
	return &DevoteeRepository{db: db, logger: logger}
}

// upsertTx merges a devotee inside a booking-create transaction. The
// single INSERT .. ON CONFLICT statement serializes concurrent bookings
// for the same phone number, so the spend and visit counters cannot
// lose updates. Empty incoming fields never erase stored values.
func (r *DevoteeRepository) upsertTx(tx *sqlx.Tx, mobile string, profile models.DevoteeProfile, amountDelta float64) error {
	query := `
		INSERT INTO devotees (
			id, mobile, full_name, gothram, state, district, taluk,
			pincode, place, full_address, total_amount_spent, seva_count
		) VALUES (
			$1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''), NULLIF($7, ''),
			NULLIF($8, ''), NULLIF($9, ''), NULLIF($10, ''), $11, 1
		)
		ON CONFLICT (mobile) DO UPDATE SET
			full_name          = COALESCE(NULLIF(EXCLUDED.full_name, ''), devotees.full_name),
			gothram            = COALESCE(EXCLUDED.gothram, devotees.gothram),
			state              = COALESCE(EXCLUDED.state, devotees.state),
			district           = COALESCE(EXCLUDED.district, devotees.district),
			taluk              = COALESCE(EXCLUDED.taluk, devotees.taluk),
			pincode            = COALESCE(EXCLUDED.pincode, devotees.pincode),
			place              = COALESCE(EXCLUDED.place, devotees.place),
			full_address       = COALESCE(EXCLUDED.full_address, devotees.full_address),
			total_amount_spent = devotees.total_amount_spent + EXCLUDED.total_amount_spent,
			seva_count         = devotees.seva_count + 1,
			updated_at         = NOW()`

	_, err := tx.Exec(query,
		uuid.New(), mobile, profile.FullName, profile.Gothram, profile.State,
		profile.District, profile.Taluk, profile.Pincode, profile.Place,
		profile.FullAddress, amountDelta,
	)
	return err
}

// GetByMobile retrieves a devotee by phone number. Used by the client
// prefill flow and admin search.
func (r *DevoteeRepository) GetByMobile(mobile string) (*models.Devotee, error) {
	query := `SELECT ` + devoteeColumns + ` FROM devotees WHERE mobile = $1`

	var devotee models.Devotee
	if err := r.db.Get(&devotee, query, mobile); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch devotee: %w", err)
	}

	return &devotee, nil
}

// GetByID retrieves a devotee by ID
func (r *DevoteeRepository) GetByID(devoteeID uuid.UUID) (*models.Devotee, error) {
	query := `SELECT ` + devoteeColumns + ` FROM devotees WHERE id = $1`

	var devotee models.Devotee
	if err := r.db.Get(&devotee, query, devoteeID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch devotee: %w", err)
	}

	return &devotee, nil
}

// List retrieves all devotees, biggest lifetime spenders first
func (r *DevoteeRepository) List() ([]models.Devotee, error) {
	query := `SELECT ` + devoteeColumns + ` FROM devotees ORDER BY total_amount_spent DESC`

	devotees := []models.Devotee{}
	if err := r.db.Select(&devotees, query); err != nil {
		return nil, fmt.Errorf("failed to list devotees: %w", err)
	}

	return devotees, nil
}

// Update applies an admin correction to a devotee. When the mobile
// number changes, every historical booking carrying the old number is
// repointed to the new one in the same transaction; a collision with
// another devotee aborts the whole rename.
func (r *DevoteeRepository) Update(devoteeID uuid.UUID, patch *models.UpdateDevoteeRequest) (*models.Devotee, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var current models.Devotee
	if err := tx.Get(&current, `SELECT `+devoteeColumns+` FROM devotees WHERE id = $1 FOR UPDATE`, devoteeID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch devotee: %w", err)
	}

	if patch.Mobile != nil && *patch.Mobile != current.Mobile {
		var existing int
		err := tx.Get(&existing, `SELECT COUNT(*) FROM devotees WHERE mobile = $1 AND id != $2`, *patch.Mobile, devoteeID)
		if err != nil {
			return nil, fmt.Errorf("failed to check mobile collision: %w", err)
		}
		if existing > 0 {
			return nil, ErrDuplicateMobile
		}

		result, err := tx.Exec(`UPDATE bookings SET guest_phone = $1, updated_at = NOW() WHERE guest_phone = $2`,
			*patch.Mobile, current.Mobile)
		if err != nil {
			return nil, fmt.Errorf("failed to repoint bookings: %w", err)
		}
		repointed, _ := result.RowsAffected()
		r.logger.WithFields(logrus.Fields{
			"devotee_id": devoteeID,
			"old_mobile": current.Mobile,
			"new_mobile": *patch.Mobile,
			"bookings":   repointed,
		}).Info("Devotee mobile renamed, bookings repointed")
	}

	set := []string{}
	args := []interface{}{}
	add := func(column string, value interface{}) {
		args = append(args, value)
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.Mobile != nil {
		add("mobile", *patch.Mobile)
	}
	if patch.FullName != nil {
		add("full_name", *patch.FullName)
	}
	if patch.Gothram != nil {
		add("gothram", *patch.Gothram)
	}
	if patch.State != nil {
		add("state", *patch.State)
	}
	if patch.District != nil {
		add("district", *patch.District)
	}
	if patch.Taluk != nil {
		add("taluk", *patch.Taluk)
	}
	if patch.Pincode != nil {
		add("pincode", *patch.Pincode)
	}
	if patch.Place != nil {
		add("place", *patch.Place)
	}
	if patch.FullAddress != nil {
		add("full_address", *patch.FullAddress)
	}

	updated := current
	if len(set) > 0 {
		args = append(args, devoteeID)
		query := fmt.Sprintf(`
			UPDATE devotees
			SET %s, updated_at = NOW()
			WHERE id = $%d
			RETURNING `+devoteeColumns, strings.Join(set, ", "), len(args))

		if err := tx.Get(&updated, query, args...); err != nil {
			if isUniqueViolation(err, "") {
				return nil, ErrDuplicateMobile
			}
			return nil, fmt.Errorf("failed to update devotee: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &updated, nil
}

// Delete removes a devotee row only. Historical bookings keep the
// name/phone snapshot already stored on them.
func (r *DevoteeRepository) Delete(devoteeID uuid.UUID) error {
	result, err := r.db.Exec(`DELETE FROM devotees WHERE id = $1`, devoteeID)
	if err != nil {
		return fmt.Errorf("failed to delete devotee: %w", err)
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
