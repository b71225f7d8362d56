package database

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jinzhu/now"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"github.com/templetrust/seva-booking-backend/internal/models"
)

// maxReceiptAttempts bounds the optimistic retry loop when two
// concurrent creations race for the same receipt number
const maxReceiptAttempts = 3

// receiptNoConstraint is the unique constraint guarding receipt numbers
const receiptNoConstraint = "bookings_receipt_no_key"

// bookingColumns is the canonical column list for booking scans
const bookingColumns = `id, user_id, guest_phone, seva_id, seva_name, devotee_name,
	gothram, rashi, nakshatra, state, district, taluk, pincode, place, address,
	payment_mode, total_amount, is_paid, utr_number, razorpay_order_id,
	razorpay_payment_id, receipt_no, booking_date, booking_type, count, status,
	photo_order_completed, created_at, updated_at`

// bookingJoinColumns prefixes the booking columns for the seva join
const bookingJoinColumns = `b.id, b.user_id, b.guest_phone, b.seva_id, b.seva_name,
	b.devotee_name, b.gothram, b.rashi, b.nakshatra, b.state, b.district, b.taluk,
	b.pincode, b.place, b.address, b.payment_mode, b.total_amount, b.is_paid,
	b.utr_number, b.razorpay_order_id, b.razorpay_payment_id, b.receipt_no,
	b.booking_date, b.booking_type, b.count, b.status, b.photo_order_completed,
	b.created_at, b.updated_at,
	s.title AS seva_title, s.title_kn AS seva_title_kn,
	s.temple_name AS temple_name, s.location AS seva_location`

// BookingRepository handles database operations for the bookings ledger
type BookingRepository struct {
	db     *sqlx.DB
	logger *logrus.Logger
}

// NewBookingRepository creates a new BookingRepository
func NewBookingRepository(db *sqlx.DB, logger *logrus.Logger) *BookingRepository {
	return &BookingRepository{db: db, logger: logger}
}

/// Create persists a booking as one transactional unit: it allocates the
// next receipt number, merges the devotee record for the booking's
// phone number and inserts the ledger row. Two concurrent creations can
// race for the same receipt number; the unique constraint rejects the
// loser and the whole unit is retried with a fresh allocation.
func (r *BookingRepository) Create(booking *models.Booking, profile models.DevoteeProfile, devoteeRepo *DevoteeRepository) error {
	var lastErr error
	for attempt := 1; attempt <= maxReceiptAttempts; attempt++ {
		err := r.createOnce(booking, profile, devoteeRepo)
		if err == nil {
			return nil
		}
		if !isUniqueViolation(err, receiptNoConstraint) {
			return err
		}
		lastErr = err
		r.logger.WithFields(logrus.Fields{
			"receipt_no": booking.ReceiptNo,
			"attempt":    attempt,
		}).Warn("Receipt number already taken, reallocating")
	}

	return fmt.Errorf("failed to allocate a unique receipt number after %d attempts: %w", maxReceiptAttempts, lastErr)
}

func (r *BookingRepository) createOnce(booking *models.Booking, profile models.DevoteeProfile, devoteeRepo *DevoteeRepository) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// 1. Allocate the next receipt number (1, 2, 3, ...). The number is
	// only safe because it commits together with the insert below.
	var receiptNo int64
	if err := tx.Get(&receiptNo, `SELECT COALESCE(MAX(receipt_no), 0) + 1 FROM bookings`); err != nil {
		return fmt.Errorf("failed to allocate receipt number: %w", err)
	}
	booking.ReceiptNo = receiptNo

	// 2. Merge the devotee record for this phone number, accumulating
	// lifetime spend and visit count.
	if booking.GuestPhone != nil && *booking.GuestPhone != "" {
		if err := devoteeRepo.upsertTx(tx, *booking.GuestPhone, profile, booking.TotalAmount); err != nil {
			return fmt.Errorf("failed to upsert devotee: %w", err)
		}
	}

	// 3. Insert the ledger row.
	if booking.ID == uuid.Nil {
		booking.ID = uuid.New()
	}

	query := `
		INSERT INTO bookings (
			id, user_id, guest_phone, seva_id, seva_name, devotee_name,
			gothram, rashi, nakshatra, state, district, taluk,
			pincode, place, address, payment_mode, total_amount, is_paid,
			utr_number, razorpay_order_id, razorpay_payment_id, receipt_no,
			booking_date, booking_type, count, status, photo_order_completed
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
			$15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27
		)
		RETURNING created_at, updated_at`

	err = tx.QueryRowx(query,
		booking.ID, booking.UserID, booking.GuestPhone, booking.SevaID, booking.SevaName, booking.DevoteeName,
		booking.Gothram, booking.Rashi, booking.Nakshatra, booking.State, booking.District, booking.Taluk,
		booking.Pincode, booking.Place, booking.Address, booking.PaymentMode, booking.TotalAmount, booking.IsPaid,
		booking.UTRNumber, booking.RazorpayOrderID, booking.RazorpayPaymentID, booking.ReceiptNo,
		booking.BookingDate, booking.BookingType, booking.Count, booking.Status, booking.PhotoOrderCompleted,
	).Scan(&booking.CreatedAt, &booking.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetByID retrieves a booking by ID
func (r *BookingRepository) GetByID(bookingID uuid.UUID) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	var booking models.Booking
	if err := r.db.Get(&booking, query, bookingID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch booking: %w", err)
	}

	return &booking, nil
}

// ListByPhone retrieves all bookings for a phone number, newest first,
// with seva display fields joined in for receipts
func (r *BookingRepository) ListByPhone(phone string) ([]models.BookingWithSeva, error) {
	query := `
		SELECT ` + bookingJoinColumns + `
		FROM bookings b
		LEFT JOIN sevas s ON s.id = b.seva_id
		WHERE b.guest_phone = $1
		ORDER BY b.created_at DESC`

	bookings := []models.BookingWithSeva{}
	if err := r.db.Select(&bookings, query, phone); err != nil {
		return nil, fmt.Errorf("failed to list bookings by phone: %w", err)
	}

	return bookings, nil
}

// ListByUser retrieves all bookings created by an authenticated user,
// newest first, with seva display fields joined in
func (r *BookingRepository) ListByUser(userID uuid.UUID) ([]models.BookingWithSeva, error) {
	query := `
		SELECT ` + bookingJoinColumns + `
		FROM bookings b
		LEFT JOIN sevas s ON s.id = b.seva_id
		WHERE b.user_id = $1
		ORDER BY b.created_at DESC`

	bookings := []models.BookingWithSeva{}
	if err := r.db.Select(&bookings, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list bookings by user: %w", err)
	}

	return bookings, nil
}

// List retrieves bookings matching the admin reconciliation filter,
// newest first
func (r *BookingRepository) List(filter models.BookingFilter) ([]models.BookingWithSeva, error) {
	where, args := buildBookingFilter(filter)

	query := `
		SELECT ` + bookingJoinColumns + `
		FROM bookings b
		LEFT JOIN sevas s ON s.id = b.seva_id
		WHERE ` + where + `
		ORDER BY b.created_at DESC`

	bookings := []models.BookingWithSeva{}
	if err := r.db.Select(&bookings, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}

	return bookings, nil
}

// Totals computes aggregate figures over the same predicate as List so
// that edits and deletes are reflected immediately. There is no stored
// aggregate to drift.
func (r *BookingRepository) Totals(filter models.BookingFilter) (*models.BookingTotals, error) {
	where, args := buildBookingFilter(filter)

	query := `
		SELECT
			COALESCE(SUM(b.total_amount), 0) AS total_amount,
			COALESCE(SUM(b.total_amount) FILTER (WHERE b.payment_mode = 'upi'), 0) AS upi_amount,
			COALESCE(SUM(b.total_amount) FILTER (WHERE b.payment_mode = 'cash'), 0) AS cash_amount,
			COUNT(*) AS count
		FROM bookings b
		WHERE ` + where

	var totals models.BookingTotals
	if err := r.db.Get(&totals, query, args...); err != nil {
		return nil, fmt.Errorf("failed to compute booking totals: %w", err)
	}

	return &totals, nil
}

// Update applies an admin patch to a booking. Unset fields are left
// unchanged. Amount corrections deliberately do not re-run the devotee
// accumulators.
func (r *BookingRepository) Update(bookingID uuid.UUID, patch *models.UpdateBookingRequest) (*models.Booking, error) {
	set := []string{}
	args := []interface{}{}
	add := func(column string, value interface{}) {
		args = append(args, value)
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.DevoteeName != nil {
		add("devotee_name", *patch.DevoteeName)
	}
	if patch.Gothram != nil {
		add("gothram", *patch.Gothram)
	}
	if patch.Rashi != nil {
		add("rashi", *patch.Rashi)
	}
	if patch.Nakshatra != nil {
		add("nakshatra", *patch.Nakshatra)
	}
	if patch.GuestPhone != nil {
		add("guest_phone", *patch.GuestPhone)
	}
	if patch.BookingDate != nil {
		add("booking_date", *patch.BookingDate)
	}
	if patch.Status != nil {
		add("status", *patch.Status)
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
	if patch.Address != nil {
		add("address", *patch.Address)
	}
	if patch.PaymentMode != nil {
		add("payment_mode", *patch.PaymentMode)
	}
	if patch.SevaID != nil {
		add("seva_id", *patch.SevaID)
	}
	if patch.SevaName != nil {
		add("seva_name", *patch.SevaName)
	}
	if patch.TotalAmount != nil {
		add("total_amount", *patch.TotalAmount)
	}
	if patch.Count != nil {
		add("count", *patch.Count)
	}
	if patch.IsPaid != nil {
		add("is_paid", *patch.IsPaid)
	}
	if patch.PhotoOrderCompleted != nil {
		add("photo_order_completed", *patch.PhotoOrderCompleted)
	}

	if len(set) == 0 {
		return r.GetByID(bookingID)
	}

	args = append(args, bookingID)
	query := fmt.Sprintf(`
		UPDATE bookings
		SET %s, updated_at = NOW()
		WHERE id = $%d
		RETURNING `+bookingColumns, strings.Join(set, ", "), len(args))

	var booking models.Booking
	if err := r.db.Get(&booking, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update booking: %w", err)
	}

	return &booking, nil
}

// ConfirmGatewayPayment records a client-reported successful gateway
// checkout and flips the booking to paid/confirmed
func (r *BookingRepository) ConfirmGatewayPayment(bookingID uuid.UUID, paymentID string) (*models.Booking, error) {
	query := `
		UPDATE bookings
		SET razorpay_payment_id = $2, is_paid = TRUE, status = 'Confirmed', updated_at = NOW()
		WHERE id = $1
		RETURNING ` + bookingColumns

	var booking models.Booking
	if err := r.db.Get(&booking, query, bookingID, paymentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to confirm payment: %w", err)
	}

	return &booking, nil
}

// Delete removes a booking. The devotee accumulators are deliberately
// left untouched.
func (r *BookingRepository) Delete(bookingID uuid.UUID) error {
	result, err := r.db.Exec(`DELETE FROM bookings WHERE id = $1`, bookingID)
	if err != nil {
		return fmt.Errorf("failed to delete booking: %w", err)
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

// buildBookingFilter renders the admin filter into a WHERE fragment and
// its positional arguments. List and Totals share it so aggregates can
// never drift from the listing.
func buildBookingFilter(filter models.BookingFilter) (string, []interface{}) {
	clauses := []string{"TRUE"}
	args := []interface{}{}

	if filter.FromDate != nil {
		args = append(args, now.New(*filter.FromDate).BeginningOfDay())
		clauses = append(clauses, fmt.Sprintf("b.booking_date >= $%d", len(args)))
	}
	if filter.ToDate != nil {
		args = append(args, now.New(*filter.ToDate).EndOfDay())
		clauses = append(clauses, fmt.Sprintf("b.booking_date <= $%d", len(args)))
	}
	if filter.PaymentMode != nil {
		args = append(args, *filter.PaymentMode)
		clauses = append(clauses, fmt.Sprintf("b.payment_mode = $%d", len(args)))
	}

	switch filter.Scope {
	case "user":
		clauses = append(clauses, "b.user_id IS NOT NULL")
	case "guest":
		clauses = append(clauses, "b.user_id IS NULL")
	}

	if filter.Query != "" {
		args = append(args, "%"+filter.Query+"%")
		n := len(args)
		clauses = append(clauses, fmt.Sprintf(
			"(b.devotee_name ILIKE $%d OR b.guest_phone ILIKE $%d OR b.seva_name ILIKE $%d OR b.place ILIKE $%d OR b.pincode ILIKE $%d)",
			n, n, n, n, n))
	}

	return strings.Join(clauses, " AND "), args
}
