package models

import (
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
)

// PaymentMode represents how a booking is paid for
type PaymentMode string

const (
	// PaymentModeGateway is an online Razorpay checkout order
	PaymentModeGateway PaymentMode = "gateway"
	// PaymentModeUPI is a counter-mediated UPI deep-link payment
	PaymentModeUPI PaymentMode = "upi"
	// PaymentModeCash is a walk-in cash payment settled at the counter
	PaymentModeCash PaymentMode = "cash"
)

// IsValid reports whether the payment mode is one of the supported values
func (m PaymentMode) IsValid() bool {
	switch m {
	case PaymentModeGateway, PaymentModeUPI, PaymentModeCash:
		return true
	}
	return false
}

// BookingStatus represents the status of a booking
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "Pending"
	BookingStatusConfirmed BookingStatus = "Confirmed"
	BookingStatusCompleted BookingStatus = "Completed"
	BookingStatusCancelled BookingStatus = "Cancelled"
)

// IsValid reports whether the booking status is one of the supported values
func (s BookingStatus) IsValid() bool {
	switch s {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusCompleted, BookingStatusCancelled:
		return true
	}
	return false
}

const (
	// MaxPlaceLength caps the free-text village/town field
	MaxPlaceLength = 100
	// MaxAddressLength caps the free-text street address field
	MaxAddressLength = 250
)

// utrRegex matches a bank UTR / UPI reference number (12-16 digits)
var utrRegex = regexp.MustCompile(`^\d{12,16}$`)

// Booking represents one seva reservation with its receipt number and
// payment state
type Booking struct {
	ID                  uuid.UUID     `json:"id" db:"id"`
	UserID              *uuid.UUID    `json:"user_id,omitempty" db:"user_id"`
	GuestPhone          *string       `json:"guest_phone,omitempty" db:"guest_phone"`
	SevaID              uuid.UUID     `json:"seva_id" db:"seva_id"`
	SevaName            *string       `json:"seva_name,omitempty" db:"seva_name"`
	DevoteeName         string        `json:"devotee_name" db:"devotee_name"`
	Gothram             *string       `json:"gothram,omitempty" db:"gothram"`
	Rashi               *string       `json:"rashi,omitempty" db:"rashi"`
	Nakshatra           *string       `json:"nakshatra,omitempty" db:"nakshatra"`
	State               string        `json:"state" db:"state"`
	District            string        `json:"district" db:"district"`
	Taluk               string        `json:"taluk" db:"taluk"`
	Pincode             *string       `json:"pincode,omitempty" db:"pincode"`
	Place               *string       `json:"place,omitempty" db:"place"`
	Address             *string       `json:"address,omitempty" db:"address"`
	PaymentMode         PaymentMode   `json:"payment_mode" db:"payment_mode"`
	TotalAmount         float64       `json:"total_amount" db:"total_amount"`
	IsPaid              bool          `json:"is_paid" db:"is_paid"`
	UTRNumber           *string       `json:"utr_number,omitempty" db:"utr_number"`
	RazorpayOrderID     *string       `json:"razorpay_order_id,omitempty" db:"razorpay_order_id"`
	RazorpayPaymentID   *string       `json:"razorpay_payment_id,omitempty" db:"razorpay_payment_id"`
	ReceiptNo           int64         `json:"receipt_no" db:"receipt_no"`
	BookingDate         time.Time     `json:"booking_date" db:"booking_date"`
	BookingType         string        `json:"booking_type" db:"booking_type"`
	Count               int           `json:"count" db:"count"`
	Status              BookingStatus `json:"status" db:"status"`
	PhotoOrderCompleted bool          `json:"photo_order_completed" db:"photo_order_completed"`
	CreatedAt           time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time     `json:"updated_at" db:"updated_at"`
}

// BookingWithSeva is a booking joined with seva display fields for
// receipts and self-service lookup
type BookingWithSeva struct {
	Booking
	SevaTitle    *string `json:"seva_title,omitempty" db:"seva_title"`
	SevaTitleKn  *string `json:"seva_title_kn,omitempty" db:"seva_title_kn"`
	TempleName   *string `json:"temple_name,omitempty" db:"temple_name"`
	SevaLocation *string `json:"seva_location,omitempty" db:"seva_location"`
}

// CreateBookingRequest represents the request to create a booking.
// Several historical client form variants feed this endpoint; this is the
// normalized union contract, coerced and validated at the boundary.
type CreateBookingRequest struct {
	SevaID      string      `json:"sevaId" binding:"required"`
	SevaName    string      `json:"sevaName,omitempty"`
	DevoteeName string      `json:"devoteeName" binding:"required"`
	Gothram     string      `json:"gothram,omitempty"`
	Rashi       string      `json:"rashi,omitempty"`
	Nakshatra   string      `json:"nakshatra,omitempty"`
	BookingType string      `json:"bookingType,omitempty"`
	Count       int         `json:"count,omitempty"`
	TotalAmount float64     `json:"totalAmount" binding:"required"`
	GuestPhone  string      `json:"guestPhone,omitempty"`
	BookingDate *time.Time  `json:"bookingDate,omitempty"`
	State       string      `json:"state,omitempty"`
	District    string      `json:"district,omitempty"`
	Taluk       string      `json:"taluk,omitempty"`
	Pincode     string      `json:"pincode,omitempty"`
	Place       string      `json:"place,omitempty"`
	Address     string      `json:"address,omitempty"`
	PaymentMode PaymentMode `json:"paymentMode" binding:"required"`
	UTRNumber   string      `json:"utrNumber,omitempty"`
}

// FieldError is a user-correctable validation failure on a single field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewFieldError creates a FieldError for the given field
func NewFieldError(field, message string) *FieldError {
	return &FieldError{Field: field, Message: message}
}

// Validate checks the mode-independent constraints of the request and
// normalizes defaulted values (count, booking type)
func (r *CreateBookingRequest) Validate() error {
	if !r.PaymentMode.IsValid() {
		return NewFieldError("paymentMode", "must be one of gateway, upi, cash")
	}

	if r.TotalAmount <= 0 {
		return NewFieldError("totalAmount", "must be greater than zero")
	}

	if r.Count < 0 {
		return NewFieldError("count", "cannot be negative")
	}
	if r.Count == 0 {
		r.Count = 1
	}

	if r.BookingType == "" {
		r.BookingType = "individual"
	}

	if len(r.Place) > MaxPlaceLength {
		return NewFieldError("place", fmt.Sprintf("must be at most %d characters", MaxPlaceLength))
	}

	if len(r.Address) > MaxAddressLength {
		return NewFieldError("address", fmt.Sprintf("must be at most %d characters", MaxAddressLength))
	}

	if r.UTRNumber != "" && !utrRegex.MatchString(r.UTRNumber) {
		return NewFieldError("utrNumber", "must be 12 to 16 digits")
	}

	return nil
}

// UpdateBookingRequest is an admin partial patch; nil fields are left
// unchanged
type UpdateBookingRequest struct {
	DevoteeName         *string        `json:"devoteeName,omitempty"`
	Gothram             *string        `json:"gothram,omitempty"`
	Rashi               *string        `json:"rashi,omitempty"`
	Nakshatra           *string        `json:"nakshatra,omitempty"`
	GuestPhone          *string        `json:"guestPhone,omitempty"`
	BookingDate         *time.Time     `json:"bookingDate,omitempty"`
	Status              *BookingStatus `json:"status,omitempty"`
	State               *string        `json:"state,omitempty"`
	District            *string        `json:"district,omitempty"`
	Taluk               *string        `json:"taluk,omitempty"`
	Pincode             *string        `json:"pincode,omitempty"`
	Place               *string        `json:"place,omitempty"`
	Address             *string        `json:"address,omitempty"`
	PaymentMode         *PaymentMode   `json:"paymentMode,omitempty"`
	SevaID              *uuid.UUID     `json:"sevaId,omitempty"`
	SevaName            *string        `json:"sevaName,omitempty"`
	TotalAmount         *float64       `json:"totalAmount,omitempty"`
	Count               *int           `json:"count,omitempty"`
	IsPaid              *bool          `json:"isPaid,omitempty"`
	PhotoOrderCompleted *bool          `json:"photoOrderCompleted,omitempty"`
}

// Validate checks the enum and length constraints of the patch
func (r *UpdateBookingRequest) Validate() error {
	if r.Status != nil && !r.Status.IsValid() {
		return NewFieldError("status", "must be one of Pending, Confirmed, Completed, Cancelled")
	}

	if r.PaymentMode != nil && !r.PaymentMode.IsValid() {
		return NewFieldError("paymentMode", "must be one of gateway, upi, cash")
	}

	if r.Place != nil && len(*r.Place) > MaxPlaceLength {
		return NewFieldError("place", fmt.Sprintf("must be at most %d characters", MaxPlaceLength))
	}

	if r.Address != nil && len(*r.Address) > MaxAddressLength {
		return NewFieldError("address", fmt.Sprintf("must be at most %d characters", MaxAddressLength))
	}

	if r.TotalAmount != nil && *r.TotalAmount < 0 {
		return NewFieldError("totalAmount", "cannot be negative")
	}

	return nil
}

// IsEmpty reports whether the patch carries no changes
func (r *UpdateBookingRequest) IsEmpty() bool {
	return r.DevoteeName == nil && r.Gothram == nil && r.Rashi == nil &&
		r.Nakshatra == nil && r.GuestPhone == nil && r.BookingDate == nil &&
		r.Status == nil && r.State == nil && r.District == nil && r.Taluk == nil &&
		r.Pincode == nil && r.Place == nil && r.Address == nil &&
		r.PaymentMode == nil && r.SevaID == nil && r.SevaName == nil &&
		r.TotalAmount == nil && r.Count == nil && r.IsPaid == nil &&
		r.PhotoOrderCompleted == nil
}

// ConfirmPaymentRequest is the client-reported gateway checkout result
type ConfirmPaymentRequest struct {
	RazorpayPaymentID string `json:"razorpayPaymentId" binding:"required"`
	RazorpaySignature string `json:"razorpaySignature,omitempty"`
}

// BookingFilter narrows admin reconciliation listings
type BookingFilter struct {
	FromDate    *time.Time
	ToDate      *time.Time
	PaymentMode *PaymentMode
	// Scope is "", "user" (authenticated bookings) or "guest"
	Scope string
	// Query is a free-text match over devotee name, phone, seva name,
	// place and pincode
	Query string
}

// BookingTotals are aggregate figures for a filtered booking set,
// always recomputed from the same predicate as the listing
type BookingTotals struct {
	TotalAmount float64 `json:"total_amount" db:"total_amount"`
	UPIAmount   float64 `json:"upi_amount" db:"upi_amount"`
	CashAmount  float64 `json:"cash_amount" db:"cash_amount"`
	Count       int     `json:"count" db:"count"`
}

// GatewayOrder is the order handle returned for gateway-mode bookings
type GatewayOrder struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"` // minor currency units (paise)
	Currency string `json:"currency"`
}

// CreateBookingResponse is the persisted booking plus the payment
// handle the client needs to complete checkout
type CreateBookingResponse struct {
	Booking *Booking `json:"booking"`
	// GatewayKey and GatewayOrder are set for gateway-mode bookings only
	GatewayKey   string        `json:"gateway_key,omitempty"`
	GatewayOrder *GatewayOrder `json:"gateway_order,omitempty"`
	// UPIIntent is set for upi-mode bookings; clients render it as a QR
	UPIIntent string `json:"upi_intent,omitempty"`
}
