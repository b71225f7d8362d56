package models

import (
	"time"

	"github.com/google/uuid"
)

// NotificationType classifies an admin notification
type NotificationType string

const (
	NotificationTypeBooking NotificationType = "booking"
	NotificationTypePayment NotificationType = "payment"
)

// Notification is an append-only admin alert record. Emission is
// best-effort and may be pruned externally.
type Notification struct {
	ID        uuid.UUID        `json:"id" db:"id"`
	Type      NotificationType `json:"type" db:"type"`
	Message   string           `json:"message" db:"message"`
	BookingID *uuid.UUID       `json:"booking_id,omitempty" db:"booking_id"`
	// ClientInfo is a short browser/OS summary parsed from the
	// originating request's User-Agent
	ClientInfo *string   `json:"client_info,omitempty" db:"client_info"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}
