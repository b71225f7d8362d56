package database

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/templetrust/seva-booking-backend/internal/models"
)

// NotificationRepository handles the append-only admin notification
// records
type NotificationRepository struct {
	db DB
}

// NewNotificationRepository creates a new NotificationRepository
func NewNotificationRepository(db DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Create appends a notification record
func (r *NotificationRepository) Create(notification *models.Notification) error {
	if notification.ID == uuid.Nil {
		notification.ID = uuid.New()
	}

	query := `
		INSERT INTO notifications (id, type, message, booking_id, client_info)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`

	err := r.db.QueryRow(query,
		notification.ID, notification.Type, notification.Message,
		notification.BookingID, notification.ClientInfo,
	).Scan(&notification.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}

	return nil
}

// ListRecent retrieves the newest notifications up to limit
func (r *NotificationRepository) ListRecent(limit int) ([]models.Notification, error) {
	query := `
		SELECT id, type, message, booking_id, client_info, created_at
		FROM notifications
		ORDER BY created_at DESC
		LIMIT $1`

	notifications := []models.Notification{}
	if err := r.db.Select(&notifications, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}

	return notifications, nil
}

// DeleteOlderThan prunes notifications created before the cutoff and
// returns how many were removed
func (r *NotificationRepository) DeleteOlderThan(cutoff time.Time) (int64, error) {
	result, err := r.db.Exec(`DELETE FROM notifications WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune notifications: %w", err)
	}

	return result.RowsAffected()
}
