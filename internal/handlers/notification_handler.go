package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/templetrust/seva-booking-backend/internal/database"
)

// defaultNotificationLimit bounds the admin notification feed
const defaultNotificationLimit = 50

// NotificationHandler serves the admin notification feed
type NotificationHandler struct {
	notificationRepo *database.NotificationRepository
	logger           *logrus.Logger
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(notificationRepo *database.NotificationRepository, logger *logrus.Logger) *NotificationHandler {
	return &NotificationHandler{notificationRepo: notificationRepo, logger: logger}
}

// ListNotifications returns recent booking and payment alerts
// @Summary List notifications (admin)
// @Tags Admin Notifications
// @Produce json
// @Param limit query int false "Maximum rows to return (default 50)"
// @Success 200 {object} map[string]interface{} "Notifications"
// @Security BearerAuth
// @Router /api/v1/admin/notifications [get]
func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	limit := defaultNotificationLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = parsed
	}

	notifications, err := h.notificationRepo.ListRecent(limit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list notifications")
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"notifications": notifications, "count": len(notifications)})
}

// PruneNotifications deletes alerts older than the given age
// @Summary Prune notifications (admin)
// @Tags Admin Notifications
// @Produce json
// @Param olderThanDays query int false "Age threshold in days (default 30)"
// @Success 200 {object} map[string]interface{} "Pruned"
// @Security BearerAuth
// @Router /api/v1/admin/notifications [delete]
func (h *NotificationHandler) PruneNotifications(c *gin.Context) {
	days := 30
	if raw := c.Query("olderThanDays"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "olderThanDays must be a positive integer"})
			return
		}
		days = parsed
	}

	cutoff := time.Now().AddDate(0, 0, -days)
	deleted, err := h.notificationRepo.DeleteOlderThan(cutoff)
	if err != nil {
		h.logger.WithError(err).Error("Failed to prune notifications")
		respondError(c, err)
		return
	}

	h.logger.WithFields(logrus.Fields{
		"deleted": deleted,
		"cutoff":  cutoff.Format("2006-01-02"),
	}).Info("Notifications pruned")

	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}
