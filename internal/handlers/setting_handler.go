package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/templetrust/seva-booking-backend/internal/database"
	"github.com/templetrust/seva-booking-backend/internal/models"
)

// SettingHandler serves operational settings. The public view is what
// booking clients read; writes are admin-only.
type SettingHandler struct {
	settingRepo *database.SystemSettingRepository
	logger      *logrus.Logger
}

// NewSettingHandler creates a new SettingHandler
func NewSettingHandler(settingRepo *database.SystemSettingRepository, logger *logrus.Logger) *SettingHandler {
	return &SettingHandler{settingRepo: settingRepo, logger: logger}
}

// GetSettings returns the typed settings view
// @Summary Get settings
// @Description Typed projection of operational settings (UPI id, ritual hours, booking policy)
// @Tags Settings
// @Produce json
// @Success 200 {object} models.SettingsView
// @Router /api/v1/settings [get]
func (h *SettingHandler) GetSettings(c *gin.Context) {
	view, err := h.settingRepo.LoadView()
	if err != nil {
		h.logger.WithError(err).Error("Failed to load settings")
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// ListSettings returns the raw setting rows for the admin console
// @Summary List settings (admin)
// @Tags Admin Settings
// @Produce json
// @Success 200 {object} map[string]interface{} "Settings"
// @Security BearerAuth
// @Router /api/v1/admin/settings [get]
func (h *SettingHandler) ListSettings(c *gin.Context) {
	settings, err := h.settingRepo.GetAll()
	if err != nil {
		h.logger.WithError(err).Error("Failed to list settings")
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"settings": settings, "count": len(settings)})
}

// UpdateSettings applies a settings patch
// @Summary Update settings (admin)
// @Description Upsert operational settings. Omitted fields keep their stored values.
// @Tags Admin Settings
// @Accept json
// @Produce json
// @Param request body models.UpdateSettingsRequest true "Settings to update"
// @Success 200 {object} models.SettingsView
// @Failure 400 {object} map[string]interface{} "Invalid request"
// @Security BearerAuth
// @Router /api/v1/admin/settings [put]
func (h *SettingHandler) UpdateSettings(c *gin.Context) {
	var req models.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	updates := map[string]*string{
		models.SettingKeyUPIID:       req.UPIID,
		models.SettingKeyTempleName:  req.TempleName,
		models.SettingKeyCurrency:    req.Currency,
		models.SettingKeyTimezone:    req.Timezone,
		models.SettingKeyRitualHours: req.RitualHours,
	}
	for key, value := range updates {
		if value == nil {
			continue
		}
		if err := h.settingRepo.Set(key, *value); err != nil {
			h.logger.WithError(err).WithField("key", key).Error("Failed to update setting")
			respondError(c, err)
			return
		}
	}

	boolUpdates := map[string]*bool{
		models.SettingKeyAllowSameDayBooking: req.AllowSameDayBooking,
		models.SettingKeyNotifyDevotee:       req.NotifyDevotee,
	}
	for key, value := range boolUpdates {
		if value == nil {
			continue
		}
		if err := h.settingRepo.Set(key, strconv.FormatBool(*value)); err != nil {
			h.logger.WithError(err).WithField("key", key).Error("Failed to update setting")
			respondError(c, err)
			return
		}
	}

	view, err := h.settingRepo.LoadView()
	if err != nil {
		respondError(c, err)
		return
	}

	h.logger.Info("Settings updated by admin")

	c.JSON(http.StatusOK, view)
}
