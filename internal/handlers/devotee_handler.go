package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/templetrust/seva-booking-backend/internal/database"
	"github.com/templetrust/seva-booking-backend/internal/models"
	"github.com/templetrust/seva-booking-backend/pkg/validator"
)

// DevoteeHandler handles devotee directory operations
type DevoteeHandler struct {
	devoteeRepo    *database.DevoteeRepository
	phoneValidator *validator.PhoneValidator
	logger         *logrus.Logger
}

// NewDevoteeHandler creates a new DevoteeHandler
func NewDevoteeHandler(devoteeRepo *database.DevoteeRepository, phoneValidator *validator.PhoneValidator, logger *logrus.Logger) *DevoteeHandler {
	return &DevoteeHandler{
		devoteeRepo:    devoteeRepo,
		phoneValidator: phoneValidator,
		logger:         logger,
	}
}

// GetByMobile retrieves a devotee profile for booking form prefill
// @Summary Get devotee by mobile
// @Description Fetch the merged devotee profile for a phone number so booking forms can prefill
// @Tags Devotees
// @Produce json
// @Param mobile path string true "Mobile number"
// @Success 200 {object} models.Devotee
// @Failure 404 {object} map[string]interface{} "Devotee not found"
// @Router /api/v1/devotees/{mobile} [get]
func (h *DevoteeHandler) GetByMobile(c *gin.Context) {
	mobile, err := h.phoneValidator.Validate(c.Param("mobile"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	devotee, err := h.devoteeRepo.GetByMobile(mobile)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, devotee)
}

// ListDevotees lists all devotees for the admin directory
// @Summary List devotees (admin)
// @Tags Admin Devotees
// @Produce json
// @Success 200 {object} map[string]interface{} "Devotees"
// @Security BearerAuth
// @Router /api/v1/admin/devotees [get]
func (h *DevoteeHandler) ListDevotees(c *gin.Context) {
	devotees, err := h.devoteeRepo.List()
	if err != nil {
		h.logger.WithError(err).Error("Failed to list devotees")
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"devotees": devotees, "count": len(devotees)})
}

// UpdateDevotee applies an admin correction patch to a devotee
// @Summary Update devotee (admin)
// @Description Correct devotee fields. Changing the mobile number repoints all historical bookings to it.
// @Tags Admin Devotees
// @Accept json
// @Produce json
// @Param id path string true "Devotee ID"
// @Param request body models.UpdateDevoteeRequest true "Fields to update"
// @Success 200 {object} models.Devotee
// @Failure 400 {object} map[string]interface{} "Invalid request"
// @Failure 404 {object} map[string]interface{} "Devotee not found"
// @Failure 409 {object} map[string]interface{} "Mobile number already in use"
// @Security BearerAuth
// @Router /api/v1/admin/devotees/{id} [put]
func (h *DevoteeHandler) UpdateDevotee(c *gin.Context) {
	devoteeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid devotee ID"})
		return
	}

	var req models.UpdateDevoteeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if req.Mobile != nil {
		sanitized, err := h.phoneValidator.Validate(*req.Mobile)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "field": "mobile"})
			return
		}
		req.Mobile = &sanitized
	}

	devotee, err := h.devoteeRepo.Update(devoteeID, &req)
	if err != nil {
		h.logger.WithError(err).WithField("devotee_id", devoteeID).Error("Failed to update devotee")
		respondError(c, err)
		return
	}

	h.logger.WithFields(logrus.Fields{
		"devotee_id": devoteeID,
		"mobile":     devotee.Mobile,
	}).Info("Devotee updated by admin")

	c.JSON(http.StatusOK, devotee)
}

// DeleteDevotee removes a devotee record
// @Summary Delete devotee (admin)
// @Description Delete a devotee record. Historical bookings keep their phone number and are untouched.
// @Tags Admin Devotees
// @Produce json
// @Param id path string true "Devotee ID"
// @Success 200 {object} map[string]interface{} "Deleted"
// @Failure 404 {object} map[string]interface{} "Devotee not found"
// @Security BearerAuth
// @Router /api/v1/admin/devotees/{id} [delete]
func (h *DevoteeHandler) DeleteDevotee(c *gin.Context) {
	devoteeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid devotee ID"})
		return
	}

	if err := h.devoteeRepo.Delete(devoteeID); err != nil {
		h.logger.WithError(err).WithField("devotee_id", devoteeID).Error("Failed to delete devotee")
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Devotee deleted successfully"})
}
