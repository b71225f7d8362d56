package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/templetrust/seva-booking-backend/internal/database"
)

// SevaHandler serves the read-only seva catalog
type SevaHandler struct {
	sevaRepo *database.SevaRepository
	logger   *logrus.Logger
}

// NewSevaHandler creates a new SevaHandler
func NewSevaHandler(sevaRepo *database.SevaRepository, logger *logrus.Logger) *SevaHandler {
	return &SevaHandler{sevaRepo: sevaRepo, logger: logger}
}

// ListSevas lists the bookable seva catalog
// @Summary List sevas
// @Tags Sevas
// @Produce json
// @Success 200 {object} map[string]interface{} "Sevas"
// @Router /api/v1/sevas [get]
func (h *SevaHandler) ListSevas(c *gin.Context) {
	sevas, err := h.sevaRepo.List()
	if err != nil {
		h.logger.WithError(err).Error("Failed to list sevas")
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"sevas": sevas, "count": len(sevas)})
}

// GetSeva retrieves one seva by ID
// @Summary Get seva
// @Tags Sevas
// @Produce json
// @Param id path string true "Seva ID"
// @Success 200 {object} models.Seva
// @Failure 404 {object} map[string]interface{} "Seva not found"
// @Router /api/v1/sevas/{id} [get]
func (h *SevaHandler) GetSeva(c *gin.Context) {
	sevaID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid seva ID"})
		return
	}

	seva, err := h.sevaRepo.GetByID(sevaID)
	if err != nil {
		if err == database.ErrSevaNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Seva not found"})
			return
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, seva)
}
