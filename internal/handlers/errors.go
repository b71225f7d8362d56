package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/templetrust/seva-booking-backend/internal/database"
	"github.com/templetrust/seva-booking-backend/internal/models"
	"github.com/templetrust/seva-booking-backend/internal/services"
)

// respondError maps service and repository errors to HTTP responses.
// Validation failures carry the offending field; storage failures stay
// opaque to the client.
func respondError(c *gin.Context, err error) {
	var fieldErr *models.FieldError
	switch {
	case errors.As(err, &fieldErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": fieldErr.Message, "field": fieldErr.Field})
	case errors.Is(err, database.ErrSevaNotFound):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Seva not found"})
	case errors.Is(err, database.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, database.ErrDuplicateMobile):
		c.JSON(http.StatusConflict, gin.H{"error": "Mobile number is already in use"})
	case errors.Is(err, services.ErrInvalidSignature):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Payment signature verification failed"})
	case errors.Is(err, services.ErrGatewayUnavailable):
		c.JSON(http.StatusBadGateway, gin.H{"error": "Payment gateway unavailable, please retry"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
