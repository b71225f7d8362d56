package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/templetrust/seva-booking-backend/internal/database"
	"github.com/templetrust/seva-booking-backend/internal/models"
)

// AdminBookingHandler handles the reconciliation endpoints temple staff
// use to audit and correct the booking ledger
type AdminBookingHandler struct {
	bookingRepo *database.BookingRepository
	logger      *logrus.Logger
}

// NewAdminBookingHandler creates a new AdminBookingHandler
func NewAdminBookingHandler(bookingRepo *database.BookingRepository, logger *logrus.Logger) *AdminBookingHandler {
	return &AdminBookingHandler{bookingRepo: bookingRepo, logger: logger}
}

// parseBookingFilter reads the shared filter predicate from query
// parameters. Listing and totals use the same predicate so figures
// always match the visible rows.
func parseBookingFilter(c *gin.Context) (models.BookingFilter, error) {
	var filter models.BookingFilter

	if from := c.Query("from"); from != "" {
		t, err := time.Parse("2006-01-02", from)
		if err != nil {
			return filter, models.NewFieldError("from", "must be a date in YYYY-MM-DD format")
		}
		filter.FromDate = &t
	}

	if to := c.Query("to"); to != "" {
		t, err := time.Parse("2006-01-02", to)
		if err != nil {
			return filter, models.NewFieldError("to", "must be a date in YYYY-MM-DD format")
		}
		filter.ToDate = &t
	}

	if mode := c.Query("paymentMode"); mode != "" {
		pm := models.PaymentMode(mode)
		if !pm.IsValid() {
			return filter, models.NewFieldError("paymentMode", "must be one of gateway, upi, cash")
		}
		filter.PaymentMode = &pm
	}

	switch scope := c.Query("scope"); scope {
	case "", "user", "guest":
		filter.Scope = scope
	default:
		return filter, models.NewFieldError("scope", "must be user or guest")
	}

	filter.Query = c.Query("q")

	return filter, nil
}

// ListBookings lists bookings for reconciliation
// @Summary List bookings (admin)
// @Description List bookings filtered by date range, payment mode, scope and free-text search
// @Tags Admin Bookings
// @Produce json
// @Param from query string false "Start date (YYYY-MM-DD)"
// @Param to query string false "End date (YYYY-MM-DD)"
// @Param paymentMode query string false "gateway, upi or cash"
// @Param scope query string false "user or guest"
// @Param q query string false "Free-text search"
// @Success 200 {object} map[string]interface{} "Bookings"
// @Failure 400 {object} map[string]interface{} "Invalid filter"
// @Security BearerAuth
// @Router /api/v1/admin/bookings [get]
func (h *AdminBookingHandler) ListBookings(c *gin.Context) {
	filter, err := parseBookingFilter(c)
	if err != nil {
		respondError(c, err)
		return
	}

	bookings, err := h.bookingRepo.List(filter)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list bookings")
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"bookings": bookings, "count": len(bookings)})
}

// GetTotals returns aggregate figures for a filtered booking set
// @Summary Booking totals (admin)
// @Description Aggregate collection figures over the same filter predicate as the listing
// @Tags Admin Bookings
// @Produce json
// @Param from query string false "Start date (YYYY-MM-DD)"
// @Param to query string false "End date (YYYY-MM-DD)"
// @Param paymentMode query string false "gateway, upi or cash"
// @Param scope query string false "user or guest"
// @Param q query string false "Free-text search"
// @Success 200 {object} models.BookingTotals
// @Failure 400 {object} map[string]interface{} "Invalid filter"
// @Security BearerAuth
// @Router /api/v1/admin/bookings/totals [get]
func (h *AdminBookingHandler) GetTotals(c *gin.Context) {
	filter, err := parseBookingFilter(c)
	if err != nil {
		respondError(c, err)
		return
	}

	totals, err := h.bookingRepo.Totals(filter)
	if err != nil {
		h.logger.WithError(err).Error("Failed to compute booking totals")
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, totals)
}

// UpdateBooking applies an admin correction patch to a booking
// @Summary Update booking (admin)
// @Description Correct booking fields after the fact. The receipt number is never changed.
// @Tags Admin Bookings
// @Accept json
// @Produce json
// @Param id path string true "Booking ID"
// @Param request body models.UpdateBookingRequest true "Fields to update"
// @Success 200 {object} models.Booking
// @Failure 400 {object} map[string]interface{} "Invalid request"
// @Failure 404 {object} map[string]interface{} "Booking not found"
// @Security BearerAuth
// @Router /api/v1/admin/bookings/{id} [put]
func (h *AdminBookingHandler) UpdateBooking(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid booking ID"})
		return
	}

	var req models.UpdateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if err := req.Validate(); err != nil {
		respondError(c, err)
		return
	}

	if req.IsEmpty() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No fields to update"})
		return
	}

	booking, err := h.bookingRepo.Update(bookingID, &req)
	if err != nil {
		h.logger.WithError(err).WithField("booking_id", bookingID).Error("Failed to update booking")
		respondError(c, err)
		return
	}

	h.logger.WithFields(logrus.Fields{
		"booking_id": bookingID,
		"receipt_no": booking.ReceiptNo,
	}).Info("Booking updated by admin")

	c.JSON(http.StatusOK, booking)
}

// DeleteBooking removes a booking from the ledger
// @Summary Delete booking (admin)
// @Description Hard-delete a booking. Its receipt number is never reused, and devotee spend counters are not rolled back.
// @Tags Admin Bookings
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} map[string]interface{} "Deleted"
// @Failure 404 {object} map[string]interface{} "Booking not found"
// @Security BearerAuth
// @Router /api/v1/admin/bookings/{id} [delete]
func (h *AdminBookingHandler) DeleteBooking(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid booking ID"})
		return
	}

	if err := h.bookingRepo.Delete(bookingID); err != nil {
		h.logger.WithError(err).WithField("booking_id", bookingID).Error("Failed to delete booking")
		respondError(c, err)
		return
	}

	h.logger.WithField("booking_id", bookingID).Info("Booking deleted by admin")

	c.JSON(http.StatusOK, gin.H{"message": "Booking deleted successfully"})
}
