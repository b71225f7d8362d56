package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/templetrust/seva-booking-backend/internal/database"
	"github.com/templetrust/seva-booking-backend/internal/middleware"
	"github.com/templetrust/seva-booking-backend/internal/models"
	"github.com/templetrust/seva-booking-backend/internal/services"
	"github.com/templetrust/seva-booking-backend/pkg/validator"
)

// BookingHandler handles devotee-facing booking operations
type BookingHandler struct {
	bookingService *services.BookingService
	bookingRepo    *database.BookingRepository
	phoneValidator *validator.PhoneValidator
	logger         *logrus.Logger
}

// NewBookingHandler creates a new BookingHandler
func NewBookingHandler(
	bookingService *services.BookingService,
	bookingRepo *database.BookingRepository,
	phoneValidator *validator.PhoneValidator,
	logger *logrus.Logger,
) *BookingHandler {
	return &BookingHandler{
		bookingService: bookingService,
		bookingRepo:    bookingRepo,
		phoneValidator: phoneValidator,
		logger:         logger,
	}
}

// CreateBooking creates a new seva booking
// @Summary Create a new seva booking
// @Description Create a seva booking as a guest or an authenticated devotee. Gateway bookings return an order handle, UPI bookings return a deep-link intent.
// @Tags Bookings
// @Accept json
// @Produce json
// @Param request body models.CreateBookingRequest true "Booking request"
// @Success 201 {object} models.CreateBookingResponse "Booking created"
// @Failure 400 {object} map[string]interface{} "Invalid request"
// @Failure 502 {object} map[string]interface{} "Payment gateway unavailable"
// @Router /api/v1/bookings [post]
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	var req models.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	var userID *uuid.UUID
	if userCtx, ok := middleware.GetUserContext(c); ok {
		userID = &userCtx.UserID
	}

	response, err := h.bookingService.Create(userID, &req, c.Request.UserAgent())
	if err != nil {
		h.logger.WithError(err).WithFields(logrus.Fields{
			"seva_id":      req.SevaID,
			"payment_mode": req.PaymentMode,
		}).Warn("Booking creation failed")
		respondError(c, err)
		return
	}

	h.logger.WithFields(logrus.Fields{
		"booking_id":   response.Booking.ID,
		"receipt_no":   response.Booking.ReceiptNo,
		"payment_mode": response.Booking.PaymentMode,
	}).Info("Booking created")

	c.JSON(http.StatusCreated, response)
}

// ConfirmPayment records a gateway checkout result for a booking
// @Summary Confirm gateway payment
// @Description Mark a pending gateway booking as paid using the checkout result reported by the client
// @Tags Bookings
// @Accept json
// @Produce json
// @Param id path string true "Booking ID"
// @Param request body models.ConfirmPaymentRequest true "Checkout result"
// @Success 200 {object} models.Booking "Booking confirmed"
// @Failure 400 {object} map[string]interface{} "Invalid request or signature"
// @Failure 404 {object} map[string]interface{} "Booking not found"
// @Router /api/v1/bookings/{id}/payment [post]
func (h *BookingHandler) ConfirmPayment(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid booking ID"})
		return
	}

	var req models.ConfirmPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	booking, err := h.bookingService.ConfirmPayment(bookingID, &req)
	if err != nil {
		h.logger.WithError(err).WithField("booking_id", bookingID).Warn("Payment confirmation failed")
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, booking)
}

// GetBookingsByPhone lists bookings for a phone number
// @Summary List bookings by phone
// @Description Self-service receipt lookup for guests, keyed by the booking phone number
// @Tags Bookings
// @Produce json
// @Param phone path string true "Phone number"
// @Success 200 {object} map[string]interface{} "Bookings"
// @Failure 400 {object} map[string]interface{} "Invalid phone number"
// @Router /api/v1/bookings/phone/{phone} [get]
func (h *BookingHandler) GetBookingsByPhone(c *gin.Context) {
	phone, err := h.phoneValidator.Validate(c.Param("phone"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	bookings, err := h.bookingRepo.ListByPhone(phone)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list bookings by phone")
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"bookings": bookings, "count": len(bookings)})
}

// GetMyBookings lists the authenticated devotee's bookings
// @Summary List my bookings
// @Tags Bookings
// @Produce json
// @Success 200 {object} map[string]interface{} "Bookings"
// @Failure 401 {object} map[string]interface{} "Unauthorized"
// @Security BearerAuth
// @Router /api/v1/bookings/me [get]
func (h *BookingHandler) GetMyBookings(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	bookings, err := h.bookingRepo.ListByUser(userCtx.UserID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list user bookings")
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"bookings": bookings, "count": len(bookings)})
}

// GetBooking retrieves a single booking by ID
// @Summary Get booking
// @Tags Bookings
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} models.Booking
// @Failure 404 {object} map[string]interface{} "Booking not found"
// @Router /api/v1/bookings/{id} [get]
func (h *BookingHandler) GetBooking(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid booking ID"})
		return
	}

	booking, err := h.bookingRepo.GetByID(bookingID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, booking)
}
