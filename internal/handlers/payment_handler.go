package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/templetrust/seva-booking-backend/internal/services"
)

// PaymentHandler exposes standalone gateway operations used by the
// counter staff tooling: creating bare orders and hosted payment links
// outside the booking flow.
type PaymentHandler struct {
	razorpayService *services.RazorpayService
	logger          *logrus.Logger
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(razorpayService *services.RazorpayService, logger *logrus.Logger) *PaymentHandler {
	return &PaymentHandler{razorpayService: razorpayService, logger: logger}
}

// CreateOrderRequest is a standalone gateway order request
type CreateOrderRequest struct {
	Amount  float64           `json:"amount" binding:"required"`
	Receipt string            `json:"receipt,omitempty"`
	Notes   map[string]string `json:"notes,omitempty"`
}

// CreatePaymentLinkRequest is a hosted payment link request
type CreatePaymentLinkRequest struct {
	Amount        float64 `json:"amount" binding:"required"`
	Description   string  `json:"description,omitempty"`
	CustomerName  string  `json:"customerName,omitempty"`
	CustomerPhone string  `json:"customerPhone,omitempty"`
	CustomerEmail string  `json:"customerEmail,omitempty"`
}

// CreateOrder creates a bare gateway order
// @Summary Create gateway order
// @Tags Payments
// @Accept json
// @Produce json
// @Param request body CreateOrderRequest true "Order request"
// @Success 201 {object} map[string]interface{} "Order"
// @Failure 400 {object} map[string]interface{} "Invalid request"
// @Failure 502 {object} map[string]interface{} "Gateway unavailable"
// @Security BearerAuth
// @Router /api/v1/payments/order [post]
func (h *PaymentHandler) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if req.Amount <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Amount must be greater than zero"})
		return
	}

	order, err := h.razorpayService.CreateOrder(req.Amount, req.Receipt, req.Notes)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"order": order,
		"key":   h.razorpayService.Key(),
	})
}

// CreatePaymentLink creates a hosted payment link
// @Summary Create payment link
// @Description Create a hosted gateway payment link to send to a devotee over SMS or email
// @Tags Payments
// @Accept json
// @Produce json
// @Param request body CreatePaymentLinkRequest true "Link request"
// @Success 201 {object} services.RazorpayPaymentLink
// @Failure 400 {object} map[string]interface{} "Invalid request"
// @Failure 502 {object} map[string]interface{} "Gateway unavailable"
// @Security BearerAuth
// @Router /api/v1/payments/link [post]
func (h *PaymentHandler) CreatePaymentLink(c *gin.Context) {
	var req CreatePaymentLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if req.Amount <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Amount must be greater than zero"})
		return
	}

	var customer *services.PaymentLinkCustomer
	if req.CustomerName != "" || req.CustomerPhone != "" || req.CustomerEmail != "" {
		customer = &services.PaymentLinkCustomer{
			Name:    req.CustomerName,
			Contact: req.CustomerPhone,
			Email:   req.CustomerEmail,
		}
	}

	link, err := h.razorpayService.CreatePaymentLink(req.Amount, req.Description, customer)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, link)
}
