package services

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/templetrust/seva-booking-backend/internal/config"
)

// ErrGatewayUnavailable is returned when the payment gateway rejects or
// cannot serve an order request. Nothing is persisted when order
// creation fails.
var ErrGatewayUnavailable = errors.New("payment gateway unavailable")

// ErrInvalidSignature is returned when a client-supplied checkout
// signature does not match the order/payment pair
var ErrInvalidSignature = errors.New("payment signature verification failed")

// maxReceiptTagLength is Razorpay's limit on the order receipt field
const maxReceiptTagLength = 40

// RazorpayService handles payment gateway integration with the Razorpay
// Orders API
type RazorpayService struct {
	config *config.PaymentConfig
	logger *logrus.Logger
	client *http.Client
}

// RazorpayOrder represents an order created on the gateway
type RazorpayOrder struct {
	ID       string `json:"id"`
	Entity   string `json:"entity"`
	Amount   int64  `json:"amount"` // paise
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

// RazorpayPaymentLink represents a hosted payment link
type RazorpayPaymentLink struct {
	ID       string `json:"id"`
	ShortURL string `json:"short_url"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Status   string `json:"status"`
}

// PaymentLinkCustomer identifies the payer on a hosted payment link
type PaymentLinkCustomer struct {
	Name    string `json:"name,omitempty"`
	Contact string `json:"contact,omitempty"`
	Email   string `json:"email,omitempty"`
}

// razorpayError is the error envelope the gateway returns on failures
type razorpayError struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

// NewRazorpayService creates a new Razorpay payment service
func NewRazorpayService(cfg *config.PaymentConfig, logger *logrus.Logger) *RazorpayService {
	return &RazorpayService{
		config: cfg,
		logger: logger,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Key returns the public key id clients use to open checkout
func (s *RazorpayService) Key() string {
	return s.config.KeyID
}

// ToMinorUnits converts a rupee amount to paise without float drift
func ToMinorUnits(amount float64) int64 {
	return decimal.NewFromFloat(amount).Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// CreateOrder creates a gateway order for the given rupee amount. The
// receipt tag is trimmed to the gateway's 40 character limit.
func (s *RazorpayService) CreateOrder(amount float64, receipt string, notes map[string]string) (*RazorpayOrder, error) {
	if s.config.KeyID == "" || s.config.KeySecret == "" {
		return nil, fmt.Errorf("%w: missing merchant credentials", ErrGatewayUnavailable)
	}

	if len(receipt) > maxReceiptTagLength {
		receipt = receipt[:maxReceiptTagLength]
	}

	payload := map[string]interface{}{
		"amount":          ToMinorUnits(amount),
		"currency":        s.config.Currency,
		"receipt":         receipt,
		"payment_capture": 1,
	}
	if len(notes) > 0 {
		payload["notes"] = notes
	}

	var order RazorpayOrder
	if err := s.post("/orders", payload, &order); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"order_id": order.ID,
		"amount":   order.Amount,
		"receipt":  receipt,
	}).Info("Gateway order created")

	return &order, nil
}

// CreatePaymentLink creates a hosted payment link for counter-staff
// initiated collections
func (s *RazorpayService) CreatePaymentLink(amount float64, description string, customer *PaymentLinkCustomer) (*RazorpayPaymentLink, error) {
	if s.config.KeyID == "" || s.config.KeySecret == "" {
		return nil, fmt.Errorf("%w: missing merchant credentials", ErrGatewayUnavailable)
	}

	if description == "" {
		description = "Temple Seva Payment"
	}

	payload := map[string]interface{}{
		"amount":          ToMinorUnits(amount),
		"currency":        s.config.Currency,
		"accept_partial":  false,
		"description":     description,
		"notify":          map[string]bool{"sms": true, "email": true},
		"reminder_enable": true,
	}
	if customer != nil {
		payload["customer"] = customer
	}

	var link RazorpayPaymentLink
	if err := s.post("/payment_links", payload, &link); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"link_id": link.ID,
		"amount":  link.Amount,
	}).Info("Gateway payment link created")

	return &link, nil
}

// VerifySignature checks a checkout signature: HMAC-SHA256 of
// "<order_id>|<payment_id>" keyed with the merchant secret
func (s *RazorpayService) VerifySignature(orderID, paymentID, signature string) error {
	mac := hmac.New(sha256.New, []byte(s.config.KeySecret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(strings.TrimSpace(signature))) {
		return ErrInvalidSignature
	}

	return nil
}

// post sends an authenticated JSON request to the gateway and decodes
// the response into out
func (s *RazorpayService) post(path string, payload interface{}, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode gateway request: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, s.config.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build gateway request: %w", err)
	}
	req.SetBasicAuth(s.config.KeyID, s.config.KeySecret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.WithError(err).Error("Gateway request failed")
		return fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: failed to read response: %v", ErrGatewayUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var gwErr razorpayError
		if json.Unmarshal(respBody, &gwErr) == nil && gwErr.Error.Description != "" {
			s.logger.WithFields(logrus.Fields{
				"status": resp.StatusCode,
				"code":   gwErr.Error.Code,
			}).Error("Gateway rejected request: " + gwErr.Error.Description)
			return fmt.Errorf("%w: %s", ErrGatewayUnavailable, gwErr.Error.Description)
		}
		return fmt.Errorf("%w: unexpected status %d", ErrGatewayUnavailable, resp.StatusCode)
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("%w: failed to decode response: %v", ErrGatewayUnavailable, err)
	}

	return nil
}
