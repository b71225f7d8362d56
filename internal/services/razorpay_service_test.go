package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/templetrust/seva-booking-backend/internal/config"
)

func testRazorpayService(baseURL string) *RazorpayService {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewRazorpayService(&config.PaymentConfig{
		KeyID:     "rzp_test_key",
		KeySecret: "secret123",
		BaseURL:   baseURL,
		Currency:  "INR",
	}, logger)
}

func TestToMinorUnits(t *testing.T) {
	assert.Equal(t, int64(100), ToMinorUnits(1))
	assert.Equal(t, int64(29999), ToMinorUnits(299.99))
	assert.Equal(t, int64(50), ToMinorUnits(0.5))
	// float arithmetic must not drift the paise value
	assert.Equal(t, int64(123456), ToMinorUnits(1234.56))
}

func TestCreateOrder(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		var gotPath string
		var gotBody map[string]interface{}

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			user, pass, ok := r.BasicAuth()
			require.True(t, ok)
			assert.Equal(t, "rzp_test_key", user)
			assert.Equal(t, "secret123", pass)

			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]interface{}{
				"id":       "order_test123",
				"entity":   "order",
				"amount":   50100,
				"currency": "INR",
				"receipt":  gotBody["receipt"],
				"status":   "created",
			})
		}))
		defer server.Close()

		svc := testRazorpayService(server.URL)

		order, err := svc.CreateOrder(501, "seva_ref_1", map[string]string{"seva": "Abhisheka"})
		require.NoError(t, err)
		assert.Equal(t, "order_test123", order.ID)
		assert.Equal(t, int64(50100), order.Amount)
		assert.Equal(t, "/orders", gotPath)
		assert.Equal(t, float64(50100), gotBody["amount"])
		assert.Equal(t, float64(1), gotBody["payment_capture"])
	})

	t.Run("Receipt Trimmed To Gateway Limit", func(t *testing.T) {
		var gotReceipt string

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var body map[string]interface{}
			json.NewDecoder(r.Body).Decode(&body)
			gotReceipt, _ = body["receipt"].(string)
			json.NewEncoder(w).Encode(map[string]interface{}{"id": "order_x", "amount": 100, "currency": "INR"})
		}))
		defer server.Close()

		svc := testRazorpayService(server.URL)

		longReceipt := strings.Repeat("a", 60)
		_, err := svc.CreateOrder(1, longReceipt, nil)
		require.NoError(t, err)
		assert.Len(t, gotReceipt, maxReceiptTagLength)
	})

	t.Run("Gateway Error Envelope", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"error": map[string]interface{}{
					"code":        "BAD_REQUEST_ERROR",
					"description": "amount must be at least 100",
				},
			})
		}))
		defer server.Close()

		svc := testRazorpayService(server.URL)

		order, err := svc.CreateOrder(0.5, "r", nil)
		assert.Nil(t, order)
		assert.ErrorIs(t, err, ErrGatewayUnavailable)
		assert.Contains(t, err.Error(), "amount must be at least 100")
	})

	t.Run("Missing Credentials", func(t *testing.T) {
		logger := logrus.New()
		logger.SetOutput(io.Discard)
		svc := NewRazorpayService(&config.PaymentConfig{Currency: "INR"}, logger)

		order, err := svc.CreateOrder(100, "r", nil)
		assert.Nil(t, order)
		assert.ErrorIs(t, err, ErrGatewayUnavailable)
	})
}

func TestCreatePaymentLink(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/payment_links", r.URL.Path)

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, float64(25000), body["amount"])
		assert.Equal(t, false, body["accept_partial"])

		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":        "plink_test1",
			"short_url": "https://rzp.io/l/test1",
			"amount":    25000,
			"currency":  "INR",
			"status":    "created",
		})
	}))
	defer server.Close()

	svc := testRazorpayService(server.URL)

	link, err := svc.CreatePaymentLink(250, "Seva payment", &PaymentLinkCustomer{
		Name:    "Ramesh",
		Contact: "9876543210",
	})
	require.NoError(t, err)
	assert.Equal(t, "plink_test1", link.ID)
	assert.Equal(t, "https://rzp.io/l/test1", link.ShortURL)
}

func TestVerifySignature(t *testing.T) {
	svc := testRazorpayService("http://unused")

	sign := func(orderID, paymentID string) string {
		mac := hmac.New(sha256.New, []byte("secret123"))
		mac.Write([]byte(orderID + "|" + paymentID))
		return hex.EncodeToString(mac.Sum(nil))
	}

	t.Run("Valid", func(t *testing.T) {
		sig := sign("order_abc", "pay_123")
		assert.NoError(t, svc.VerifySignature("order_abc", "pay_123", sig))
	})

	t.Run("Trims Whitespace", func(t *testing.T) {
		sig := "  " + sign("order_abc", "pay_123") + "\n"
		assert.NoError(t, svc.VerifySignature("order_abc", "pay_123", sig))
	})

	t.Run("Invalid", func(t *testing.T) {
		err := svc.VerifySignature("order_abc", "pay_123", "deadbeef")
		assert.ErrorIs(t, err, ErrInvalidSignature)
	})

	t.Run("Wrong Payment ID", func(t *testing.T) {
		sig := sign("order_abc", "pay_123")
		err := svc.VerifySignature("order_abc", "pay_456", sig)
		assert.ErrorIs(t, err, ErrInvalidSignature)
	})
}
