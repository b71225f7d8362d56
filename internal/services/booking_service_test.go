package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/templetrust/seva-booking-backend/internal/config"
	"github.com/templetrust/seva-booking-backend/internal/database"
	"github.com/templetrust/seva-booking-backend/internal/models"
	"github.com/templetrust/seva-booking-backend/pkg/validator"
)

type bookingFixture struct {
	svc  *BookingService
	mock sqlmock.Sqlmock
	seva *models.Seva
}

func newBookingFixture(t *testing.T, gatewayURL string) *bookingFixture {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	sqlxDB := sqlx.NewDb(db, "sqlmock")

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	cfg := &config.Config{
		Payment: config.PaymentConfig{
			KeyID:     "rzp_test_key",
			KeySecret: "secret123",
			BaseURL:   gatewayURL,
			Currency:  "INR",
		},
		Booking: config.BookingConfig{
			DefaultState:    "Karnataka",
			DefaultDistrict: "Belagavi",
			DefaultTaluk:    "Athani",
		},
	}

	svc := NewBookingService(
		database.NewBookingRepository(sqlxDB, logger),
		database.NewDevoteeRepository(sqlxDB, logger),
		database.NewSevaRepository(sqlxDB),
		database.NewSystemSettingRepository(sqlxDB),
		database.NewNotificationRepository(sqlxDB),
		NewRazorpayService(&cfg.Payment, logger),
		validator.NewPhoneValidator(),
		cfg,
		logger,
	)

	return &bookingFixture{
		svc:  svc,
		mock: mock,
		seva: &models.Seva{
			ID:         uuid.New(),
			Title:      "Abhisheka",
			TempleName: "Shri Temple",
			Price:      250,
		},
	}
}

func (f *bookingFixture) expectSevaLookup() {
	f.mock.ExpectQuery(`SELECT (.+) FROM sevas WHERE id`).
		WithArgs(f.seva.ID).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "title", "title_kn", "temple_name", "temple_name_kn",
			"location", "location_kn", "price", "category", "created_at", "updated_at",
		}).AddRow(
			f.seva.ID, f.seva.Title, nil, f.seva.TempleName, nil,
			nil, nil, f.seva.Price, nil, time.Now(), time.Now(),
		))
}

func (f *bookingFixture) expectSettings(values map[string]string) {
	rows := sqlmock.NewRows([]string{
		"id", "setting_key", "setting_value", "description", "created_at", "updated_at",
	})
	i := int64(1)
	for key, value := range values {
		rows.AddRow(i, key, value, nil, time.Now(), time.Now())
		i++
	}
	f.mock.ExpectQuery(`SELECT (.+) FROM system_settings`).WillReturnRows(rows)
}

func (f *bookingFixture) expectLedgerInsert(receiptNo int64, withDevotee bool) {
	f.mock.ExpectBegin()
	f.mock.ExpectQuery(`SELECT COALESCE\(MAX\(receipt_no\), 0\) \+ 1 FROM bookings`).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(receiptNo))
	if withDevotee {
		f.mock.ExpectExec(`INSERT INTO devotees`).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}
	f.mock.ExpectQuery(`INSERT INTO bookings`).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(time.Now(), time.Now()))
	f.mock.ExpectCommit()
}

func (f *bookingFixture) expectNotification() {
	f.mock.ExpectQuery(`INSERT INTO notifications`).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))
}

func tomorrowPtr() *time.Time {
	t := time.Now().AddDate(0, 0, 1)
	return &t
}

func TestCreateCashBooking(t *testing.T) {
	f := newBookingFixture(t, "http://unused")

	f.expectSevaLookup()
	f.expectSettings(map[string]string{"upi_id": "temple@upi"})
	f.expectLedgerInsert(12, true)
	f.expectNotification()

	resp, err := f.svc.Create(nil, &models.CreateBookingRequest{
		SevaID:      f.seva.ID.String(),
		DevoteeName: "Ramesh Kulkarni",
		TotalAmount: 250,
		GuestPhone:  "98765 43210",
		PaymentMode: models.PaymentModeCash,
		BookingDate: tomorrowPtr(),
	}, "Mozilla/5.0 (X11; Linux x86_64) Chrome/120.0")
	require.NoError(t, err)

	booking := resp.Booking
	assert.Equal(t, int64(12), booking.ReceiptNo)
	assert.True(t, booking.IsPaid)
	assert.Equal(t, models.BookingStatusConfirmed, booking.Status)
	require.NotNil(t, booking.GuestPhone)
	assert.Equal(t, "9876543210", *booking.GuestPhone)
	assert.Equal(t, "Karnataka", booking.State)
	assert.Equal(t, "Belagavi", booking.District)

	assert.Empty(t, resp.UPIIntent)
	assert.Nil(t, resp.GatewayOrder)

	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestCreateUPIBooking(t *testing.T) {
	f := newBookingFixture(t, "http://unused")

	f.expectSevaLookup()
	f.expectSettings(map[string]string{
		"upi_id":      "temple@upi",
		"temple_name": "Shri Temple Trust",
	})
	f.expectLedgerInsert(13, true)
	f.expectNotification()

	resp, err := f.svc.Create(nil, &models.CreateBookingRequest{
		SevaID:      f.seva.ID.String(),
		DevoteeName: "Ramesh Kulkarni",
		TotalAmount: 250,
		GuestPhone:  "9876543210",
		PaymentMode: models.PaymentModeUPI,
		UTRNumber:   "123456789012",
		BookingDate: tomorrowPtr(),
	}, "")
	require.NoError(t, err)

	booking := resp.Booking
	assert.True(t, booking.IsPaid)
	assert.Equal(t, models.BookingStatusConfirmed, booking.Status)
	require.NotNil(t, booking.UTRNumber)
	assert.Equal(t, "123456789012", *booking.UTRNumber)

	assert.Contains(t, resp.UPIIntent, "upi://pay?pa=temple%40upi")
	assert.Contains(t, resp.UPIIntent, "&am=250")
	assert.Contains(t, resp.UPIIntent, "pn=Shri+Temple+Trust")

	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestCreateGatewayBooking(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]interface{}{
				"id":       "order_test123",
				"amount":   25000,
				"currency": "INR",
				"status":   "created",
			})
		}))
		defer server.Close()

		f := newBookingFixture(t, server.URL)

		f.expectSevaLookup()
		f.expectSettings(nil)
		f.expectLedgerInsert(14, true)
		f.expectNotification()

		resp, err := f.svc.Create(nil, &models.CreateBookingRequest{
			SevaID:      f.seva.ID.String(),
			DevoteeName: "Ramesh Kulkarni",
			TotalAmount: 250,
			GuestPhone:  "9876543210",
			PaymentMode: models.PaymentModeGateway,
			BookingDate: tomorrowPtr(),
		}, "")
		require.NoError(t, err)

		booking := resp.Booking
		assert.False(t, booking.IsPaid)
		assert.Equal(t, models.BookingStatusPending, booking.Status)
		require.NotNil(t, booking.RazorpayOrderID)
		assert.Equal(t, "order_test123", *booking.RazorpayOrderID)

		assert.Equal(t, "rzp_test_key", resp.GatewayKey)
		require.NotNil(t, resp.GatewayOrder)
		assert.Equal(t, "order_test123", resp.GatewayOrder.ID)
		assert.Equal(t, int64(25000), resp.GatewayOrder.Amount)

		assert.NoError(t, f.mock.ExpectationsWereMet())
	})

	t.Run("Gateway Failure Persists Nothing", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		f := newBookingFixture(t, server.URL)

		f.expectSevaLookup()
		f.expectSettings(nil)
		// No transaction expectations: the ledger must stay untouched

		resp, err := f.svc.Create(nil, &models.CreateBookingRequest{
			SevaID:      f.seva.ID.String(),
			DevoteeName: "Ramesh Kulkarni",
			TotalAmount: 250,
			GuestPhone:  "9876543210",
			PaymentMode: models.PaymentModeGateway,
			BookingDate: tomorrowPtr(),
		}, "")
		assert.Nil(t, resp)
		assert.ErrorIs(t, err, ErrGatewayUnavailable)
		assert.NoError(t, f.mock.ExpectationsWereMet())
	})
}

func TestCreateBookingValidation(t *testing.T) {
	t.Run("Guest Without Phone", func(t *testing.T) {
		f := newBookingFixture(t, "http://unused")

		_, err := f.svc.Create(nil, &models.CreateBookingRequest{
			SevaID:      f.seva.ID.String(),
			DevoteeName: "Ramesh",
			TotalAmount: 250,
			PaymentMode: models.PaymentModeCash,
		}, "")

		var fieldErr *models.FieldError
		require.ErrorAs(t, err, &fieldErr)
		assert.Equal(t, "guestPhone", fieldErr.Field)
	})

	t.Run("Invalid Phone", func(t *testing.T) {
		f := newBookingFixture(t, "http://unused")

		_, err := f.svc.Create(nil, &models.CreateBookingRequest{
			SevaID:      f.seva.ID.String(),
			DevoteeName: "Ramesh",
			TotalAmount: 250,
			GuestPhone:  "12345",
			PaymentMode: models.PaymentModeCash,
		}, "")

		var fieldErr *models.FieldError
		require.ErrorAs(t, err, &fieldErr)
		assert.Equal(t, "guestPhone", fieldErr.Field)
	})

	t.Run("Short UTR Rejected", func(t *testing.T) {
		f := newBookingFixture(t, "http://unused")

		_, err := f.svc.Create(nil, &models.CreateBookingRequest{
			SevaID:      f.seva.ID.String(),
			DevoteeName: "Ramesh",
			TotalAmount: 250,
			GuestPhone:  "9876543210",
			PaymentMode: models.PaymentModeUPI,
			UTRNumber:   "12345678901", // 11 digits
		}, "")

		var fieldErr *models.FieldError
		require.ErrorAs(t, err, &fieldErr)
		assert.Equal(t, "utrNumber", fieldErr.Field)
	})

	t.Run("Same Day Booking Disabled", func(t *testing.T) {
		f := newBookingFixture(t, "http://unused")

		f.expectSevaLookup()
		f.expectSettings(map[string]string{"allow_same_day_booking": "false"})

		today := time.Now()
		_, err := f.svc.Create(nil, &models.CreateBookingRequest{
			SevaID:      f.seva.ID.String(),
			DevoteeName: "Ramesh",
			TotalAmount: 250,
			GuestPhone:  "9876543210",
			PaymentMode: models.PaymentModeCash,
			BookingDate: &today,
		}, "")

		var fieldErr *models.FieldError
		require.ErrorAs(t, err, &fieldErr)
		assert.Equal(t, "bookingDate", fieldErr.Field)
		assert.NoError(t, f.mock.ExpectationsWereMet())
	})
}

func confirmBookingRow(bookingID uuid.UUID, orderID string, paid bool, status models.BookingStatus) *sqlmock.Rows {
	now := time.Now()
	sevaID := uuid.New()
	return sqlmock.NewRows([]string{
		"id", "user_id", "guest_phone", "seva_id", "seva_name", "devotee_name",
		"gothram", "rashi", "nakshatra", "state", "district", "taluk",
		"pincode", "place", "address", "payment_mode", "total_amount", "is_paid",
		"utr_number", "razorpay_order_id", "razorpay_payment_id", "receipt_no",
		"booking_date", "booking_type", "count", "status", "photo_order_completed",
		"created_at", "updated_at",
	}).AddRow(
		bookingID, nil, "9876543210", sevaID, "Abhisheka", "Ramesh Kulkarni",
		nil, nil, nil, "Karnataka", "Belagavi", "Athani",
		nil, nil, nil, models.PaymentModeGateway, 250.0, paid,
		nil, orderID, nil, int64(12),
		now, "individual", 1, status, false,
		now, now,
	)
}

func TestConfirmPayment(t *testing.T) {
	sign := func(orderID, paymentID string) string {
		mac := hmac.New(sha256.New, []byte("secret123"))
		mac.Write([]byte(orderID + "|" + paymentID))
		return hex.EncodeToString(mac.Sum(nil))
	}

	t.Run("Success With Signature", func(t *testing.T) {
		f := newBookingFixture(t, "http://unused")
		bookingID := uuid.New()

		f.mock.ExpectQuery(`SELECT (.+) FROM bookings WHERE id`).
			WithArgs(bookingID).
			WillReturnRows(confirmBookingRow(bookingID, "order_abc", false, models.BookingStatusPending))
		f.mock.ExpectQuery(`UPDATE bookings`).
			WithArgs(bookingID, "pay_123").
			WillReturnRows(confirmBookingRow(bookingID, "order_abc", true, models.BookingStatusConfirmed))
		f.expectNotification()

		booking, err := f.svc.ConfirmPayment(bookingID, &models.ConfirmPaymentRequest{
			RazorpayPaymentID: "pay_123",
			RazorpaySignature: sign("order_abc", "pay_123"),
		})
		require.NoError(t, err)
		assert.True(t, booking.IsPaid)
		assert.Equal(t, models.BookingStatusConfirmed, booking.Status)
		assert.NoError(t, f.mock.ExpectationsWereMet())
	})

	t.Run("Success Without Signature", func(t *testing.T) {
		f := newBookingFixture(t, "http://unused")
		bookingID := uuid.New()

		f.mock.ExpectQuery(`SELECT (.+) FROM bookings WHERE id`).
			WithArgs(bookingID).
			WillReturnRows(confirmBookingRow(bookingID, "order_abc", false, models.BookingStatusPending))
		f.mock.ExpectQuery(`UPDATE bookings`).
			WithArgs(bookingID, "pay_123").
			WillReturnRows(confirmBookingRow(bookingID, "order_abc", true, models.BookingStatusConfirmed))
		f.expectNotification()

		booking, err := f.svc.ConfirmPayment(bookingID, &models.ConfirmPaymentRequest{
			RazorpayPaymentID: "pay_123",
		})
		require.NoError(t, err)
		assert.True(t, booking.IsPaid)
		assert.NoError(t, f.mock.ExpectationsWereMet())
	})

	t.Run("Invalid Signature", func(t *testing.T) {
		f := newBookingFixture(t, "http://unused")
		bookingID := uuid.New()

		f.mock.ExpectQuery(`SELECT (.+) FROM bookings WHERE id`).
			WithArgs(bookingID).
			WillReturnRows(confirmBookingRow(bookingID, "order_abc", false, models.BookingStatusPending))

		booking, err := f.svc.ConfirmPayment(bookingID, &models.ConfirmPaymentRequest{
			RazorpayPaymentID: "pay_123",
			RazorpaySignature: "deadbeef",
		})
		assert.Nil(t, booking)
		assert.ErrorIs(t, err, ErrInvalidSignature)
		assert.NoError(t, f.mock.ExpectationsWereMet())
	})

	t.Run("Not A Gateway Booking", func(t *testing.T) {
		f := newBookingFixture(t, "http://unused")
		bookingID := uuid.New()

		now := time.Now()
		f.mock.ExpectQuery(`SELECT (.+) FROM bookings WHERE id`).
			WithArgs(bookingID).
			WillReturnRows(sqlmock.NewRows([]string{
				"id", "user_id", "guest_phone", "seva_id", "seva_name", "devotee_name",
				"gothram", "rashi", "nakshatra", "state", "district", "taluk",
				"pincode", "place", "address", "payment_mode", "total_amount", "is_paid",
				"utr_number", "razorpay_order_id", "razorpay_payment_id", "receipt_no",
				"booking_date", "booking_type", "count", "status", "photo_order_completed",
				"created_at", "updated_at",
			}).AddRow(
				bookingID, nil, "9876543210", uuid.New(), "Abhisheka", "Ramesh Kulkarni",
				nil, nil, nil, "Karnataka", "Belagavi", "Athani",
				nil, nil, nil, models.PaymentModeCash, 250.0, true,
				nil, nil, nil, int64(12),
				now, "individual", 1, models.BookingStatusConfirmed, false,
				now, now,
			))

		booking, err := f.svc.ConfirmPayment(bookingID, &models.ConfirmPaymentRequest{
			RazorpayPaymentID: "pay_123",
		})
		assert.Nil(t, booking)

		var fieldErr *models.FieldError
		require.ErrorAs(t, err, &fieldErr)
		assert.Equal(t, "paymentMode", fieldErr.Field)
		assert.NoError(t, f.mock.ExpectationsWereMet())
	})
}

func TestSummarizeUserAgent(t *testing.T) {
	t.Run("Browser And OS", func(t *testing.T) {
		summary := summarizeUserAgent("Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
		require.NotNil(t, summary)
		assert.Contains(t, *summary, "Chrome")
	})

	t.Run("Empty", func(t *testing.T) {
		assert.Nil(t, summarizeUserAgent(""))
	})
}
