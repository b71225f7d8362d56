package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jinzhu/now"
	"github.com/mssola/user_agent"
	"github.com/sirupsen/logrus"
	"github.com/templetrust/seva-booking-backend/internal/config"
	"github.com/templetrust/seva-booking-backend/internal/database"
	"github.com/templetrust/seva-booking-backend/internal/models"
	"github.com/templetrust/seva-booking-backend/pkg/validator"
)

// BookingService orchestrates booking creation across the three payment
// modes and reacts to their distinct confirmation signals
type BookingService struct {
	bookingRepo      *database.BookingRepository
	devoteeRepo      *database.DevoteeRepository
	sevaRepo         *database.SevaRepository
	settingRepo      *database.SystemSettingRepository
	notificationRepo *database.NotificationRepository
	razorpayService  *RazorpayService
	phoneValidator   *validator.PhoneValidator
	cfg              *config.Config
	logger           *logrus.Logger
}

// NewBookingService creates a new BookingService
func NewBookingService(
	bookingRepo *database.BookingRepository,
	devoteeRepo *database.DevoteeRepository,
	sevaRepo *database.SevaRepository,
	settingRepo *database.SystemSettingRepository,
	notificationRepo *database.NotificationRepository,
	razorpayService *RazorpayService,
	phoneValidator *validator.PhoneValidator,
	cfg *config.Config,
	logger *logrus.Logger,
) *BookingService {
	return &BookingService{
		bookingRepo:      bookingRepo,
		devoteeRepo:      devoteeRepo,
		sevaRepo:         sevaRepo,
		settingRepo:      settingRepo,
		notificationRepo: notificationRepo,
		razorpayService:  razorpayService,
		phoneValidator:   phoneValidator,
		cfg:              cfg,
		logger:           logger,
	}
}

// Create validates a booking intent and finalizes it per payment mode:
// gateway bookings get a Razorpay order and stay Pending until the
// client reports checkout success; upi and cash bookings are confirmed
// immediately. The ledger insert, receipt allocation and devotee merge
// run as one transactional unit.
func (s *BookingService) Create(userID *uuid.UUID, req *models.CreateBookingRequest, userAgent string) (*models.CreateBookingResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// Guests must identify with a valid mobile number; receipts and
	// self-service lookup key on it.
	phone := req.GuestPhone
	if phone == "" && userID == nil {
		return nil, models.NewFieldError("guestPhone", "phone number is required for guest bookings")
	}
	if phone != "" {
		sanitized, err := s.phoneValidator.Validate(phone)
		if err != nil {
			return nil, models.NewFieldError("guestPhone", err.Error())
		}
		phone = sanitized
	}

	if err := s.phoneValidator.ValidatePincode(req.Pincode); err != nil {
		return nil, models.NewFieldError("pincode", err.Error())
	}

	sevaID, err := uuid.Parse(req.SevaID)
	if err != nil {
		return nil, models.NewFieldError("sevaId", "must be a valid seva id")
	}
	seva, err := s.sevaRepo.GetByID(sevaID)
	if err != nil {
		return nil, err
	}

	settings, err := s.settingRepo.LoadView()
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	bookingDate := time.Now()
	if req.BookingDate != nil {
		bookingDate = *req.BookingDate
	}
	if !settings.AllowSameDayBooking && !bookingDate.After(now.New(time.Now()).EndOfDay()) {
		return nil, models.NewFieldError("bookingDate", "same-day booking is currently disabled")
	}

	sevaName := req.SevaName
	if sevaName == "" {
		sevaName = seva.DisplayName()
	}

	booking := &models.Booking{
		ID:          uuid.New(),
		UserID:      userID,
		GuestPhone:  strPtr(phone),
		SevaID:      seva.ID,
		SevaName:    strPtr(sevaName),
		DevoteeName: strings.TrimSpace(req.DevoteeName),
		Gothram:     strPtr(req.Gothram),
		Rashi:       strPtr(req.Rashi),
		Nakshatra:   strPtr(req.Nakshatra),
		State:       defaultStr(req.State, s.cfg.Booking.DefaultState),
		District:    defaultStr(req.District, s.cfg.Booking.DefaultDistrict),
		Taluk:       defaultStr(req.Taluk, s.cfg.Booking.DefaultTaluk),
		Pincode:     strPtr(req.Pincode),
		Place:       strPtr(req.Place),
		Address:     strPtr(req.Address),
		PaymentMode: req.PaymentMode,
		TotalAmount: req.TotalAmount,
		BookingDate: bookingDate,
		BookingType: req.BookingType,
		Count:       req.Count,
	}

	if booking.DevoteeName == "" {
		return nil, models.NewFieldError("devoteeName", "devotee name cannot be empty")
	}

	receiptTag := "seva_" + strings.ReplaceAll(booking.ID.String(), "-", "")

	var order *RazorpayOrder
	switch req.PaymentMode {
	case models.PaymentModeGateway:
		// The order is created before the ledger transaction; a gateway
		// failure leaves no partial booking row behind.
		order, err = s.razorpayService.CreateOrder(req.TotalAmount, receiptTag, map[string]string{
			"seva":    sevaName,
			"devotee": booking.DevoteeName,
		})
		if err != nil {
			return nil, err
		}
		booking.RazorpayOrderID = strPtr(order.ID)
		booking.IsPaid = false
		booking.Status = models.BookingStatusPending

	case models.PaymentModeUPI:
		// Counter-mediated UPI carries the cash trust model; the UTR, if
		// supplied, is stored for audit but not verified with any bank.
		booking.UTRNumber = strPtr(req.UTRNumber)
		booking.IsPaid = true
		booking.Status = models.BookingStatusConfirmed

	case models.PaymentModeCash:
		booking.IsPaid = true
		booking.Status = models.BookingStatusConfirmed
	}

	profile := models.DevoteeProfile{
		FullName:    booking.DevoteeName,
		Gothram:     req.Gothram,
		State:       req.State,
		District:    req.District,
		Taluk:       req.Taluk,
		Pincode:     req.Pincode,
		Place:       req.Place,
		FullAddress: req.Address,
	}

	if err := s.bookingRepo.Create(booking, profile, s.devoteeRepo); err != nil {
		return nil, err
	}

	s.emitNotification(models.NotificationTypeBooking,
		fmt.Sprintf("New booking for %s by %s", sevaName, bookedBy(booking)),
		booking.ID, userAgent)

	response := &models.CreateBookingResponse{Booking: booking}
	switch req.PaymentMode {
	case models.PaymentModeGateway:
		response.GatewayKey = s.razorpayService.Key()
		response.GatewayOrder = &models.GatewayOrder{
			ID:       order.ID,
			Amount:   order.Amount,
			Currency: order.Currency,
		}
	case models.PaymentModeUPI:
		response.UPIIntent = BuildUPIIntent(UPIIntentParams{
			VPA:       settings.UPIID,
			PayeeName: settings.TempleName,
			Amount:    booking.TotalAmount,
			Note:      sevaName,
			TxnRef:    receiptTag,
		})
	}

	return response, nil
}

// ConfirmPayment records a client-reported gateway checkout success.
// When the client supplies a checkout signature it is verified against
// the order/payment pair; absent a signature the success signal is
// trusted as-is.
func (s *BookingService) ConfirmPayment(bookingID uuid.UUID, req *models.ConfirmPaymentRequest) (*models.Booking, error) {
	booking, err := s.bookingRepo.GetByID(bookingID)
	if err != nil {
		return nil, err
	}

	if booking.PaymentMode != models.PaymentModeGateway || booking.RazorpayOrderID == nil {
		return nil, models.NewFieldError("paymentMode", "booking has no pending gateway order")
	}

	if req.RazorpaySignature != "" {
		if err := s.razorpayService.VerifySignature(*booking.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature); err != nil {
			return nil, err
		}
	}

	confirmed, err := s.bookingRepo.ConfirmGatewayPayment(bookingID, req.RazorpayPaymentID)
	if err != nil {
		return nil, err
	}

	s.emitNotification(models.NotificationTypePayment,
		fmt.Sprintf("Payment confirmed for receipt #%d (%s)", confirmed.ReceiptNo, confirmed.DevoteeName),
		confirmed.ID, "")

	return confirmed, nil
}

// emitNotification appends an admin alert. Emission is best-effort:
// failures are logged and never surfaced to the booking caller.
func (s *BookingService) emitNotification(kind models.NotificationType, message string, bookingID uuid.UUID, userAgent string) {
	notification := &models.Notification{
		Type:       kind,
		Message:    message,
		BookingID:  &bookingID,
		ClientInfo: summarizeUserAgent(userAgent),
	}

	if err := s.notificationRepo.Create(notification); err != nil {
		s.logger.WithError(err).WithField("booking_id", bookingID).Warn("Failed to emit notification")
	}
}

// summarizeUserAgent condenses a raw User-Agent header into a short
// browser/OS label for the notification feed
func summarizeUserAgent(raw string) *string {
	if raw == "" {
		return nil
	}

	ua := user_agent.New(raw)
	name, version := ua.Browser()
	if name == "" {
		return strPtr(ua.OS())
	}

	summary := name
	if version != "" {
		summary += " " + version
	}
	if os := ua.OS(); os != "" {
		summary += " on " + os
	}
	return &summary
}

// bookedBy picks the display name for a booking's notification line
func bookedBy(booking *models.Booking) string {
	if booking.DevoteeName != "" {
		return booking.DevoteeName
	}
	if booking.GuestPhone != nil {
		return *booking.GuestPhone
	}
	return "Guest"
}

// strPtr returns nil for empty strings so optional columns store NULL
func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// defaultStr falls back to def when s is empty
func defaultStr(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
