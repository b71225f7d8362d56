package validator

import (
	"errors"
	"regexp"
	"strings"
)

var (
	// ErrInvalidLength indicates phone number length is not 10 digits
	ErrInvalidLength = errors.New("phone number must be exactly 10 digits")

	// ErrInvalidFormat indicates phone number contains invalid characters
	ErrInvalidFormat = errors.New("phone number can only contain digits")

	// ErrEmptyPhone indicates phone number is empty
	ErrEmptyPhone = errors.New("phone number cannot be empty")

	// ErrInvalidPincode indicates postal code is not 6 digits
	ErrInvalidPincode = errors.New("pincode must be exactly 6 digits")
)

// digitsRegex matches digits only
var digitsRegex = regexp.MustCompile(`^\d+$`)

// PhoneValidator handles Indian mobile number validation
type PhoneValidator struct{}

// NewPhoneValidator creates a new phone validator instance
func NewPhoneValidator() *PhoneValidator {
	return &PhoneValidator{}
}

// Validate validates a 10-digit Indian mobile number.
// Accepts format: 9876543210 or 98765 43210 or +91-98765-43210.
// Returns sanitized phone number (digits only) and error if invalid.
func (v *PhoneValidator) Validate(phone string) (string, error) {
	if phone == "" {
		return "", ErrEmptyPhone
	}

	sanitized := v.Sanitize(phone)

	if !digitsRegex.MatchString(sanitized) {
		return "", ErrInvalidFormat
	}

	if len(sanitized) != 10 {
		return "", ErrInvalidLength
	}

	return sanitized, nil
}

// Sanitize removes all non-digit separators from a phone number
func (v *PhoneValidator) Sanitize(phone string) string {
	phone = strings.ReplaceAll(phone, " ", "")
	phone = strings.ReplaceAll(phone, "-", "")
	phone = strings.ReplaceAll(phone, "(", "")
	phone = strings.ReplaceAll(phone, ")", "")
	phone = strings.ReplaceAll(phone, "+", "")
	phone = strings.ReplaceAll(phone, ".", "")

	// Strip country code if present (91)
	if strings.HasPrefix(phone, "91") && len(phone) == 12 {
		phone = phone[2:]
	}

	return phone
}

// ValidatePincode validates an Indian postal code (exactly 6 digits).
// Empty input is allowed; pincode is an optional field on bookings.
func (v *PhoneValidator) ValidatePincode(pincode string) error {
	if pincode == "" {
		return nil
	}

	if !digitsRegex.MatchString(pincode) || len(pincode) != 6 {
		return ErrInvalidPincode
	}

	return nil
}
