package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatePhone(t *testing.T) {
	v := NewPhoneValidator()

	tests := []struct {
		name      string
		input     string
		expected  string
		expectErr error
	}{
		{"Valid plain number", "9876543210", "9876543210", nil},
		{"Valid with spaces", "98765 43210", "9876543210", nil},
		{"Valid with dashes", "98765-43210", "9876543210", nil},
		{"Valid with country code", "+919876543210", "9876543210", nil},
		{"Valid with country code and dashes", "+91-98765-43210", "9876543210", nil},
		{"Empty", "", "", ErrEmptyPhone},
		{"Too short", "12345", "", ErrInvalidLength},
		{"Too long", "98765432101", "", ErrInvalidLength},
		{"Letters", "98765abcde", "", ErrInvalidFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := v.Validate(tt.input)
			if tt.expectErr != nil {
				assert.ErrorIs(t, err, tt.expectErr)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestValidatePincode(t *testing.T) {
	v := NewPhoneValidator()

	assert.NoError(t, v.ValidatePincode(""))
	assert.NoError(t, v.ValidatePincode("591304"))
	assert.ErrorIs(t, v.ValidatePincode("5913"), ErrInvalidPincode)
	assert.ErrorIs(t, v.ValidatePincode("5913041"), ErrInvalidPincode)
	assert.ErrorIs(t, v.ValidatePincode("59130a"), ErrInvalidPincode)
}

func TestSanitize(t *testing.T) {
	v := NewPhoneValidator()

	assert.Equal(t, "9876543210", v.Sanitize("(987) 654-3210"))
	assert.Equal(t, "9876543210", v.Sanitize("91 98765 43210"))
	// 91 prefix only stripped when the remainder is a full number
	assert.Equal(t, "9187654321", v.Sanitize("9187654321"))
}
