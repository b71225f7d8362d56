package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validCreateRequest() *CreateBookingRequest {
	return &CreateBookingRequest{
		SevaID:      "3d3f4f6e-1111-2222-3333-444455556666",
		DevoteeName: "Ramesh Kulkarni",
		TotalAmount: 250,
		GuestPhone:  "9876543210",
		PaymentMode: PaymentModeCash,
	}
}

func TestCreateBookingRequestValidate(t *testing.T) {
	t.Run("Valid Request Applies Defaults", func(t *testing.T) {
		req := validCreateRequest()
		require.NoError(t, req.Validate())
		assert.Equal(t, 1, req.Count)
		assert.Equal(t, "individual", req.BookingType)
	})

	t.Run("Invalid Payment Mode", func(t *testing.T) {
		req := validCreateRequest()
		req.PaymentMode = "card"

		err := req.Validate()
		var fieldErr *FieldError
		require.ErrorAs(t, err, &fieldErr)
		assert.Equal(t, "paymentMode", fieldErr.Field)
	})

	t.Run("Zero Amount", func(t *testing.T) {
		req := validCreateRequest()
		req.TotalAmount = 0

		err := req.Validate()
		var fieldErr *FieldError
		require.ErrorAs(t, err, &fieldErr)
		assert.Equal(t, "totalAmount", fieldErr.Field)
	})

	t.Run("Negative Count", func(t *testing.T) {
		req := validCreateRequest()
		req.Count = -1

		err := req.Validate()
		var fieldErr *FieldError
		require.ErrorAs(t, err, &fieldErr)
		assert.Equal(t, "count", fieldErr.Field)
	})

	t.Run("UTR Length Bounds", func(t *testing.T) {
		cases := []struct {
			utr   string
			valid bool
		}{
			{"", true},                   // optional
			{"123456789012", true},       // 12 digits
			{"1234567890123456", true},   // 16 digits
			{"12345678901", false},       // 11 digits
			{"12345678901234567", false}, // 17 digits
			{"12345678901a", false},      // non-digit
		}

		for _, tc := range cases {
			req := validCreateRequest()
			req.PaymentMode = PaymentModeUPI
			req.UTRNumber = tc.utr

			err := req.Validate()
			if tc.valid {
				assert.NoError(t, err, "utr %q", tc.utr)
			} else {
				assert.Error(t, err, "utr %q", tc.utr)
			}
		}
	})

	t.Run("Place And Address Caps", func(t *testing.T) {
		req := validCreateRequest()
		req.Place = strings.Repeat("x", MaxPlaceLength+1)
		assert.Error(t, req.Validate())

		req = validCreateRequest()
		req.Address = strings.Repeat("x", MaxAddressLength+1)
		assert.Error(t, req.Validate())

		req = validCreateRequest()
		req.Place = strings.Repeat("x", MaxPlaceLength)
		req.Address = strings.Repeat("x", MaxAddressLength)
		assert.NoError(t, req.Validate())
	})
}

func TestUpdateBookingRequest(t *testing.T) {
	t.Run("Empty Patch", func(t *testing.T) {
		req := &UpdateBookingRequest{}
		assert.True(t, req.IsEmpty())
		assert.NoError(t, req.Validate())
	})

	t.Run("Invalid Status", func(t *testing.T) {
		bad := BookingStatus("Done")
		req := &UpdateBookingRequest{Status: &bad}
		assert.False(t, req.IsEmpty())

		err := req.Validate()
		var fieldErr *FieldError
		require.ErrorAs(t, err, &fieldErr)
		assert.Equal(t, "status", fieldErr.Field)
	})

	t.Run("Negative Amount", func(t *testing.T) {
		amount := -1.0
		req := &UpdateBookingRequest{TotalAmount: &amount}

		err := req.Validate()
		var fieldErr *FieldError
		require.ErrorAs(t, err, &fieldErr)
		assert.Equal(t, "totalAmount", fieldErr.Field)
	})
}

func TestPaymentModeIsValid(t *testing.T) {
	assert.True(t, PaymentModeGateway.IsValid())
	assert.True(t, PaymentModeUPI.IsValid())
	assert.True(t, PaymentModeCash.IsValid())
	assert.False(t, PaymentMode("card").IsValid())
	assert.False(t, PaymentMode("").IsValid())
}
