package models

import (
	"time"

	"github.com/google/uuid"
)

// Devotee is the merged identity record for a phone number. The spend
// and visit counters only ever increase; they are driven by booking
// creation and never recalculated afterwards.
type Devotee struct {
	ID               uuid.UUID `json:"id" db:"id"`
	Mobile           string    `json:"mobile" db:"mobile"`
	FullName         string    `json:"full_name" db:"full_name"`
	Gothram          *string   `json:"gothram,omitempty" db:"gothram"`
	State            *string   `json:"state,omitempty" db:"state"`
	District         *string   `json:"district,omitempty" db:"district"`
	Taluk            *string   `json:"taluk,omitempty" db:"taluk"`
	Pincode          *string   `json:"pincode,omitempty" db:"pincode"`
	Place            *string   `json:"place,omitempty" db:"place"`
	FullAddress      *string   `json:"full_address,omitempty" db:"full_address"`
	TotalAmountSpent float64   `json:"total_amount_spent" db:"total_amount_spent"`
	SevaCount        int       `json:"seva_count" db:"seva_count"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time `json:"updated_at" db:"updated_at"`
}

// DevoteeProfile carries the profile fields merged into a devotee on
// each booking. Empty values never overwrite existing data.
type DevoteeProfile struct {
	FullName    string
	Gothram     string
	State       string
	District    string
	Taluk       string
	Pincode     string
	Place       string
	FullAddress string
}

// UpdateDevoteeRequest is an admin correction patch. Changing the
// mobile number repoints all historical bookings atomically.
type UpdateDevoteeRequest struct {
	Mobile      *string `json:"mobile,omitempty"`
	FullName    *string `json:"fullName,omitempty"`
	Gothram     *string `json:"gothram,omitempty"`
	State       *string `json:"state,omitempty"`
	District    *string `json:"district,omitempty"`
	Taluk       *string `json:"taluk,omitempty"`
	Pincode     *string `json:"pincode,omitempty"`
	Place       *string `json:"place,omitempty"`
	FullAddress *string `json:"fullAddress,omitempty"`
}
