package models

import "time"

// Well-known system setting keys
const (
	SettingKeyUPIID               = "upi_id"
	SettingKeyTempleName          = "temple_name"
	SettingKeyCurrency            = "currency"
	SettingKeyTimezone            = "timezone"
	SettingKeyRitualHours         = "ritual_hours"
	SettingKeyAllowSameDayBooking = "allow_same_day_booking"
	SettingKeyNotifyDevotee       = "notify_devotee"
)

// SystemSetting is one key/value row of operational configuration
type SystemSetting struct {
	ID           int64     `json:"id" db:"id"`
	SettingKey   string    `json:"setting_key" db:"setting_key"`
	SettingValue string    `json:"setting_value" db:"setting_value"`
	Description  *string   `json:"description,omitempty" db:"description"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// SettingsView is the typed projection of the settings the clients and
// the booking engine consume
type SettingsView struct {
	UPIID               string `json:"upiId"`
	TempleName          string `json:"templeName"`
	Currency            string `json:"currency"`
	Timezone            string `json:"timezone"`
	RitualHours         string `json:"ritualHours"`
	AllowSameDayBooking bool   `json:"allowSameDayBooking"`
	NotifyDevotee       bool   `json:"notifyDevotee"`
}

// UpdateSettingsRequest is the admin settings patch; nil fields keep
// their stored values
type UpdateSettingsRequest struct {
	UPIID               *string `json:"upiId,omitempty"`
	TempleName          *string `json:"templeName,omitempty"`
	Currency            *string `json:"currency,omitempty"`
	Timezone            *string `json:"timezone,omitempty"`
	RitualHours         *string `json:"ritualHours,omitempty"`
	AllowSameDayBooking *bool   `json:"allowSameDayBooking,omitempty"`
	NotifyDevotee       *bool   `json:"notifyDevotee,omitempty"`
}
