package database

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/templetrust/seva-booking-backend/internal/models"
)

// SystemSettingRepository handles database operations for the
// system_settings table. The booking engine treats it as a read-only
// store; only the admin settings endpoint writes.
type SystemSettingRepository struct {
	db DB
}

// NewSystemSettingRepository creates a new SystemSettingRepository
func NewSystemSettingRepository(db DB) *SystemSettingRepository {
	return &SystemSettingRepository{db: db}
}

// GetAll retrieves all system settings
func (r *SystemSettingRepository) GetAll() ([]models.SystemSetting, error) {
	query := `
		SELECT id, setting_key, setting_value, description, created_at, updated_at
		FROM system_settings
		ORDER BY setting_key`

	settings := []models.SystemSetting{}
	if err := r.db.Select(&settings, query); err != nil {
		return nil, fmt.Errorf("failed to list settings: %w", err)
	}

	return settings, nil
}

// GetByKey retrieves a system setting by its key
func (r *SystemSettingRepository) GetByKey(key string) (*models.SystemSetting, error) {
	query := `
		SELECT id, setting_key, setting_value, description, created_at, updated_at
		FROM system_settings
		WHERE setting_key = $1`

	var setting models.SystemSetting
	if err := r.db.Get(&setting, query, key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch setting: %w", err)
	}

	return &setting, nil
}

// GetString returns a setting value, or the fallback when the key is
// absent
func (r *SystemSettingRepository) GetString(key, fallback string) (string, error) {
	setting, err := r.GetByKey(key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return fallback, nil
		}
		return "", err
	}
	return setting.SettingValue, nil
}

// GetBool returns a boolean setting value, or the fallback when the key
// is absent or unparseable
func (r *SystemSettingRepository) GetBool(key string, fallback bool) (bool, error) {
	setting, err := r.GetByKey(key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return fallback, nil
		}
		return false, err
	}

	value, err := strconv.ParseBool(setting.SettingValue)
	if err != nil {
		return fallback, nil
	}
	return value, nil
}

// Set upserts a system setting value
func (r *SystemSettingRepository) Set(key, value string) error {
	query := `
		INSERT INTO system_settings (setting_key, setting_value)
		VALUES ($1, $2)
		ON CONFLICT (setting_key) DO UPDATE SET
			setting_value = EXCLUDED.setting_value,
			updated_at = NOW()`

	if _, err := r.db.Exec(query, key, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}

	return nil
}

// LoadView assembles the typed settings projection the clients and the
// booking engine consume
func (r *SystemSettingRepository) LoadView() (*models.SettingsView, error) {
	settings, err := r.GetAll()
	if err != nil {
		return nil, err
	}

	view := &models.SettingsView{
		Currency:            "INR",
		Timezone:            "Asia/Kolkata",
		AllowSameDayBooking: true,
		NotifyDevotee:       true,
	}

	for _, s := range settings {
		switch s.SettingKey {
		case models.SettingKeyUPIID:
			view.UPIID = s.SettingValue
		case models.SettingKeyTempleName:
			view.TempleName = s.SettingValue
		case models.SettingKeyCurrency:
			view.Currency = s.SettingValue
		case models.SettingKeyTimezone:
			view.Timezone = s.SettingValue
		case models.SettingKeyRitualHours:
			view.RitualHours = s.SettingValue
		case models.SettingKeyAllowSameDayBooking:
			if b, err := strconv.ParseBool(s.SettingValue); err == nil {
				view.AllowSameDayBooking = b
			}
		case models.SettingKeyNotifyDevotee:
			if b, err := strconv.ParseBool(s.SettingValue); err == nil {
				view.NotifyDevotee = b
			}
		}
	}

	return view, nil
}
