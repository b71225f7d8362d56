package models

import (
	"time"

	"github.com/google/uuid"
)

// AdminUser is a temple staff account allowed to call the
// reconciliation endpoints
type AdminUser struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Phone        string    `json:"phone" db:"phone"`
	Name         string    `json:"name" db:"name"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         string    `json:"role" db:"role"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// LoginRequest is the admin login payload
type LoginRequest struct {
	Phone    string `json:"phone" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse carries the issued token pair
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// RefreshRequest asks for a fresh access token
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}
