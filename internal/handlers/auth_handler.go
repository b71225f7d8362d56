package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/templetrust/seva-booking-backend/internal/config"
	"github.com/templetrust/seva-booking-backend/internal/database"
	"github.com/templetrust/seva-booking-backend/internal/middleware"
	"github.com/templetrust/seva-booking-backend/internal/models"
	"github.com/templetrust/seva-booking-backend/pkg/jwt"
	"github.com/templetrust/seva-booking-backend/pkg/validator"
)

// AuthHandler handles staff authentication
type AuthHandler struct {
	adminUserRepo  *database.AdminUserRepository
	jwtService     *jwt.Service
	phoneValidator *validator.PhoneValidator
	cfg            *config.Config
	logger         *logrus.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(
	adminUserRepo *database.AdminUserRepository,
	jwtService *jwt.Service,
	phoneValidator *validator.PhoneValidator,
	cfg *config.Config,
	logger *logrus.Logger,
) *AuthHandler {
	return &AuthHandler{
		adminUserRepo:  adminUserRepo,
		jwtService:     jwtService,
		phoneValidator: phoneValidator,
		cfg:            cfg,
		logger:         logger,
	}
}

// Login authenticates a staff account
// @Summary Staff login
// @Description Authenticate with phone and password, returning an access/refresh token pair
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "Login credentials"
// @Success 200 {object} models.TokenResponse
// @Failure 400 {object} map[string]interface{} "Invalid request"
// @Failure 401 {object} map[string]interface{} "Invalid credentials"
// @Router /api/v1/admin/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	phone, err := h.phoneValidator.Validate(req.Phone)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "field": "phone"})
		return
	}

	user, err := h.adminUserRepo.GetByPhone(phone)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			// Same response as a wrong password; do not leak which
			// accounts exist
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid phone or password"})
			return
		}
		h.logger.WithError(err).Error("Failed to fetch admin user")
		respondError(c, err)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		h.logger.WithField("phone", phone).Warn("Admin login failed: wrong password")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid phone or password"})
		return
	}

	response, err := h.issueTokens(user)
	if err != nil {
		h.logger.WithError(err).Error("Failed to issue tokens")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue tokens"})
		return
	}

	h.logger.WithFields(logrus.Fields{
		"admin_id": user.ID,
		"phone":    user.Phone,
	}).Info("Admin login successful")

	c.JSON(http.StatusOK, response)
}

// RefreshToken exchanges a refresh token for a new token pair
// @Summary Refresh access token
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body models.RefreshRequest true "Refresh token"
// @Success 200 {object} models.TokenResponse
// @Failure 401 {object} map[string]interface{} "Invalid refresh token"
// @Router /api/v1/admin/auth/refresh [post]
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req models.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	claims, err := h.jwtService.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		h.logger.WithError(err).Warn("Token refresh failed")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid refresh token"})
		return
	}

	// Re-fetch the account so revoked staff lose access on refresh
	user, err := h.adminUserRepo.GetByID(claims.UserID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Account no longer exists"})
			return
		}
		respondError(c, err)
		return
	}

	response, err := h.issueTokens(user)
	if err != nil {
		h.logger.WithError(err).Error("Failed to issue tokens")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue tokens"})
		return
	}

	c.JSON(http.StatusOK, response)
}

// ChangePasswordRequest updates the caller's password
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=8"`
}

// ChangePassword updates the authenticated staff account's password
// @Summary Change password
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body ChangePasswordRequest true "Password change"
// @Success 200 {object} map[string]interface{} "Password changed"
// @Failure 401 {object} map[string]interface{} "Wrong current password"
// @Security BearerAuth
// @Router /api/v1/admin/auth/password [put]
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	user, err := h.adminUserRepo.GetByID(userCtx.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Current password is incorrect"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), h.cfg.Security.BcryptCost)
	if err != nil {
		h.logger.WithError(err).Error("Failed to hash password")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to change password"})
		return
	}

	if err := h.adminUserRepo.UpdatePassword(user.ID, string(hash)); err != nil {
		h.logger.WithError(err).Error("Failed to store password")
		respondError(c, err)
		return
	}

	h.logger.WithField("admin_id", user.ID).Info("Admin password changed")

	c.JSON(http.StatusOK, gin.H{"message": "Password changed successfully"})
}

// issueTokens builds a token pair for a staff account
func (h *AuthHandler) issueTokens(user *models.AdminUser) (*models.TokenResponse, error) {
	accessToken, err := h.jwtService.GenerateAccessToken(user.ID, user.Phone, []string{user.Role})
	if err != nil {
		return nil, err
	}

	refreshToken, err := h.jwtService.GenerateRefreshToken(user.ID, user.Phone)
	if err != nil {
		return nil, err
	}

	return &models.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(h.cfg.JWT.AccessTokenExpiry.Seconds()),
	}, nil
}
