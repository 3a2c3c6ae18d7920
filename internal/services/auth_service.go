// internal/services/auth_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/ermimobile/emobile-backend/internal/config"
	"github.com/ermimobile/emobile-backend/internal/models"
	"github.com/ermimobile/emobile-backend/internal/utils"
)

const verificationTTL = 24 * time.Hour

type AuthService struct {
	db            *gorm.DB
	cfg           *config.Config
	notifications *NotificationService
	carts         *CartService
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,strong_password"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type ResendVerificationRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type AuthResponse struct {
	User         *models.User    `json:"user"`
	Identity     models.Identity `json:"identity"`
	AccessToken  string          `json:"access_token"`
	RefreshToken string          `json:"refresh_token"`
	TokenType    string          `json:"token_type"`
	ExpiresIn    int             `json:"expires_in"` // in seconds
	Cart         *CartSummary    `json:"cart,omitempty"`
}

func NewAuthService(db *gorm.DB, cfg *config.Config, notifications *NotificationService, carts *CartService) *AuthService {
	return &AuthService{
		db:            db,
		cfg:           cfg,
		notifications: notifications,
		carts:         carts,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates an unverified account and sends the verification link.
func (s *AuthService) Register(req *RegisterRequest) (*models.User, error) {
	email := normalizeEmail(req.Email)

	var count int64
	if err := s.db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	if count > 0 {
		return nil, ErrEmailExists
	}

	token, err := utils.GenerateVerificationToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate verification token: %w", err)
	}
	expires := time.Now().Add(verificationTTL)
	tokenHash := utils.HashString(token)

	user := &models.User{
		Name:                     strings.TrimSpace(req.Name),
		Email:                    email,
		Role:                     models.UserRoleUser,
		VerificationToken:        &tokenHash,
		VerificationTokenExpires: &expires,
	}

	if err := user.SetPassword(req.Password); err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.db.Create(user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	logrus.WithField("user_id", user.ID).Info("User registered")

	// Send verification email (async)
	go s.sendVerification(user, token)

	return user, nil
}

// Login authenticates a verified user and switches the device from its guest
// cart to the user's cart.
func (s *AuthService) Login(ctx context.Context, req *LoginRequest, guest models.Identity) (*AuthResponse, error) {
	var user models.User
	if err := s.db.Where("email = ?", normalizeEmail(req.Email)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if err := user.CheckPassword(req.Password); err != nil {
		return nil, ErrInvalidCredentials
	}

	if !user.EmailVerified {
		return nil, ErrEmailNotVerified
	}

	now := time.Now()
	user.LastLoginAt = &now
	if err := s.db.Model(&user).Update("last_login_at", now).Error; err != nil {
		logrus.WithError(err).WithField("user_id", user.ID).Warn("Failed to record last login")
	}

	resp, err := s.issueTokens(&user, guest.DeviceID)
	if err != nil {
		return nil, err
	}

	cart, cartErr := s.carts.OnLogin(ctx, guest.Guest(), resp.Identity)
	summary := Summarize(cart)
	resp.Cart = &summary

	logrus.WithField("user_id", user.ID).Info("User logged in")
	return resp, cartErr
}

// Logout stores the user's cart and returns the device's guest cart.
func (s *AuthService) Logout(ctx context.Context, identity models.Identity) (*models.Cart, error) {
	if identity.IsGuest() {
		return s.carts.Load(ctx, identity), nil
	}
	return s.carts.OnLogout(ctx, identity, identity.Guest())
}

func (s *AuthService) RefreshToken(refreshToken, deviceID string) (*AuthResponse, error) {
	userIDStr, err := utils.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRefreshToken, err)
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}

	user, err := s.GetUserByID(userID)
	if err != nil {
		return nil, err
	}

	return s.issueTokens(user, deviceID)
}

func (s *AuthService) VerifyEmail(token string) error {
	if token == "" {
		return ErrInvalidVerificationToken
	}

	var user models.User
	if err := s.db.Where("verification_token = ?", utils.HashString(token)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidVerificationToken
		}
		return fmt.Errorf("database error: %w", err)
	}

	if user.EmailVerified {
		return ErrEmailAlreadyVerified
	}

	if user.VerificationTokenExpires == nil || time.Now().After(*user.VerificationTokenExpires) {
		return ErrInvalidVerificationToken
	}

	err := s.db.Model(&user).Updates(map[string]interface{}{
		"email_verified":             true,
		"verification_token":         nil,
		"verification_token_expires": nil,
	}).Error
	if err != nil {
		return fmt.Errorf("failed to verify email: %w", err)
	}

	logrus.WithField("user_id", user.ID).Info("Email verified")
	return nil
}

// ResendVerification issues a fresh link. Unknown addresses succeed silently.
func (s *AuthService) ResendVerification(email string) error {
	var user models.User
	if err := s.db.Where("email = ?", normalizeEmail(email)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return fmt.Errorf("database error: %w", err)
	}

	if user.EmailVerified {
		return ErrEmailAlreadyVerified
	}

	token, err := utils.GenerateVerificationToken()
	if err != nil {
		return fmt.Errorf("failed to generate verification token: %w", err)
	}
	expires := time.Now().Add(verificationTTL)

	err = s.db.Model(&user).Updates(map[string]interface{}{
		"verification_token":         utils.HashString(token),
		"verification_token_expires": expires,
	}).Error
	if err != nil {
		return fmt.Errorf("failed to store verification token: %w", err)
	}

	go s.sendVerification(&user, token)
	return nil
}

func (s *AuthService) GetUserByID(userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.Where("id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &user, nil
}

func (s *AuthService) issueTokens(user *models.User, deviceID string) (*AuthResponse, error) {
	accessToken, err := utils.GenerateJWT(user.ID, user.Name, string(user.Role), s.cfg.JWT.AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := utils.GenerateRefreshToken(user.ID, s.cfg.JWT.RefreshTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	return &AuthResponse{
		User:         user,
		Identity:     models.UserIdentity(user, deviceID),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    s.cfg.JWT.AccessTokenTTL * 3600, // Convert hours to seconds
	}, nil
}

func (s *AuthService) sendVerification(user *models.User, token string) {
	if s.notifications == nil {
		return
	}
	if err := s.notifications.SendVerificationEmail(user, token); err != nil {
		logrus.WithError(err).WithField("user_id", user.ID).Error("Failed to send verification email")
	}
}
