// internal/handlers/auth.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ermimobile/emobile-backend/internal/i18n"
	"github.com/ermimobile/emobile-backend/internal/services"
	"github.com/ermimobile/emobile-backend/internal/utils"
)

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// POST /auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req services.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.authService.Register(&req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(utils.GetLangFromContext(c), i18n.KeyAuthRegisterSuccess),
		"user":    user,
	})
}

// POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req services.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	identity := utils.GetIdentityFromContext(c)
	authResponse, err := h.authService.Login(c.Request.Context(), &req, identity.Guest())
	switch {
	case err == nil:
		utils.SuccessResponse(c, authResponse)
	case errors.Is(err, services.ErrCartNotPersisted) && authResponse != nil:
		lang := utils.GetLangFromContext(c)
		utils.WarningResponse(c, http.StatusOK, authResponse, "CART_NOT_PERSISTED", i18n.T(lang, i18n.KeyCartNotPersisted))
	default:
		respondError(c, err)
	}
}

// POST /auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	cart, err := h.authService.Logout(c.Request.Context(), utils.GetIdentityFromContext(c))
	data := gin.H{
		"message": i18n.T(lang, i18n.KeyAuthLogoutSuccess),
		"cart":    services.Summarize(cart),
	}

	if err != nil {
		utils.WarningResponse(c, http.StatusOK, data, "CART_NOT_PERSISTED", i18n.T(lang, i18n.KeyCartNotPersisted))
		return
	}
	utils.SuccessResponse(c, data)
}

// POST /auth/refresh
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req services.RefreshTokenRequest
	if !bindJSON(c, &req) {
		return
	}

	identity := utils.GetIdentityFromContext(c)
	authResponse, err := h.authService.RefreshToken(req.RefreshToken, identity.DeviceID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, authResponse)
}

// GET /auth/verify-email?token=
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	if err := h.authService.VerifyEmail(c.Query("token")); err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(utils.GetLangFromContext(c), i18n.KeyAuthEmailVerified),
	})
}

// POST /auth/resend-verification
func (h *AuthHandler) ResendVerification(c *gin.Context) {
	var req services.ResendVerificationRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.authService.ResendVerification(req.Email); err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(utils.GetLangFromContext(c), i18n.KeyAuthVerificationSent),
	})
}

// GET /auth/me
func (h *AuthHandler) GetProfile(c *gin.Context) {
	userID, ok := utils.GetUserUUIDFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	user, err := h.authService.GetUserByID(userID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, user)
}
