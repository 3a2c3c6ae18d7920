// internal/handlers/settings.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ermimobile/emobile-backend/internal/i18n"
	"github.com/ermimobile/emobile-backend/internal/models"
	"github.com/ermimobile/emobile-backend/internal/services"
	"github.com/ermimobile/emobile-backend/internal/utils"
)

type SettingsHandler struct {
	settingsService *services.SettingsService
	storageService  *services.StorageService
}

func NewSettingsHandler(settingsService *services.SettingsService, storageService *services.StorageService) *SettingsHandler {
	return &SettingsHandler{
		settingsService: settingsService,
		storageService:  storageService,
	}
}

// GET /settings
func (h *SettingsHandler) GetSettings(c *gin.Context) {
	settings, err := h.settingsService.GetAll()
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, settings)
}

// GET /payment-info/:method
func (h *SettingsHandler) GetPaymentInfo(c *gin.Context) {
	info, err := h.settingsService.PaymentInfo(models.PaymentMethod(c.Param("method")))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, info)
}

// PUT /admin/settings/:key
func (h *SettingsHandler) UpdateSetting(c *gin.Context) {
	key := c.Param("key")
	if key == "" || len(key) > 100 {
		utils.BadRequestResponse(c, i18n.T(utils.GetLangFromContext(c), i18n.KeyValidationInvalid, "key"), nil)
		return
	}

	var req services.UpdateSettingRequest
	if !bindJSON(c, &req) {
		return
	}

	setting, err := h.settingsService.Update(key, req.Value, updatedBy(c))
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(utils.GetLangFromContext(c), i18n.KeySettingUpdated),
		"setting": setting,
	})
}

// POST /admin/settings/hero-image/upload
func (h *SettingsHandler) UploadHeroImage(c *gin.Context) {
	result, ok := uploadFormFile(c, h.storageService, "image", "settings")
	if !ok {
		return
	}

	setting, err := h.settingsService.Update(services.HeroImageSetting, result.URL, updatedBy(c))
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(utils.GetLangFromContext(c), i18n.KeySettingUpdated),
		"setting": setting,
		"url":     result.URL,
	})
}

func updatedBy(c *gin.Context) *uuid.UUID {
	if userID, ok := utils.GetUserUUIDFromContext(c); ok {
		return &userID
	}
	return nil
}
