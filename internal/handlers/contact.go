// internal/handlers/contact.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/ermimobile/emobile-backend/internal/i18n"
	"github.com/ermimobile/emobile-backend/internal/services"
	"github.com/ermimobile/emobile-backend/internal/utils"
)

type ContactHandler struct {
	contactService *services.ContactService
}

func NewContactHandler(contactService *services.ContactService) *ContactHandler {
	return &ContactHandler{contactService: contactService}
}

// POST /contact
func (h *ContactHandler) SendMessage(c *gin.Context) {
	var req services.ContactRequest
	if !bindJSON(c, &req) {
		return
	}

	message, err := h.contactService.Create(&req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(utils.GetLangFromContext(c), i18n.KeyContactSent),
		"id":      message.ID,
	})
}

// GET /admin/contacts
func (h *ContactHandler) ListMessages(c *gin.Context) {
	result, err := h.contactService.List(utils.GetPaginationParams(c))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.PaginatedResponse(c, *result)
}

// PUT /admin/contacts/:id/status
func (h *ContactHandler) UpdateStatus(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "contact")
	if !ok {
		return
	}

	var req services.UpdateContactStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	message, err := h.contactService.UpdateStatus(id, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(utils.GetLangFromContext(c), i18n.KeyContactUpdated),
		"contact": message,
	})
}

// DELETE /admin/contacts/:id
func (h *ContactHandler) DeleteMessage(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "contact")
	if !ok {
		return
	}

	if err := h.contactService.Delete(id); err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(utils.GetLangFromContext(c), i18n.KeyContactDeleted),
	})
}
