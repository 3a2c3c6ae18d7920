// internal/handlers/category.go
package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ermimobile/emobile-backend/internal/i18n"
	"github.com/ermimobile/emobile-backend/internal/services"
	"github.com/ermimobile/emobile-backend/internal/utils"
)

type CategoryHandler struct {
	categoryService *services.CategoryService
	storageService  *services.StorageService
}

func NewCategoryHandler(categoryService *services.CategoryService, storageService *services.StorageService) *CategoryHandler {
	return &CategoryHandler{
		categoryService: categoryService,
		storageService:  storageService,
	}
}

// GET /categories
func (h *CategoryHandler) ListCategories(c *gin.Context) {
	categories, err := h.categoryService.ListFlat()
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, categories)
}

// GET /categories/tree?root=<id>
func (h *CategoryHandler) GetTree(c *gin.Context) {
	var root *uuid.UUID
	if rootStr := c.Query("root"); rootStr != "" {
		parsed, err := uuid.Parse(rootStr)
		if err != nil {
			utils.BadRequestResponse(c, i18n.T(utils.GetLangFromContext(c), i18n.KeyValidationID, "category"), nil)
			return
		}
		root = &parsed
	}

	tree, err := h.categoryService.BuildTree(root)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, tree)
}

// GET /categories/filter?expanded=a,b
// Replays the toggles in order and returns the visible filter entries.
func (h *CategoryHandler) GetFilter(c *gin.Context) {
	tree, err := h.categoryService.BuildTree(nil)
	if err != nil {
		respondError(c, err)
		return
	}

	filter := services.NewCategoryFilter(tree)
	for _, idStr := range strings.Split(c.Query("expanded"), ",") {
		if id, err := uuid.Parse(strings.TrimSpace(idStr)); err == nil {
			filter.Toggle(id)
		}
	}

	utils.SuccessResponse(c, filter.Visible())
}

// GET /categories/:id
func (h *CategoryHandler) GetCategory(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "category")
	if !ok {
		return
	}

	category, err := h.categoryService.GetCategory(id)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, category)
}

// POST /admin/categories
func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	var req services.CreateCategoryRequest
	if !bindJSON(c, &req) {
		return
	}

	category, err := h.categoryService.CreateCategory(&req)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.CreatedResponse(c, category)
}

// PUT /admin/categories/:id
func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "category")
	if !ok {
		return
	}

	var req services.UpdateCategoryRequest
	if !bindJSON(c, &req) {
		return
	}

	category, err := h.categoryService.UpdateCategory(id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, category)
}

// DELETE /admin/categories/:id
func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "category")
	if !ok {
		return
	}

	if err := h.categoryService.DeleteCategory(id); err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(utils.GetLangFromContext(c), i18n.KeyCategoryDeleted),
	})
}

// POST /admin/categories/:id/upload
func (h *CategoryHandler) UploadImage(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "category")
	if !ok {
		return
	}

	if _, err := h.categoryService.GetCategory(id); err != nil {
		respondError(c, err)
		return
	}

	result, ok := uploadFormFile(c, h.storageService, "image", "categories")
	if !ok {
		return
	}

	category, err := h.categoryService.SetImage(id, result.URL)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, category)
}
