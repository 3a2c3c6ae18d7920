// internal/handlers/product.go
package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ermimobile/emobile-backend/internal/i18n"
	"github.com/ermimobile/emobile-backend/internal/services"
	"github.com/ermimobile/emobile-backend/internal/utils"
)

const maxGalleryUpload = 10

type ProductHandler struct {
	productService *services.ProductService
	storageService *services.StorageService
}

func NewProductHandler(productService *services.ProductService, storageService *services.StorageService) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		storageService: storageService,
	}
}

// GET /products?category=<id|all>&search=<term>
func (h *ProductHandler) GetProducts(c *gin.Context) {
	products, err := h.productService.Catalog(c.Query("category"), c.Query("search"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, products)
}

// GET /products/:id
func (h *ProductHandler) GetProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "product")
	if !ok {
		return
	}

	product, err := h.productService.GetProduct(id)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, product)
}

// GET /products/:id/images
func (h *ProductHandler) GetImages(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "product")
	if !ok {
		return
	}

	images, err := h.productService.GetImages(id)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, images)
}

// POST /admin/products
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req services.ProductRequest
	if !bindJSON(c, &req) {
		return
	}

	product, err := h.productService.CreateProduct(&req)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.CreatedResponse(c, product)
}

// PUT /admin/products/:id
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "product")
	if !ok {
		return
	}

	var req services.ProductRequest
	if !bindJSON(c, &req) {
		return
	}

	product, err := h.productService.UpdateProduct(id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, product)
}

// DELETE /admin/products/:id
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "product")
	if !ok {
		return
	}

	if err := h.productService.DeleteProduct(id); err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(utils.GetLangFromContext(c), i18n.KeyProductDeleted),
	})
}

// POST /admin/products/:id/upload
func (h *ProductHandler) UploadImage(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "product")
	if !ok {
		return
	}

	if _, err := h.productService.GetProduct(id); err != nil {
		respondError(c, err)
		return
	}

	result, ok := uploadFormFile(c, h.storageService, "image", "products")
	if !ok {
		return
	}

	product, err := h.productService.SetImage(id, result.URL)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, product)
}

// POST /admin/products/:id/upload-multiple
// Either every file is stored or none is kept.
func (h *ProductHandler) UploadImages(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	id, ok := parseIDParam(c, "id", "product")
	if !ok {
		return
	}

	if _, err := h.productService.GetProduct(id); err != nil {
		respondError(c, err)
		return
	}

	form, err := c.MultipartForm()
	if err != nil || len(form.File["images"]) == 0 {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyProductImagesRequired), nil)
		return
	}

	files := form.File["images"]
	if len(files) > maxGalleryUpload {
		files = files[:maxGalleryUpload]
	}

	var stored []*services.UploadResult
	for _, header := range files {
		result, err := storeFile(c, h.storageService, header, "products")
		if err != nil {
			h.discard(c.Request.Context(), stored)
			respondUploadError(c, err)
			return
		}
		stored = append(stored, result)
	}

	urls := make([]string, 0, len(stored))
	for _, result := range stored {
		urls = append(urls, result.URL)
	}

	images, err := h.productService.AddImages(id, urls)
	if err != nil {
		h.discard(c.Request.Context(), stored)
		respondError(c, err)
		return
	}
	utils.CreatedResponse(c, images)
}

func (h *ProductHandler) discard(ctx context.Context, stored []*services.UploadResult) {
	for _, result := range stored {
		if err := h.storageService.Delete(ctx, result.Key); err != nil {
			logrus.WithError(err).WithField("key", result.Key).Warn("Failed to remove orphaned upload")
		}
	}
}
