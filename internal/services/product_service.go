// internal/services/product_service.go
package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/ermimobile/emobile-backend/internal/models"
)

const (
	defaultProductIcon  = "fa-mobile-alt"
	defaultProductStock = 100

	// AllCategories is the identity category filter.
	AllCategories = "all"
)

type ProductService struct {
	db *gorm.DB
}

// ProductRequest carries the full editable state of a product; a nil
// category_id leaves the product uncategorized.
type ProductRequest struct {
	Name        string     `json:"name" validate:"required,min=1,max=255"`
	Price       float64    `json:"price" validate:"gte=0"`
	Icon        string     `json:"icon,omitempty" validate:"max=100"`
	Description string     `json:"description,omitempty"`
	Stock       *int       `json:"stock,omitempty" validate:"omitempty,gte=0"`
	CategoryID  *uuid.UUID `json:"category_id,omitempty"`
}

func NewProductService(db *gorm.DB) *ProductService {
	return &ProductService{db: db}
}

func (s *ProductService) catalogQuery() *gorm.DB {
	return s.db.Model(&models.Product{}).
		Select("products.*, categories.name AS category_name").
		Joins("LEFT JOIN categories ON categories.id = products.category_id")
}

// ListProducts returns every product with its resolved category name.
func (s *ProductService) ListProducts() ([]models.Product, error) {
	var products []models.Product
	if err := s.catalogQuery().Order("products.created_at").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// Catalog applies the category filter first and the search term second.
func (s *ProductService) Catalog(categoryID, term string) ([]models.Product, error) {
	products, err := s.ListProducts()
	if err != nil {
		return nil, err
	}
	return SearchProducts(FilterByCategory(products, categoryID), term), nil
}

func (s *ProductService) GetProduct(id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := s.catalogQuery().
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("display_order")
		}).
		Where("products.id = ?", id).
		First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &product, nil
}

func (s *ProductService) CreateProduct(req *ProductRequest) (*models.Product, error) {
	product := &models.Product{}
	if err := s.apply(product, req); err != nil {
		return nil, err
	}

	if err := s.db.Create(product).Error; err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"product_id": product.ID,
		"name":       product.Name,
	}).Info("Product created")

	return s.GetProduct(product.ID)
}

func (s *ProductService) UpdateProduct(id uuid.UUID, req *ProductRequest) (*models.Product, error) {
	var product models.Product
	if err := s.db.Where("id = ?", id).First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if err := s.apply(&product, req); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"name":        product.Name,
		"price":       product.Price,
		"icon":        product.Icon,
		"description": product.Description,
		"stock":       product.Stock,
		"category_id": product.CategoryID,
	}
	if err := s.db.Model(&product).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	logrus.WithField("product_id", id).Info("Product updated")
	return s.GetProduct(id)
}

func (s *ProductService) apply(product *models.Product, req *ProductRequest) error {
	if req.Price < 0 {
		return ErrInvalidPrice
	}

	if req.CategoryID != nil {
		var count int64
		if err := s.db.Model(&models.Category{}).Where("id = ?", *req.CategoryID).Count(&count).Error; err != nil {
			return fmt.Errorf("database error: %w", err)
		}
		if count == 0 {
			return ErrInvalidCategory
		}
	}

	product.Name = strings.TrimSpace(req.Name)
	product.Price = decimal.NewFromFloat(req.Price).Round(2)
	product.Description = req.Description
	product.CategoryID = req.CategoryID

	product.Icon = req.Icon
	if product.Icon == "" {
		product.Icon = defaultProductIcon
	}

	switch {
	case req.Stock != nil:
		product.Stock = *req.Stock
	case product.ID == uuid.Nil:
		product.Stock = defaultProductStock
	}

	return nil
}

// DeleteProduct removes a product and its gallery. Past order items keep their snapshots.
func (s *ProductService) DeleteProduct(id uuid.UUID) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ?", id).Delete(&models.Product{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete product: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrProductNotFound
		}

		if err := tx.Where("product_id = ?", id).Delete(&models.ProductImage{}).Error; err != nil {
			return fmt.Errorf("failed to delete product images: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	logrus.WithField("product_id", id).Info("Product deleted")
	return nil
}

// SetImage replaces the product's main image.
func (s *ProductService) SetImage(id uuid.UUID, imageURL string) (*models.Product, error) {
	result := s.db.Model(&models.Product{}).Where("id = ?", id).Update("image", imageURL)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to update product image: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrProductNotFound
	}
	return s.GetProduct(id)
}

// AddImages appends gallery images after the existing ones. A product without
// a main image takes the first of the new images.
func (s *ProductService) AddImages(id uuid.UUID, imageURLs []string) ([]models.ProductImage, error) {
	var images []models.ProductImage

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var product models.Product
		if err := tx.Where("id = ?", id).First(&product).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProductNotFound
			}
			return fmt.Errorf("database error: %w", err)
		}

		var next int64
		if err := tx.Model(&models.ProductImage{}).Where("product_id = ?", id).
			Count(&next).Error; err != nil {
			return fmt.Errorf("database error: %w", err)
		}

		for i, url := range imageURLs {
			images = append(images, models.ProductImage{
				ProductID:    id,
				ImageURL:     url,
				DisplayOrder: int(next) + i,
			})
		}
		if len(images) == 0 {
			return nil
		}

		if err := tx.Create(&images).Error; err != nil {
			return fmt.Errorf("failed to save product images: %w", err)
		}

		if product.Image == "" {
			if err := tx.Model(&product).Update("image", imageURLs[0]).Error; err != nil {
				return fmt.Errorf("failed to update product image: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return images, nil
}

func (s *ProductService) GetImages(id uuid.UUID) ([]models.ProductImage, error) {
	var images []models.ProductImage
	if err := s.db.Where("product_id = ?", id).Order("display_order").Find(&images).Error; err != nil {
		return nil, fmt.Errorf("failed to load product images: %w", err)
	}
	return images, nil
}

// FilterByCategory keeps products directly in categoryID. "all" or empty keeps everything.
func FilterByCategory(products []models.Product, categoryID string) []models.Product {
	if categoryID == "" || categoryID == AllCategories {
		return products
	}

	id, err := uuid.Parse(categoryID)
	if err != nil {
		return []models.Product{}
	}

	filtered := make([]models.Product, 0, len(products))
	for _, product := range products {
		if product.CategoryID != nil && *product.CategoryID == id {
			filtered = append(filtered, product)
		}
	}
	return filtered
}

// SearchProducts matches term against product names, ignoring case.
func SearchProducts(products []models.Product, term string) []models.Product {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return products
	}

	matched := make([]models.Product, 0, len(products))
	for _, product := range products {
		if strings.Contains(strings.ToLower(product.Name), term) {
			matched = append(matched, product)
		}
	}
	return matched
}
