// internal/models/product.go
package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Category struct {
	BaseModel
	Name        string     `json:"name" gorm:"uniqueIndex;size:100;not null"`
	Description string     `json:"description" gorm:"type:text"`
	ParentID    *uuid.UUID `json:"parent_id" gorm:"type:uuid;index"`
	Image       string     `json:"image,omitempty" gorm:"size:500"`

	// Relationships
	Parent *Category `json:"-" gorm:"foreignKey:ParentID"`
}

type Product struct {
	BaseModel
	Name        string          `json:"name" gorm:"size:255;not null"`
	Price       decimal.Decimal `json:"price" gorm:"type:decimal(12,2);not null"`
	Icon        string          `json:"icon" gorm:"size:100;not null"`
	Description string          `json:"description" gorm:"type:text"`
	Stock       int             `json:"stock" gorm:"not null"`
	Image       string          `json:"image,omitempty" gorm:"size:500"`
	CategoryID  *uuid.UUID      `json:"category_id" gorm:"type:uuid;index"`

	// Filled by catalog queries that join categories
	CategoryName *string `json:"category_name" gorm:"->;-:migration"`

	// Relationships
	Category *Category      `json:"-" gorm:"foreignKey:CategoryID"`
	Images   []ProductImage `json:"images,omitempty" gorm:"foreignKey:ProductID"`
}

type ProductImage struct {
	BaseModel
	ProductID    uuid.UUID `json:"product_id" gorm:"type:uuid;not null;index"`
	ImageURL     string    `json:"image_url" gorm:"size:500;not null"`
	DisplayOrder int       `json:"display_order" gorm:"default:0"`
}
