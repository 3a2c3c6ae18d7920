// internal/models/order.go
package models

import (
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var ErrOrderItemImmutable = errors.New("order items cannot be modified")

type Order struct {
	BaseModel
	UserID          *uuid.UUID      `json:"user_id" gorm:"type:uuid;index"`
	Total           decimal.Decimal `json:"total" gorm:"type:decimal(12,2);not null"`
	Status          OrderStatus     `json:"status" gorm:"type:varchar(20);default:'pending';index"`
	PaymentMethod   PaymentMethod   `json:"payment_method" gorm:"type:varchar(20);default:'cash'"`
	DeliveryAddress string          `json:"delivery_address" gorm:"type:text"`
	PhoneNumber     string          `json:"phone_number" gorm:"size:50"`
	PaymentReceipt  *string         `json:"payment_receipt" gorm:"size:500"`
	ReceiptKey      string          `json:"-" gorm:"size:500"`

	// Relationships
	User  *User       `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Items []OrderItem `json:"items,omitempty" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

type OrderItem struct {
	BaseModel
	OrderID     uuid.UUID       `json:"order_id" gorm:"type:uuid;not null;index"`
	ProductID   uuid.UUID       `json:"product_id" gorm:"type:uuid;not null;index"`
	ProductName string          `json:"product_name" gorm:"size:255;not null"`
	Quantity    int             `json:"quantity" gorm:"not null"`
	Price       decimal.Decimal `json:"price" gorm:"type:decimal(12,2);not null"`
}

// BeforeUpdate keeps order items append-only.
func (i *OrderItem) BeforeUpdate(tx *gorm.DB) error {
	return ErrOrderItemImmutable
}

// Subtotal is price × quantity for the line.
func (i OrderItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
