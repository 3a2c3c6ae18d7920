// internal/models/cart.go
package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartLine is one product snapshot and its quantity.
type CartLine struct {
	ProductID uuid.UUID       `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Icon      string          `json:"icon"`
	Quantity  int             `json:"quantity"`
}

// Subtotal is price × quantity for the line.
func (l CartLine) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart holds at most one line per product.
type Cart struct {
	Lines []CartLine `json:"items"`
}

func NewCart(lines ...CartLine) *Cart {
	cart := &Cart{Lines: []CartLine{}}
	for _, line := range lines {
		cart.add(line, line.Quantity)
	}
	return cart
}

// AddItem increments the quantity of an existing line or appends a new one with quantity 1.
func (c *Cart) AddItem(product *Product) {
	c.add(CartLine{
		ProductID: product.ID,
		Name:      product.Name,
		Price:     product.Price,
		Icon:      product.Icon,
	}, 1)
}

func (c *Cart) add(line CartLine, quantity int) {
	if quantity <= 0 {
		return
	}
	for i := range c.Lines {
		if c.Lines[i].ProductID == line.ProductID {
			c.Lines[i].Quantity += quantity
			return
		}
	}
	line.Quantity = quantity
	c.Lines = append(c.Lines, line)
}

// RemoveItem drops the whole line for productID.
func (c *Cart) RemoveItem(productID uuid.UUID) {
	lines := c.Lines[:0]
	for _, line := range c.Lines {
		if line.ProductID != productID {
			lines = append(lines, line)
		}
	}
	c.Lines = lines
}

// SetQuantity replaces the quantity of a line; a non-positive quantity removes it.
// It reports whether the product was in the cart.
func (c *Cart) SetQuantity(productID uuid.UUID, quantity int) bool {
	for i := range c.Lines {
		if c.Lines[i].ProductID != productID {
			continue
		}
		if quantity <= 0 {
			c.RemoveItem(productID)
		} else {
			c.Lines[i].Quantity = quantity
		}
		return true
	}
	return false
}

// Merge adds other's lines into c, summing quantities per product.
func (c *Cart) Merge(other *Cart) {
	if other == nil {
		return
	}
	for _, line := range other.Lines {
		c.add(line, line.Quantity)
	}
}

func (c *Cart) Clear() {
	c.Lines = []CartLine{}
}

func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

func (c *Cart) TotalItems() int {
	total := 0
	for _, line := range c.Lines {
		total += line.Quantity
	}
	return total
}

func (c *Cart) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, line := range c.Lines {
		total = total.Add(line.Subtotal())
	}
	return total
}

// CartSnapshot is the database-backed copy of a cart keyed by identity.
type CartSnapshot struct {
	CartKey   string    `gorm:"primaryKey;size:150"`
	Lines     string    `gorm:"type:text;not null"`
	UpdatedAt time.Time `gorm:"index"`
}
