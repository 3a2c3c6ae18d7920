// internal/models/cart_test.go
package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProduct(name string, price int64) *Product {
	return &Product{
		BaseModel: BaseModel{ID: uuid.New()},
		Name:      name,
		Price:     decimal.NewFromInt(price),
		Icon:      "fa-mobile-alt",
	}
}

func TestCartAddItemIncrementsExistingLine(t *testing.T) {
	caseProduct := newProduct("Case", 300)
	charger := newProduct("Charger", 800)

	cart := NewCart()
	cart.AddItem(caseProduct)
	cart.AddItem(charger)
	cart.AddItem(caseProduct)

	require.Len(t, cart.Lines, 2)
	assert.Equal(t, caseProduct.ID, cart.Lines[0].ProductID)
	assert.Equal(t, 2, cart.Lines[0].Quantity)
	assert.Equal(t, 1, cart.Lines[1].Quantity)
	assert.Equal(t, 3, cart.TotalItems())
	assert.True(t, decimal.NewFromInt(1400).Equal(cart.TotalPrice()))
}

func TestCartSetQuantity(t *testing.T) {
	product := newProduct("Earbuds", 1500)
	cart := NewCart()
	cart.AddItem(product)

	assert.True(t, cart.SetQuantity(product.ID, 4))
	assert.Equal(t, 4, cart.TotalItems())

	assert.False(t, cart.SetQuantity(uuid.New(), 2))

	assert.True(t, cart.SetQuantity(product.ID, 0))
	assert.True(t, cart.IsEmpty())
}

func TestCartRemoveItem(t *testing.T) {
	a := newProduct("A", 10)
	b := newProduct("B", 20)
	cart := NewCart()
	cart.AddItem(a)
	cart.AddItem(b)

	cart.RemoveItem(a.ID)

	require.Len(t, cart.Lines, 1)
	assert.Equal(t, b.ID, cart.Lines[0].ProductID)

	// Removing an absent product leaves the cart alone
	cart.RemoveItem(uuid.New())
	assert.Len(t, cart.Lines, 1)
}

func TestCartMergeSumsQuantities(t *testing.T) {
	a := newProduct("A", 10)
	b := newProduct("B", 20)

	user := NewCart()
	user.AddItem(a)

	guest := NewCart()
	guest.AddItem(a)
	guest.AddItem(a)
	guest.AddItem(b)

	user.Merge(guest)
	user.Merge(nil)

	require.Len(t, user.Lines, 2)
	assert.Equal(t, 3, user.Lines[0].Quantity)
	assert.Equal(t, 1, user.Lines[1].Quantity)
	assert.True(t, decimal.NewFromInt(50).Equal(user.TotalPrice()))
}

func TestNewCartCollapsesDuplicateLines(t *testing.T) {
	id := uuid.New()
	cart := NewCart(
		CartLine{ProductID: id, Name: "A", Price: decimal.NewFromInt(5), Quantity: 2},
		CartLine{ProductID: id, Name: "A", Price: decimal.NewFromInt(5), Quantity: 3},
		CartLine{ProductID: uuid.New(), Name: "Zero", Price: decimal.NewFromInt(5), Quantity: 0},
	)

	require.Len(t, cart.Lines, 1)
	assert.Equal(t, 5, cart.Lines[0].Quantity)
}

func TestCartClear(t *testing.T) {
	cart := NewCart()
	cart.AddItem(newProduct("A", 10))
	cart.Clear()

	assert.True(t, cart.IsEmpty())
	assert.Equal(t, 0, cart.TotalItems())
	assert.True(t, cart.TotalPrice().IsZero())
}

func TestIdentityGuest(t *testing.T) {
	user := &User{BaseModel: BaseModel{ID: uuid.New()}, Name: "Abebe", Role: UserRoleUser}
	identity := UserIdentity(user, "device-1")

	assert.False(t, identity.IsGuest())
	guest := identity.Guest()
	assert.True(t, guest.IsGuest())
	assert.Equal(t, "device-1", guest.DeviceID)
}

func TestOrderStatusIsTerminal(t *testing.T) {
	assert.False(t, OrderStatusPending.IsTerminal())
	assert.True(t, OrderStatusApproved.IsTerminal())
	assert.True(t, OrderStatusRejected.IsTerminal())
	assert.False(t, OrderStatus("shipped").IsValid())
}
