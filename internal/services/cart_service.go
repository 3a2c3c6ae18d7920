// internal/services/cart_service.go
package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/ermimobile/emobile-backend/internal/models"
)

const guestCartKey = "cart_guest"

type CartService struct {
	store        CartStore
	products     *ProductService
	mergeOnLogin bool

	// Carts whose last save failed, served to loads until a save succeeds
	mu      sync.Mutex
	pending map[string]*models.Cart
}

type CartSummary struct {
	Items      []models.CartLine `json:"items"`
	TotalItems int               `json:"total_items"`
	TotalPrice decimal.Decimal   `json:"total_price"`
}

type AddCartItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" validate:"gte=0"`
}

func NewCartService(store CartStore, products *ProductService, mergeOnLogin bool) *CartService {
	return &CartService{
		store:        store,
		products:     products,
		mergeOnLogin: mergeOnLogin,
		pending:      make(map[string]*models.Cart),
	}
}

// CartKey partitions carts per user. Guests share one bucket per device session.
func CartKey(identity models.Identity) string {
	if !identity.IsGuest() {
		return fmt.Sprintf("cart_user_%s", *identity.UserID)
	}
	if identity.DeviceID == "" {
		return guestCartKey
	}
	return fmt.Sprintf("%s:%s", guestCartKey, identity.DeviceID)
}

func Summarize(cart *models.Cart) CartSummary {
	items := cart.Lines
	if items == nil {
		items = []models.CartLine{}
	}
	return CartSummary{
		Items:      items,
		TotalItems: cart.TotalItems(),
		TotalPrice: cart.TotalPrice(),
	}
}

// Load never fails: a store error yields an empty cart.
func (s *CartService) Load(ctx context.Context, identity models.Identity) *models.Cart {
	key := CartKey(identity)

	s.mu.Lock()
	buffered, ok := s.pending[key]
	s.mu.Unlock()
	if ok {
		return models.NewCart(buffered.Lines...)
	}

	cart, err := s.store.Load(ctx, key)
	if err != nil {
		logrus.WithError(err).WithField("cart_key", key).Warn("Cart load failed, starting empty")
		return models.NewCart()
	}
	return cart
}

// Save overwrites the stored cart. On failure the cart is buffered and
// ErrCartNotPersisted is returned.
func (s *CartService) Save(ctx context.Context, identity models.Identity, cart *models.Cart) error {
	key := CartKey(identity)

	if err := s.store.Save(ctx, key, cart); err != nil {
		s.mu.Lock()
		s.pending[key] = models.NewCart(cart.Lines...)
		s.mu.Unlock()

		logrus.WithError(err).WithField("cart_key", key).Warn("Cart save failed, keeping it in memory")
		return fmt.Errorf("%w: %v", ErrCartNotPersisted, err)
	}

	s.mu.Lock()
	delete(s.pending, key)
	s.mu.Unlock()
	return nil
}

func (s *CartService) AddItem(ctx context.Context, identity models.Identity, productID uuid.UUID) (*models.Cart, error) {
	product, err := s.products.GetProduct(productID)
	if err != nil {
		return nil, err
	}

	cart := s.Load(ctx, identity)
	cart.AddItem(product)
	return cart, s.Save(ctx, identity, cart)
}

func (s *CartService) RemoveItem(ctx context.Context, identity models.Identity, productID uuid.UUID) (*models.Cart, error) {
	cart := s.Load(ctx, identity)
	cart.RemoveItem(productID)
	return cart, s.Save(ctx, identity, cart)
}

// SetQuantity replaces a line's quantity; zero removes the line.
func (s *CartService) SetQuantity(ctx context.Context, identity models.Identity, productID uuid.UUID, quantity int) (*models.Cart, error) {
	cart := s.Load(ctx, identity)
	if !cart.SetQuantity(productID, quantity) {
		return cart, ErrCartItemNotFound
	}
	return cart, s.Save(ctx, identity, cart)
}

func (s *CartService) Clear(ctx context.Context, identity models.Identity) (*models.Cart, error) {
	cart := s.Load(ctx, identity)
	cart.Clear()
	return cart, s.Save(ctx, identity, cart)
}

// OnLogin keeps the guest cart under the guest key and activates the user's cart.
// With merge enabled the guest lines are folded into the user cart and the guest cart is emptied.
func (s *CartService) OnLogin(ctx context.Context, guest, user models.Identity) (*models.Cart, error) {
	guestCart := s.Load(ctx, guest)
	guestErr := s.Save(ctx, guest, guestCart)

	userCart := s.Load(ctx, user)
	if !s.mergeOnLogin || guestCart.IsEmpty() {
		return userCart, guestErr
	}

	userCart.Merge(guestCart)
	if err := s.Save(ctx, user, userCart); err != nil {
		return userCart, err
	}

	guestCart.Clear()
	if err := s.Save(ctx, guest, guestCart); err != nil {
		return userCart, err
	}

	logrus.WithFields(logrus.Fields{
		"user_id":     user.UserID,
		"merged_into": CartKey(user),
	}).Info("Guest cart merged on login")

	return userCart, nil
}

// OnLogout keeps the user's cart under their key and activates the guest cart.
func (s *CartService) OnLogout(ctx context.Context, user, guest models.Identity) (*models.Cart, error) {
	userCart := s.Load(ctx, user)
	err := s.Save(ctx, user, userCart)

	return s.Load(ctx, guest), err
}
