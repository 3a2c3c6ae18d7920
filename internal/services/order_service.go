// internal/services/order_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ermimobile/emobile-backend/internal/models"
	"github.com/ermimobile/emobile-backend/internal/utils"
)

type OrderService struct {
	db          *gorm.DB
	storage     FileStorage
	publisher   OrderPublisher
	idempotency IdempotencyStore
	carts       *CartService
	tolerance   decimal.Decimal

	notifications *NotificationService
}

type OrderLineRequest struct {
	ProductID uuid.UUID `json:"id" validate:"required"`
	Name      string    `json:"name,omitempty"`
	Quantity  int       `json:"quantity" validate:"gt=0"`
}

type PlaceOrderRequest struct {
	UserID          *uuid.UUID           `json:"userId,omitempty"`
	Items           []OrderLineRequest   `json:"items" validate:"dive"`
	Total           *float64             `json:"total,omitempty"`
	PaymentMethod   models.PaymentMethod `json:"paymentMethod" validate:"required,payment_method"`
	DeliveryAddress string               `json:"deliveryAddress" validate:"required,max=1000"`
	PhoneNumber     string               `json:"phoneNumber" validate:"required,max=50"`
}

type CheckoutRequest struct {
	Total           *float64             `json:"total,omitempty"`
	PaymentMethod   models.PaymentMethod `json:"paymentMethod" validate:"required,payment_method"`
	DeliveryAddress string               `json:"deliveryAddress" validate:"required,max=1000"`
	PhoneNumber     string               `json:"phoneNumber" validate:"required,max=50"`
}

type UpdateOrderStatusRequest struct {
	Status models.OrderStatus `json:"status" validate:"required"`
}

// OrderSummary is an order annotated with "Name xQty" pairs of its items.
type OrderSummary struct {
	models.Order
	ItemsSummary string `json:"items_summary"`
}

func NewOrderService(db *gorm.DB, storage FileStorage, publisher OrderPublisher, idempotency IdempotencyStore, carts *CartService, tolerance float64) *OrderService {
	if publisher == nil {
		publisher = LogOrderPublisher{}
	}
	return &OrderService{
		db:          db,
		storage:     storage,
		publisher:   publisher,
		idempotency: idempotency,
		carts:       carts,
		tolerance:   decimal.NewFromFloat(tolerance),
	}
}

// WithNotifications makes status changes email the order's owner.
func (s *OrderService) WithNotifications(notifications *NotificationService) *OrderService {
	s.notifications = notifications
	return s
}

// PlaceOrder persists an order and its items atomically. Unit prices come from
// the catalog; a client total that disagrees beyond the tolerance is rejected.
// Replaying a completed idempotency key returns the order it created.
func (s *OrderService) PlaceOrder(ctx context.Context, identity models.Identity, req *PlaceOrderRequest, idempotencyKey string) (order *models.Order, err error) {
	if idempotencyKey != "" && s.idempotency != nil {
		// Keys are scoped to the caller so one client cannot replay another's order
		idempotencyKey = fmt.Sprintf("%s:%s", CartKey(identity), idempotencyKey)

		var existing string
		var reserved bool
		existing, reserved, err = s.idempotency.Reserve(ctx, idempotencyKey)
		if err != nil {
			return nil, err
		}
		if !reserved {
			logrus.WithField("order_id", existing).Info("Replaying idempotent order request")
			id, err := uuid.Parse(existing)
			if err != nil {
				return nil, fmt.Errorf("corrupt idempotency record: %w", err)
			}
			return s.GetOrder(id)
		}

		defer func() {
			if err != nil {
				if releaseErr := s.idempotency.Release(ctx, idempotencyKey); releaseErr != nil {
					logrus.WithError(releaseErr).Warn("Failed to release idempotency key")
				}
				return
			}
			if completeErr := s.idempotency.Complete(ctx, idempotencyKey, order.ID.String()); completeErr != nil {
				logrus.WithError(completeErr).Warn("Failed to record idempotency key")
			}
		}()
	}

	return s.placeOrder(ctx, identity, req)
}

func (s *OrderService) placeOrder(ctx context.Context, identity models.Identity, req *PlaceOrderRequest) (*models.Order, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyCart
	}
	if !req.PaymentMethod.IsValid() {
		return nil, ErrInvalidPaymentMethod
	}

	productIDs := make([]uuid.UUID, 0, len(req.Items))
	for _, line := range req.Items {
		if line.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
		productIDs = append(productIDs, line.ProductID)
	}

	var products []models.Product
	if err := s.db.WithContext(ctx).Where("id IN ?", productIDs).Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}
	catalog := make(map[uuid.UUID]models.Product, len(products))
	for _, product := range products {
		catalog[product.ID] = product
	}

	items := make([]models.OrderItem, 0, len(req.Items))
	total := decimal.Zero
	for _, line := range req.Items {
		product, ok := catalog[line.ProductID]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrProductNotFound, line.ProductID)
		}
		item := models.OrderItem{
			ProductID:   product.ID,
			ProductName: product.Name,
			Quantity:    line.Quantity,
			Price:       product.Price,
		}
		total = total.Add(item.Subtotal())
		items = append(items, item)
	}

	if req.Total != nil {
		claimed := decimal.NewFromFloat(*req.Total)
		if claimed.Sub(total).Abs().GreaterThan(s.tolerance) {
			return nil, fmt.Errorf("%w: computed %s, got %s", ErrTotalMismatch, total.StringFixed(2), claimed.StringFixed(2))
		}
	}

	if req.UserID != nil && (identity.UserID == nil || *req.UserID != *identity.UserID) {
		logrus.WithField("claimed_user_id", *req.UserID).Warn("Ignoring order owner that does not match the caller")
	}

	order := &models.Order{
		UserID:          identity.UserID,
		Total:           total,
		Status:          models.OrderStatusPending,
		PaymentMethod:   req.PaymentMethod,
		DeliveryAddress: strings.TrimSpace(req.DeliveryAddress),
		PhoneNumber:     strings.TrimSpace(req.PhoneNumber),
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(order).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		for i := range items {
			items[i].OrderID = order.ID
		}
		if err := tx.Create(&items).Error; err != nil {
			return fmt.Errorf("failed to create order items: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	order.Items = items

	logrus.WithFields(logrus.Fields{
		"order_id":       order.ID,
		"user_id":        order.UserID,
		"total":          order.Total.String(),
		"items":          len(items),
		"payment_method": order.PaymentMethod,
	}).Info("Order placed")

	s.publisher.Publish(ctx, newOrderEvent(OrderEventCreated, order))
	return order, nil
}

// CheckoutCart places the identity's cart as an order and empties the cart.
// The cart is left untouched when placing fails.
func (s *OrderService) CheckoutCart(ctx context.Context, identity models.Identity, req *CheckoutRequest, idempotencyKey string) (*models.Order, error) {
	cart := s.carts.Load(ctx, identity)
	if cart.IsEmpty() {
		return nil, ErrEmptyCart
	}

	lines := make([]OrderLineRequest, 0, len(cart.Lines))
	for _, line := range cart.Lines {
		lines = append(lines, OrderLineRequest{
			ProductID: line.ProductID,
			Name:      line.Name,
			Quantity:  line.Quantity,
		})
	}

	order, err := s.PlaceOrder(ctx, identity, &PlaceOrderRequest{
		Items:           lines,
		Total:           req.Total,
		PaymentMethod:   req.PaymentMethod,
		DeliveryAddress: req.DeliveryAddress,
		PhoneNumber:     req.PhoneNumber,
	}, idempotencyKey)
	if err != nil {
		return nil, err
	}

	if _, err := s.carts.Clear(ctx, identity); err != nil {
		logrus.WithError(err).WithField("order_id", order.ID).Warn("Order placed but cart was not cleared in storage")
	}
	return order, nil
}

// AttachReceipt uploads proof of payment for a pending order. Storage
// failures leave the order as it was and return ErrReceiptPending. Once the
// order is approved or rejected its receipt can no longer change.
func (s *OrderService) AttachReceipt(ctx context.Context, orderID uuid.UUID, r io.Reader, options UploadOptions) (*models.Order, error) {
	order, err := s.GetOrder(orderID)
	if err != nil {
		return nil, err
	}
	if order.Status.IsTerminal() {
		return nil, fmt.Errorf("%w: receipt of a %s order is final", ErrStatusTransition, order.Status)
	}

	result, err := s.storage.Upload(ctx, r, options)
	if err != nil {
		if errors.Is(err, ErrInvalidFileType) || errors.Is(err, ErrFileTooLarge) {
			return nil, err
		}
		logrus.WithError(err).WithField("order_id", orderID).Warn("Receipt upload failed")
		return order, fmt.Errorf("%w: %v", ErrReceiptPending, err)
	}

	previousKey := order.ReceiptKey
	err = s.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", orderID).Updates(map[string]interface{}{
		"payment_receipt": result.URL,
		"receipt_key":     result.Key,
	}).Error
	if err != nil {
		s.removeFile(ctx, result.Key)
		logrus.WithError(err).WithField("order_id", orderID).Warn("Receipt stored but order not updated")
		return order, fmt.Errorf("%w: %v", ErrReceiptPending, err)
	}

	if previousKey != "" && previousKey != result.Key {
		s.removeFile(ctx, previousKey)
	}

	order.PaymentReceipt = &result.URL
	order.ReceiptKey = result.Key

	logrus.WithFields(logrus.Fields{
		"order_id": orderID,
		"receipt":  result.Key,
	}).Info("Receipt attached")

	s.publisher.Publish(ctx, newOrderEvent(OrderEventReceiptAttached, order))
	return order, nil
}

// SetStatus moves a pending order to a new status. Approved and rejected are
// final; setting the current status again is a no-op.
func (s *OrderService) SetStatus(ctx context.Context, orderID uuid.UUID, status models.OrderStatus) (*models.Order, error) {
	if !status.IsValid() {
		return nil, ErrInvalidStatus
	}

	var order models.Order
	var previous models.OrderStatus
	changed := false

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", orderID).First(&order).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return fmt.Errorf("database error: %w", err)
		}

		previous = order.Status
		if previous == status {
			return nil
		}
		if previous.IsTerminal() {
			return fmt.Errorf("%w: order is %s", ErrStatusTransition, previous)
		}

		result := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", orderID, previous).
			Update("status", status)
		if result.Error != nil {
			return fmt.Errorf("failed to update order status: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrStatusTransition
		}

		order.Status = status
		changed = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if changed {
		logrus.WithFields(logrus.Fields{
			"order_id": orderID,
			"from":     previous,
			"to":       status,
		}).Info("Order status changed")

		event := newOrderEvent(OrderEventStatusChanged, &order)
		event.PreviousStatus = previous
		s.publisher.Publish(ctx, event)

		if s.notifications != nil && order.UserID != nil {
			go s.notifyStatus(order)
		}
	}

	return &order, nil
}

func (s *OrderService) GetOrder(id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := s.db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at")
	}).Where("id = ?", id).First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &order, nil
}

// ListOrdersForUser returns the user's orders, newest first.
func (s *OrderService) ListOrdersForUser(userID uuid.UUID) ([]OrderSummary, error) {
	var orders []models.Order
	err := s.db.Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return summarizeOrders(orders), nil
}

// ListOrders is the operator view with optional status filter.
func (s *OrderService) ListOrders(params utils.PaginationParams) (*utils.PaginationResult, error) {
	query := s.db.Model(&models.Order{})
	if params.Status != "" {
		status := models.OrderStatus(params.Status)
		if !status.IsValid() {
			return nil, ErrInvalidStatus
		}
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}

	var orders []models.Order
	query = utils.ApplySort(query, params, []string{"created_at", "total", "status"})
	query = utils.ApplyPagination(query, params)
	if err := query.Preload("Items").Preload("User").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	result := utils.CreatePaginationResult(summarizeOrders(orders), total, params)
	return &result, nil
}

// DeleteOrder removes the items and the order together, then the receipt file.
func (s *OrderService) DeleteOrder(ctx context.Context, orderID uuid.UUID) error {
	var order models.Order

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", orderID).First(&order).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return fmt.Errorf("database error: %w", err)
		}

		if err := tx.Unscoped().Where("order_id = ?", orderID).Delete(&models.OrderItem{}).Error; err != nil {
			return fmt.Errorf("failed to delete order items: %w", err)
		}
		if err := tx.Unscoped().Where("id = ?", orderID).Delete(&models.Order{}).Error; err != nil {
			return fmt.Errorf("failed to delete order: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.removeFile(ctx, order.ReceiptKey)

	logrus.WithField("order_id", orderID).Info("Order deleted")
	s.publisher.Publish(ctx, newOrderEvent(OrderEventDeleted, &order))
	return nil
}

// Revenue sums the totals of approved orders only.
func (s *OrderService) Revenue() (decimal.Decimal, error) {
	var totals []decimal.Decimal
	if err := s.db.Model(&models.Order{}).
		Where("status = ?", models.OrderStatusApproved).
		Pluck("total", &totals).Error; err != nil {
		return decimal.Zero, fmt.Errorf("failed to compute revenue: %w", err)
	}

	revenue := decimal.Zero
	for _, total := range totals {
		revenue = revenue.Add(total)
	}
	return revenue, nil
}

func (s *OrderService) notifyStatus(order models.Order) {
	var user models.User
	if err := s.db.Where("id = ?", *order.UserID).First(&user).Error; err != nil {
		logrus.WithError(err).WithField("order_id", order.ID).Warn("Order owner not found for status email")
		return
	}
	if err := s.notifications.SendOrderStatusEmail(&user, &order); err != nil {
		logrus.WithError(err).WithField("order_id", order.ID).Error("Failed to send order status email")
	}
}

func (s *OrderService) removeFile(ctx context.Context, key string) {
	if key == "" || s.storage == nil {
		return
	}
	if err := s.storage.Delete(ctx, key); err != nil {
		logrus.WithError(err).WithField("key", key).Warn("Failed to remove stored file")
	}
}

func summarizeOrders(orders []models.Order) []OrderSummary {
	summaries := make([]OrderSummary, 0, len(orders))
	for _, order := range orders {
		summaries = append(summaries, OrderSummary{
			Order:        order,
			ItemsSummary: ItemsSummary(order.Items),
		})
	}
	return summaries
}

// ItemsSummary renders items as "Name x2, Other x1".
func ItemsSummary(items []models.OrderItem) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		parts = append(parts, fmt.Sprintf("%s x%d", item.ProductName, item.Quantity))
	}
	return strings.Join(parts, ", ")
}
