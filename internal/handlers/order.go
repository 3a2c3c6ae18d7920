// internal/handlers/order.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ermimobile/emobile-backend/internal/i18n"
	"github.com/ermimobile/emobile-backend/internal/middleware"
	"github.com/ermimobile/emobile-backend/internal/models"
	"github.com/ermimobile/emobile-backend/internal/services"
	"github.com/ermimobile/emobile-backend/internal/utils"
)

type OrderHandler struct {
	orderService   *services.OrderService
	storageService *services.StorageService
}

func NewOrderHandler(orderService *services.OrderService, storageService *services.StorageService) *OrderHandler {
	return &OrderHandler{
		orderService:   orderService,
		storageService: storageService,
	}
}

// POST /orders
func (h *OrderHandler) PlaceOrder(c *gin.Context) {
	var req services.PlaceOrderRequest
	if !bindJSON(c, &req) {
		return
	}

	identity := utils.GetIdentityFromContext(c)
	order, err := h.orderService.PlaceOrder(c.Request.Context(), identity, &req, c.GetHeader(middleware.IdempotencyHeader))
	if err != nil {
		respondError(c, err)
		return
	}

	respondPlaced(c, order)
}

// POST /cart/checkout
func (h *OrderHandler) Checkout(c *gin.Context) {
	var req services.CheckoutRequest
	if !bindJSON(c, &req) {
		return
	}

	identity := utils.GetIdentityFromContext(c)
	order, err := h.orderService.CheckoutCart(c.Request.Context(), identity, &req, c.GetHeader(middleware.IdempotencyHeader))
	if err != nil {
		respondError(c, err)
		return
	}

	respondPlaced(c, order)
}

func respondPlaced(c *gin.Context, order *models.Order) {
	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(utils.GetLangFromContext(c), i18n.KeyOrderPlaced),
		"orderId": order.ID,
		"order":   order,
	})
}

// GET /orders/:id
func (h *OrderHandler) GetOrder(c *gin.Context) {
	order, ok := h.visibleOrder(c)
	if !ok {
		return
	}
	utils.SuccessResponse(c, order)
}

// POST /orders/:id/receipt
func (h *OrderHandler) UploadReceipt(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	order, ok := h.visibleOrder(c)
	if !ok {
		return
	}

	header, err := c.FormFile("receipt")
	if err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyOrderReceiptRequired), nil)
		return
	}

	file, err := header.Open()
	if err != nil {
		respondUploadError(c, err)
		return
	}
	defer file.Close()

	updated, err := h.orderService.AttachReceipt(c.Request.Context(), order.ID, file, h.storageService.GetDefaultUploadOptions("receipts"))
	switch {
	case err == nil:
		utils.SuccessResponse(c, gin.H{
			"message": i18n.T(lang, i18n.KeyOrderReceiptAttached),
			"orderId": updated.ID,
			"order":   updated,
		})
	case errors.Is(err, services.ErrReceiptPending):
		utils.WarningResponse(c, http.StatusAccepted, gin.H{
			"orderId": order.ID,
			"order":   updated,
		}, "RECEIPT_PENDING", i18n.T(lang, i18n.KeyOrderReceiptPending))
	default:
		respondError(c, err)
	}
}

// visibleOrder loads the order in :id. Orders placed by a user are visible to
// that user and to admins only; guest orders are reachable by their id.
func (h *OrderHandler) visibleOrder(c *gin.Context) (*models.Order, bool) {
	id, ok := parseIDParam(c, "id", "order")
	if !ok {
		return nil, false
	}

	order, err := h.orderService.GetOrder(id)
	if err != nil {
		respondError(c, err)
		return nil, false
	}

	if order.UserID != nil {
		identity := utils.GetIdentityFromContext(c)
		isOwner := identity.UserID != nil && *identity.UserID == *order.UserID
		if !isOwner && identity.Role != models.UserRoleAdmin {
			respondError(c, services.ErrOrderNotFound)
			return nil, false
		}
	}
	return order, true
}

// GET /users/:id/orders
func (h *OrderHandler) GetUserOrders(c *gin.Context) {
	userID, ok := parseIDParam(c, "id", "user")
	if !ok {
		return
	}

	identity := utils.GetIdentityFromContext(c)
	isSelf := identity.UserID != nil && *identity.UserID == userID
	if !isSelf && identity.Role != models.UserRoleAdmin {
		utils.ForbiddenResponse(c, "")
		return
	}

	orders, err := h.orderService.ListOrdersForUser(userID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, orders)
}

// GET /admin/orders
func (h *OrderHandler) ListOrders(c *gin.Context) {
	result, err := h.orderService.ListOrders(utils.GetPaginationParams(c))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.PaginatedResponse(c, *result)
}

// PUT /admin/orders/:id/status
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "order")
	if !ok {
		return
	}

	var req services.UpdateOrderStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	order, err := h.orderService.SetStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, order)
}

// DELETE /admin/orders/:id
func (h *OrderHandler) DeleteOrder(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "order")
	if !ok {
		return
	}

	if err := h.orderService.DeleteOrder(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(utils.GetLangFromContext(c), i18n.KeyOrderDeleted),
	})
}
