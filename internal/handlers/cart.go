// internal/handlers/cart.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ermimobile/emobile-backend/internal/i18n"
	"github.com/ermimobile/emobile-backend/internal/models"
	"github.com/ermimobile/emobile-backend/internal/services"
	"github.com/ermimobile/emobile-backend/internal/utils"
)

type CartHandler struct {
	cartService *services.CartService
}

func NewCartHandler(cartService *services.CartService) *CartHandler {
	return &CartHandler{cartService: cartService}
}

// GET /cart
func (h *CartHandler) GetCart(c *gin.Context) {
	cart := h.cartService.Load(c.Request.Context(), utils.GetIdentityFromContext(c))
	utils.SuccessResponse(c, services.Summarize(cart))
}

// POST /cart/items
func (h *CartHandler) AddItem(c *gin.Context) {
	var req services.AddCartItemRequest
	if !bindJSON(c, &req) {
		return
	}

	cart, err := h.cartService.AddItem(c.Request.Context(), utils.GetIdentityFromContext(c), req.ProductID)
	respondCart(c, cart, err)
}

// PUT /cart/items/:productId
func (h *CartHandler) UpdateItem(c *gin.Context) {
	productID, ok := parseIDParam(c, "productId", "product")
	if !ok {
		return
	}

	var req services.UpdateCartItemRequest
	if !bindJSON(c, &req) {
		return
	}

	cart, err := h.cartService.SetQuantity(c.Request.Context(), utils.GetIdentityFromContext(c), productID, req.Quantity)
	respondCart(c, cart, err)
}

// DELETE /cart/items/:productId
func (h *CartHandler) RemoveItem(c *gin.Context) {
	productID, ok := parseIDParam(c, "productId", "product")
	if !ok {
		return
	}

	cart, err := h.cartService.RemoveItem(c.Request.Context(), utils.GetIdentityFromContext(c), productID)
	respondCart(c, cart, err)
}

// DELETE /cart
func (h *CartHandler) ClearCart(c *gin.Context) {
	cart, err := h.cartService.Clear(c.Request.Context(), utils.GetIdentityFromContext(c))
	respondCart(c, cart, err)
}

// respondCart reports a cart that changed in memory but was not stored as a
// success with a CART_NOT_PERSISTED warning.
func respondCart(c *gin.Context, cart *models.Cart, err error) {
	switch {
	case err == nil:
		utils.SuccessResponse(c, services.Summarize(cart))
	case errors.Is(err, services.ErrCartNotPersisted) && cart != nil:
		lang := utils.GetLangFromContext(c)
		utils.WarningResponse(c, http.StatusOK, services.Summarize(cart), "CART_NOT_PERSISTED", i18n.T(lang, i18n.KeyCartNotPersisted))
	default:
		respondError(c, err)
	}
}
