// internal/services/errors.go
package services

import "errors"

// Categories
var (
	ErrCategoryNotFound    = errors.New("category not found")
	ErrDuplicateName       = errors.New("category name already exists")
	ErrInvalidParent       = errors.New("parent category not found")
	ErrSelfParent          = errors.New("category cannot be its own parent")
	ErrCategoryCycle       = errors.New("parent would create a category cycle")
	ErrCyclicCategoryGraph = errors.New("category graph contains a cycle")
)

// Catalog
var (
	ErrProductNotFound = errors.New("product not found")
	ErrInvalidCategory = errors.New("category does not exist")
	ErrInvalidPrice    = errors.New("price must not be negative")
)

// Cart and orders
var (
	ErrEmptyCart            = errors.New("cart is empty")
	ErrInvalidQuantity      = errors.New("quantity must be greater than zero")
	ErrInvalidStatus        = errors.New("invalid order status")
	ErrStatusTransition     = errors.New("order status is final")
	ErrOrderNotFound        = errors.New("order not found")
	ErrTotalMismatch        = errors.New("client total does not match computed total")
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
	ErrReceiptPending       = errors.New("receipt upload did not complete")
	ErrCartNotPersisted     = errors.New("cart could not be persisted")
	ErrCartItemNotFound     = errors.New("product is not in the cart")
	ErrDuplicateRequest     = errors.New("request with this idempotency key is in progress")
)

// Identity
var (
	ErrEmailExists              = errors.New("email already registered")
	ErrInvalidCredentials       = errors.New("invalid email or password")
	ErrEmailNotVerified         = errors.New("email not verified")
	ErrInvalidVerificationToken = errors.New("invalid or expired verification token")
	ErrEmailAlreadyVerified     = errors.New("email already verified")
	ErrUserNotFound             = errors.New("user not found")
	ErrInvalidRefreshToken      = errors.New("invalid refresh token")
	ErrSelfRoleChange           = errors.New("admins cannot change their own role")
)

// Uploads and misc
var (
	ErrInvalidFileType = errors.New("file type is not allowed")
	ErrFileTooLarge    = errors.New("file exceeds maximum size")
	ErrContactNotFound = errors.New("contact message not found")
)
