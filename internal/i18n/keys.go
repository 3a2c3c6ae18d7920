// internal/i18n/keys.go
package i18n

// Translation keys constants
const (
	// Authentication
	KeyAuthRequired            = "auth.required"
	KeyAuthInvalidToken        = "auth.invalid_token"
	KeyAuthTokenExpired        = "auth.token_expired"
	KeyAuthInvalidCredentials  = "auth.invalid_credentials"
	KeyAuthUserExists          = "auth.user_exists"
	KeyAuthEmailNotVerified    = "auth.email_not_verified"
	KeyAuthEmailVerified       = "auth.email_verified"
	KeyAuthAlreadyVerified     = "auth.already_verified"
	KeyAuthInvalidVerification = "auth.invalid_verification"
	KeyAuthVerificationSent    = "auth.verification_sent"
	KeyAuthLogoutSuccess       = "auth.logout_success"
	KeyAuthRegisterSuccess     = "auth.register_success"
	KeyAuthInvalidRefresh      = "auth.invalid_refresh"

	// Users
	KeyUserNotFound        = "user.not_found"
	KeyUserSelfRole        = "user.self_role"
	KeyUserRoleUpdated     = "user.role_updated"
	KeyUserProfileUpdated  = "user.profile_updated"
	KeyUserPasswordChanged = "user.password_changed"

	// Categories
	KeyCategoryNotFound  = "category.not_found"
	KeyCategoryDuplicate = "category.duplicate"
	KeyCategoryBadParent = "category.invalid_parent"
	KeyCategorySelf      = "category.self_parent"
	KeyCategoryCycle     = "category.cycle"
	KeyCategoryDeleted   = "category.deleted"
	KeyCategoryCorrupt   = "category.cyclic_graph"

	// Products
	KeyProductNotFound       = "product.not_found"
	KeyProductDeleted        = "product.deleted"
	KeyProductBadCategory    = "product.invalid_category"
	KeyProductImagesRequired = "product.images_required"
	KeyProductInvalidPrice   = "product.invalid_price"

	// Cart
	KeyCartEmpty        = "cart.empty"
	KeyCartNotPersisted = "cart.not_persisted"
	KeyCartItemMissing  = "cart.item_missing"
	KeyCartCleared      = "cart.cleared"

	// Orders
	KeyOrderNotFound        = "order.not_found"
	KeyOrderTotalMismatch   = "order.total_mismatch"
	KeyOrderInvalidStatus   = "order.invalid_status"
	KeyOrderTransition      = "order.status_transition"
	KeyOrderReceiptPending  = "order.receipt_pending"
	KeyOrderReceiptRequired = "order.receipt_required"
	KeyOrderDeleted         = "order.deleted"
	KeyOrderDuplicate       = "order.duplicate_request"
	KeyOrderInvalidQuantity = "order.invalid_quantity"
	KeyOrderPlaced          = "order.placed"
	KeyOrderReceiptAttached = "order.receipt_attached"

	// Payments
	KeyPaymentInvalidMethod = "payment.invalid_method"

	// Settings
	KeySettingUpdated = "setting.updated"

	// Contacts
	KeyContactNotFound = "contact.not_found"
	KeyContactSent     = "contact.sent"
	KeyContactDeleted  = "contact.deleted"
	KeyContactUpdated  = "contact.updated"

	// Admin
	KeyAdminAccessDenied = "admin.access_denied"
	KeyStaffAccessDenied = "admin.staff_access_denied"

	// Validation
	KeyValidationInvalid = "validation.invalid"
	KeyValidationID      = "validation.invalid_id"

	// File Upload
	KeyFileUploadFailed = "file.upload_failed"
	KeyFileInvalidType  = "file.invalid_type"
	KeyFileTooLarge     = "file.too_large"
	KeyFileRequired     = "file.required"

	// Rate limiting
	KeyRateLimited = "rate.limited"
)
