// internal/handlers/common.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ermimobile/emobile-backend/internal/i18n"
	"github.com/ermimobile/emobile-backend/internal/services"
	"github.com/ermimobile/emobile-backend/internal/utils"
)

type errorMapping struct {
	err    error
	status int
	code   string
	key    string
}

var errorMappings = []errorMapping{
	{services.ErrCategoryNotFound, http.StatusNotFound, "NOT_FOUND", i18n.KeyCategoryNotFound},
	{services.ErrProductNotFound, http.StatusNotFound, "NOT_FOUND", i18n.KeyProductNotFound},
	{services.ErrOrderNotFound, http.StatusNotFound, "NOT_FOUND", i18n.KeyOrderNotFound},
	{services.ErrUserNotFound, http.StatusNotFound, "NOT_FOUND", i18n.KeyUserNotFound},
	{services.ErrContactNotFound, http.StatusNotFound, "NOT_FOUND", i18n.KeyContactNotFound},
	{services.ErrCartItemNotFound, http.StatusNotFound, "NOT_FOUND", i18n.KeyCartItemMissing},

	{services.ErrDuplicateName, http.StatusConflict, "DUPLICATE_NAME", i18n.KeyCategoryDuplicate},
	{services.ErrEmailExists, http.StatusConflict, "EMAIL_EXISTS", i18n.KeyAuthUserExists},
	{services.ErrStatusTransition, http.StatusConflict, "STATUS_TRANSITION", i18n.KeyOrderTransition},
	{services.ErrDuplicateRequest, http.StatusConflict, "DUPLICATE_REQUEST", i18n.KeyOrderDuplicate},
	{services.ErrEmailAlreadyVerified, http.StatusConflict, "ALREADY_VERIFIED", i18n.KeyAuthAlreadyVerified},

	{services.ErrInvalidParent, http.StatusBadRequest, "INVALID_PARENT", i18n.KeyCategoryBadParent},
	{services.ErrSelfParent, http.StatusBadRequest, "SELF_PARENT", i18n.KeyCategorySelf},
	{services.ErrCategoryCycle, http.StatusBadRequest, "CATEGORY_CYCLE", i18n.KeyCategoryCycle},
	{services.ErrInvalidCategory, http.StatusBadRequest, "INVALID_CATEGORY", i18n.KeyProductBadCategory},
	{services.ErrInvalidPrice, http.StatusBadRequest, "INVALID_PRICE", i18n.KeyProductInvalidPrice},
	{services.ErrEmptyCart, http.StatusBadRequest, "EMPTY_CART", i18n.KeyCartEmpty},
	{services.ErrInvalidQuantity, http.StatusBadRequest, "INVALID_QUANTITY", i18n.KeyOrderInvalidQuantity},
	{services.ErrInvalidStatus, http.StatusBadRequest, "INVALID_STATUS", i18n.KeyOrderInvalidStatus},
	{services.ErrTotalMismatch, http.StatusBadRequest, "TOTAL_MISMATCH", i18n.KeyOrderTotalMismatch},
	{services.ErrInvalidPaymentMethod, http.StatusBadRequest, "INVALID_PAYMENT_METHOD", i18n.KeyPaymentInvalidMethod},
	{services.ErrInvalidVerificationToken, http.StatusBadRequest, "INVALID_VERIFICATION", i18n.KeyAuthInvalidVerification},
	{services.ErrInvalidFileType, http.StatusBadRequest, "INVALID_FILE_TYPE", i18n.KeyFileInvalidType},
	{services.ErrFileTooLarge, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", i18n.KeyFileTooLarge},
	{services.ErrSelfRoleChange, http.StatusBadRequest, "SELF_ROLE_CHANGE", i18n.KeyUserSelfRole},

	{services.ErrInvalidCredentials, http.StatusUnauthorized, "INVALID_CREDENTIALS", i18n.KeyAuthInvalidCredentials},
	{services.ErrInvalidRefreshToken, http.StatusUnauthorized, "INVALID_REFRESH_TOKEN", i18n.KeyAuthInvalidRefresh},
	{services.ErrEmailNotVerified, http.StatusForbidden, "EMAIL_NOT_VERIFIED", i18n.KeyAuthEmailNotVerified},
}

// respondError maps service errors onto the response envelope. Unknown errors
// are logged and reported as internal errors without their details.
func respondError(c *gin.Context, err error) {
	lang := utils.GetLangFromContext(c)

	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			utils.ErrorResponse(c, m.status, m.code, i18n.T(lang, m.key), nil)
			return
		}
	}

	if errors.Is(err, services.ErrCyclicCategoryGraph) {
		logrus.WithError(err).Error("Category data is corrupt")
		utils.InternalErrorResponse(c, i18n.T(lang, i18n.KeyCategoryCorrupt))
		return
	}

	logrus.WithError(err).WithField("path", c.Request.URL.Path).Error("Request failed")
	utils.InternalErrorResponse(c, "")
}

// bindJSON decodes and validates the request body, writing the error response itself.
func bindJSON(c *gin.Context, req interface{}) bool {
	lang := utils.GetLangFromContext(c)

	if err := c.ShouldBindJSON(req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return false
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return false
	}
	return true
}

func parseIDParam(c *gin.Context, param, resource string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		lang := utils.GetLangFromContext(c)
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationID, resource), nil)
		return uuid.Nil, false
	}
	return id, true
}
