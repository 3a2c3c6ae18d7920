// internal/utils/utils_test.go
package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStrongPassword(t *testing.T) {
	type request struct {
		Password string `validate:"strong_password"`
	}

	assert.NoError(t, ValidateStruct(request{Password: "Password123"}))
	assert.Error(t, ValidateStruct(request{Password: "short1"}))
	assert.Error(t, ValidateStruct(request{Password: "lettersonly"}))
	assert.Error(t, ValidateStruct(request{Password: "1234567890"}))
}

func TestEnumValidators(t *testing.T) {
	type request struct {
		Method string `validate:"payment_method"`
		Status string `validate:"order_status"`
		Role   string `validate:"user_role"`
	}

	assert.NoError(t, ValidateStruct(request{Method: "telebirr", Status: "approved", Role: "editor"}))

	errs := GetValidationErrors(ValidateStruct(request{Method: "paypal", Status: "shipped", Role: "owner"}))
	assert.Len(t, errs, 3)
}

func TestJWTRoundTrip(t *testing.T) {
	SetJWTSecret("utils-test")
	userID := uuid.New()

	access, err := GenerateJWT(userID, "Abel", "admin", 1)
	require.NoError(t, err)
	claims, err := ValidateJWT(access)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.UserID)
	assert.Equal(t, "admin", claims.Role)

	refresh, err := GenerateRefreshToken(userID, 1)
	require.NoError(t, err)
	subject, err := ValidateRefreshToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), subject)

	// The two token kinds are not interchangeable
	_, err = ValidateRefreshToken(access)
	assert.Error(t, err)
	_, err = ValidateJWT(refresh)
	assert.Error(t, err)

	SetJWTSecret("rotated")
	_, err = ValidateJWT(access)
	assert.Error(t, err)
}

func TestVerificationTokens(t *testing.T) {
	a, err := GenerateVerificationToken()
	require.NoError(t, err)
	b, err := GenerateVerificationToken()
	require.NoError(t, err)

	assert.Len(t, a, 64)
	assert.NotEqual(t, a, b)
	assert.Equal(t, HashString(a), HashString(a))
	assert.NotEqual(t, a, HashString(a))
}

func TestGetPaginationParams(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/?page=0&limit=500&order=sideways&status=pending", nil)

	params := GetPaginationParams(c)
	assert.Equal(t, 1, params.Page)
	assert.Equal(t, 100, params.Limit)
	assert.Equal(t, "desc", params.Order)
	assert.Equal(t, "pending", params.Status)

	result := CreatePaginationResult([]int{}, 201, params)
	assert.Equal(t, 3, result.TotalPages)
}
