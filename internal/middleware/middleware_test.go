// internal/middleware/middleware_test.go
package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/ermimobile/emobile-backend/internal/config"
	"github.com/ermimobile/emobile-backend/internal/models"
	"github.com/ermimobile/emobile-backend/internal/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func identityRouter() *gin.Engine {
	router := gin.New()
	router.Use(OptionalAuth(), ResolveIdentity())
	router.GET("/whoami", func(c *gin.Context) {
		c.JSON(http.StatusOK, utils.GetIdentityFromContext(c))
	})
	return router
}

func TestResolveIdentityMintsDeviceSession(t *testing.T) {
	router := identityRouter()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/whoami", nil))

	require.Equal(t, http.StatusOK, w.Code)
	minted := w.Header().Get(DeviceHeader)
	_, err := uuid.Parse(minted)
	assert.NoError(t, err)

	var cookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == DeviceCookie {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	assert.Equal(t, minted, cookie.Value)
	assert.True(t, cookie.HttpOnly)
}

func TestResolveIdentityKeepsDeviceSession(t *testing.T) {
	router := identityRouter()
	device := uuid.NewString()

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set(DeviceHeader, device)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, device, w.Header().Get(DeviceHeader))

	req = httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(&http.Cookie{Name: DeviceCookie, Value: device})
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, device, w.Header().Get(DeviceHeader))

	// Malformed sessions are replaced
	req = httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set(DeviceHeader, "../../etc/passwd")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.NotEqual(t, "../../etc/passwd", w.Header().Get(DeviceHeader))
}

func TestResolveIdentityReadsToken(t *testing.T) {
	utils.SetJWTSecret("middleware-test")
	userID := uuid.New()
	token, err := utils.GenerateJWT(userID, "Meron", string(models.UserRoleEditor), 1)
	require.NoError(t, err)

	var identity models.Identity
	router := gin.New()
	router.Use(OptionalAuth(), ResolveIdentity())
	router.GET("/whoami", func(c *gin.Context) {
		identity = utils.GetIdentityFromContext(c)
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(httptest.NewRecorder(), req)

	require.False(t, identity.IsGuest())
	assert.Equal(t, userID, *identity.UserID)
	assert.Equal(t, "Meron", identity.Name)
	assert.Equal(t, models.UserRoleEditor, identity.Role)
	assert.NotEmpty(t, identity.DeviceID)

	// A bad token degrades to a guest instead of failing
	req = httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer nonsense")
	router.ServeHTTP(httptest.NewRecorder(), req)
	assert.True(t, identity.IsGuest())
}

func TestRoleGates(t *testing.T) {
	utils.SetJWTSecret("middleware-test")

	router := gin.New()
	router.GET("/admin", AuthRequired(), AdminRequired(), func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/staff", AuthRequired(), StaffRequired(), func(c *gin.Context) { c.Status(http.StatusOK) })

	call := func(path string, role models.UserRole) int {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if role != "" {
			token, err := utils.GenerateJWT(uuid.New(), "x", string(role), 1)
			require.NoError(t, err)
			req.Header.Set("Authorization", "Bearer "+token)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusUnauthorized, call("/admin", ""))
	assert.Equal(t, http.StatusForbidden, call("/admin", models.UserRoleUser))
	assert.Equal(t, http.StatusForbidden, call("/admin", models.UserRoleEditor))
	assert.Equal(t, http.StatusOK, call("/admin", models.UserRoleAdmin))

	assert.Equal(t, http.StatusForbidden, call("/staff", models.UserRoleUser))
	assert.Equal(t, http.StatusOK, call("/staff", models.UserRoleEditor))
	assert.Equal(t, http.StatusOK, call("/staff", models.UserRoleAdmin))
}

func TestRateLimiterRejectsBurst(t *testing.T) {
	limiter := NewRateLimiter(rate.Limit(0.001), 2)
	defer limiter.Stop()

	router := gin.New()
	router.Use(limiter.Middleware())
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestDisabledRateLimitsPassThrough(t *testing.T) {
	limits := NewRateLimits(config.RateLimitConfig{Enabled: false})
	defer limits.Stop()

	router := gin.New()
	router.Use(limits.General())
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 50; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		require.Equal(t, http.StatusOK, w.Code)
	}
}

func TestPreferredLang(t *testing.T) {
	assert.Equal(t, "en", preferredLang(""))
	assert.Equal(t, "en", preferredLang("fr-FR,fr;q=0.9"))
	assert.Equal(t, "en", preferredLang("am-ET, en-US;q=0.8"))
	assert.Equal(t, "en", preferredLang("*,-,;q=1"))
}

func TestExtractResource(t *testing.T) {
	id := uuid.NewString()

	assert.Equal(t, "orders", extractResourceType("/api/v1/orders/"+id+"/receipt"))
	assert.Equal(t, "products", extractResourceType("/api/v1/admin/products/"+id))
	assert.Equal(t, "admin", extractResourceType("/api/v1/admin"))
	assert.Equal(t, "health", extractResourceType("/health"))
	assert.Equal(t, "unknown", extractResourceType("/"))

	assert.Equal(t, id, extractResourceID("/api/v1/admin/orders/"+id+"/status"))
	assert.Empty(t, extractResourceID("/api/v1/cart/items"))
}
