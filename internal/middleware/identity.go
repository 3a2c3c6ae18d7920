// internal/middleware/identity.go
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ermimobile/emobile-backend/internal/models"
	"github.com/ermimobile/emobile-backend/internal/utils"
)

const (
	DeviceHeader      = "X-Cart-Session"
	DeviceCookie      = "cart_session"
	IdempotencyHeader = "Idempotency-Key"

	deviceCookieMaxAge = 30 * 24 * 60 * 60
)

// ResolveIdentity builds the acting identity from the auth claims (if any) and
// the device session. A device session is minted for callers that have none.
// Must run after OptionalAuth or AuthRequired.
func ResolveIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		deviceID := deviceSession(c)

		identity := models.GuestIdentity(deviceID)
		if userID, ok := utils.GetUserUUIDFromContext(c); ok {
			identity.UserID = &userID
			identity.Name = c.GetString("user_name")
			if role, ok := utils.GetUserRoleFromContext(c); ok {
				identity.Role = role
			}
		}

		c.Set("identity", identity)
		c.Next()
	}
}

func deviceSession(c *gin.Context) string {
	deviceID := c.GetHeader(DeviceHeader)
	if deviceID == "" {
		deviceID, _ = c.Cookie(DeviceCookie)
	}

	if _, err := uuid.Parse(deviceID); err != nil {
		deviceID = uuid.New().String()
	}

	c.Header(DeviceHeader, deviceID)
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(DeviceCookie, deviceID, deviceCookieMaxAge, "/", "", false, true)
	return deviceID
}
