// internal/middleware/i18n.go
package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ermimobile/emobile-backend/internal/i18n"
)

const defaultLang = "en"

func I18nMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("lang", preferredLang(c.GetHeader("Accept-Language")))
		c.Next()
	}
}

// preferredLang picks the first supported language of a header such as
// "am-ET,am;q=0.9,en;q=0.8", matching on the primary subtag.
func preferredLang(header string) string {
	for _, part := range strings.Split(header, ",") {
		tag := strings.TrimSpace(strings.Split(part, ";")[0])
		if tag == "" || tag == "*" {
			continue
		}

		subtags := strings.FieldsFunc(tag, func(r rune) bool {
			return r == '-' || r == '_'
		})
		if len(subtags) == 0 {
			continue
		}
		if primary := strings.ToLower(subtags[0]); i18n.IsSupported(primary) {
			return primary
		}
	}
	return defaultLang
}
