package httpapi

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/wh131462/stillalive/internal/server/auth"
	"github.com/wh131462/stillalive/internal/shared"
)

const userIDKey = "userID"

// UserIDFromContext returns the authenticated user id set by Auth, or ""
// on routes outside the authenticated group.
func UserIDFromContext(c *gin.Context) string {
	if v, ok := c.Get(userIDKey); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// Auth validates the bearer token and stores the token's user id in the
// request context. Every sync route runs behind it; a device with a bad or
// expired token gets 401 and backs off to its offline state.
func Auth(secretKey []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := strings.TrimSpace(c.GetHeader("Authorization"))
		if !strings.HasPrefix(strings.ToLower(h), "bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": shared.ErrInvalidAuthHeaderFormat.Error()})
			return
		}
		token := strings.TrimSpace(h[7:])

		userID, err := auth.GetUserIDFromToken(token, secretKey)
		if err != nil || userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		c.Set(userIDKey, userID)
		c.Next()
	}
}
