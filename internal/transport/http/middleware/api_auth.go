package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Gandalf-Rus/Yandex-lyceum-web/internal/pkg/jwtutil"
	"github.com/Gandalf-Rus/Yandex-lyceum-web/internal/transport/http/response"
)

// APIAuth resolves the Bearer token of an item API call. Reads work
// anonymously, so with required=false a missing header just leaves the
// viewer anonymous; a header that is present but invalid is always
// rejected. Mutating routes pass required=true.
func APIAuth(secret string, required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
		if authHeader == "" {
			if required {
				response.Message(c, http.StatusUnauthorized, "missing authorization header")
				c.Abort()
				return
			}
			c.Next()
			return
		}

		const prefix = "Bearer "
		if !strings.HasPrefix(authHeader, prefix) {
			response.Message(c, http.StatusUnauthorized, "invalid authorization scheme")
			c.Abort()
			return
		}

		token := strings.TrimSpace(strings.TrimPrefix(authHeader, prefix))
		claims, err := jwtutil.ParseToken(secret, token)
		if err != nil {
			response.Message(c, http.StatusUnauthorized, "invalid or expired token")
			c.Abort()
			return
		}

		c.Set(ContextUserIDKey, claims.UserID)
		c.Next()
	}
}
