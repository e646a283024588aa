package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Gandalf-Rus/Yandex-lyceum-web/internal/model"
	"github.com/Gandalf-Rus/Yandex-lyceum-web/internal/repository"
	"github.com/Gandalf-Rus/Yandex-lyceum-web/internal/session"
)

const (
	ContextUserIDKey = "user_id"
	ContextUserKey   = "current_user"

	SessionCookieName = "session_token"
)

// CurrentUser resolves the session cookie into the request's identity.
// Anonymous requests pass through with no identity set; this middleware
// never aborts.
func CurrentUser(sessions *session.Store, users *repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(SessionCookieName)
		if err != nil || token == "" {
			c.Next()
			return
		}

		userID, err := sessions.Resolve(c.Request.Context(), token)
		if err != nil || userID == 0 {
			c.Next()
			return
		}

		user, err := users.GetByID(userID)
		if err != nil || user == nil {
			c.Next()
			return
		}

		c.Set(ContextUserIDKey, user.ID)
		c.Set(ContextUserKey, user)
		c.Next()
	}
}

// RequireLogin sends anonymous visitors to the login page.
func RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, exists := c.Get(ContextUserIDKey); !exists {
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

// ViewerID returns the authenticated user id, or 0 for anonymous.
func ViewerID(c *gin.Context) uint {
	if v, exists := c.Get(ContextUserIDKey); exists {
		if id, ok := v.(uint); ok {
			return id
		}
	}
	return 0
}

// UserFromContext returns the resolved user, or nil.
func UserFromContext(c *gin.Context) *model.User {
	if v, exists := c.Get(ContextUserKey); exists {
		if user, ok := v.(*model.User); ok {
			return user
		}
	}
	return nil
}
