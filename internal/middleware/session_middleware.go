package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/tradingzen/backend/internal/auth"
	"github.com/tradingzen/backend/internal/models"
	"github.com/tradingzen/backend/pkg/logger"
	"go.uber.org/zap"
)

const (
	SessionCookieName = "session"
	contextUserKey    = "user"
	sessionErrKey     = "session_error"
)

// SessionMiddleware resolves the session cookie (or a Bearer token) to a
// user and stores it on the context. Requests without a valid session pass
// through anonymously; RequireSession rejects them where needed. A store
// failure also leaves the request anonymous, so public routes keep working,
// and is reported as a 500 by RequireSession.
func SessionMiddleware(codec auth.SessionCodec) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. Cookie first, then Authorization header
		value, err := c.Cookie(SessionCookieName)
		if err != nil || value == "" {
			value = strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		}
		if value == "" || strings.HasPrefix(value, "Basic ") {
			c.Next()
			return
		}

		// 2. Decode and load the user
		user, err := codec.Decode(c.Request.Context(), value)
		if err != nil {
			if errors.Is(err, auth.ErrInvalidSession) || errors.Is(err, auth.ErrExpiredSession) {
				logger.Log.Debug("Ignoring invalid session", zap.Error(err))
				c.Next()
				return
			}
			logger.Log.Error("Failed to load session user", zap.Error(err))
			c.Set(sessionErrKey, err)
			c.Next()
			return
		}

		// 3. Add user to context (handlers can access)
		c.Set(contextUserKey, user)
		c.Next()
	}
}

// RequireSession aborts with 401 unless SessionMiddleware found a user, or
// with 500 when the session could not be loaded.
func RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, failed := c.Get(sessionErrKey); failed {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			c.Abort()
			return
		}
		if _, ok := CurrentUser(c); !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			c.Abort()
			return
		}
		c.Next()
	}
}

func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, exists := c.Get(contextUserKey)
	if !exists {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok && user != nil
}
