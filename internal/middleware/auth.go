package middleware

import (
	"net/http"
	"strings"

	"stockroom/internal/app/session"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const callerContextKey = "caller_context"

// AuthRequired resolves the Bearer session key once per request and stores
// the server-derived caller identity. Handlers never see raw tenant or user
// ids from the client.
func AuthRequired(sessionSvc session.Service, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") || len(auth) <= 7 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		sessionKey := strings.TrimSpace(auth[7:])
		caller, err := sessionSvc.Resolve(c.Request.Context(), sessionKey)
		if err != nil {
			logger.Debug("Session resolution failed", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid session"})
			return
		}

		c.Set(callerContextKey, caller)
		c.Next()
	}
}

// CallerContext returns the identity resolved by AuthRequired.
func CallerContext(c *gin.Context) (*session.Context, bool) {
	v, ok := c.Get(callerContextKey)
	if !ok {
		return nil, false
	}
	caller, ok := v.(*session.Context)
	return caller, ok
}
