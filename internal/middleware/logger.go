package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// LoggerMiddleware logs one line per request. When AuthRequired has already
// resolved the session, the line carries the tenant and user so chatter
// traffic can be traced per tenant.
func LoggerMiddleware(zapLogger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if caller, ok := CallerContext(c); ok {
			fields = append(fields,
				zap.String("tenant_id", caller.TenantID),
				zap.String("user_id", caller.UserID),
			)
		}

		zapLogger.Info("HTTP request", fields...)
	}
}
