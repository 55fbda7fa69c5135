package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Green-ID-Your-Natural-Identity/GreenID-Dev/logger"
)

// RequestLogger writes one structured line per request.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		kv := []interface{}{
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", status,
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		}
		if len(c.Errors) > 0 {
			kv = append(kv, "errors", c.Errors.String())
		}
		switch {
		case status >= 500:
			log.Error("request", kv...)
		case status >= 400:
			log.Warn("request", kv...)
		default:
			log.Info("request", kv...)
		}
	}
}

// Recovery turns handler panics into 500s and logs them.
func Recovery(log *logger.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		log.Error("handler panic", "path", c.Request.URL.Path, "panic", recovered)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"success": false, "error": "internal server error", "code": "internal_error"})
	})
}
