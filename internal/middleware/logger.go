package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/medscanhq/medscan-api/pkg/logger"
	"github.com/medscanhq/medscan-api/pkg/metrics"
)

// RequestLogger logs each completed request and feeds the HTTP metrics.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	log = log.WithComponent("http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		elapsed := time.Since(start)

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		status := c.Writer.Status()

		metrics.ObserveHTTP(c.Request.Method, path, status, elapsed)

		entry := log.WithFields(map[string]interface{}{
			"request_id": c.GetString(RequestIDKey),
			"method":     c.Request.Method,
			"path":       path,
			"status":     status,
			"duration":   elapsed.String(),
			"client_ip":  c.ClientIP(),
		})
		if status >= 500 {
			entry.Error(nil, "request failed")
		} else {
			entry.Info("request completed")
		}
	}
}
