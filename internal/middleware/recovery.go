package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/medscanhq/medscan-api/pkg/logger"
)

// Recovery converts panics into 500 responses instead of dropped
// connections.
func Recovery(log *logger.Logger) gin.HandlerFunc {
	log = log.WithComponent("recovery")
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.WithFields(map[string]interface{}{
					"request_id": c.GetString(RequestIDKey),
					"path":       c.Request.URL.Path,
					"stack":      string(debug.Stack()),
				}).Error(fmt.Errorf("%v", r), "panic recovered")
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"success": false,
					"error":   "internal server error",
				})
			}
		}()
		c.Next()
	}
}
