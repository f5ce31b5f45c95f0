package middleware

import (
	"log"
	"net/http"

	"elabcrm-backend/utils"

	"github.com/gin-gonic/gin"
)

// ErrorHandler reports errors attached by handlers. Client errors (4xx) are
// expected outcomes and are not sent to Sentry.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		status := c.Writer.Status()
		for _, ginErr := range c.Errors {
			if status < http.StatusInternalServerError {
				continue
			}
			log.Printf("[ERROR] %s %s -> %d: %v", c.Request.Method, c.Request.URL.Path, status, ginErr.Err)
			utils.CaptureError(ginErr.Err, map[string]interface{}{
				"endpoint": c.Request.URL.Path,
				"method":   c.Request.Method,
				"status":   status,
			})
		}
	}
}
