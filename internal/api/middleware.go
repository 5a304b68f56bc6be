package api

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
)

// requestLogger logs HTTP requests.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		statusCode := c.Writer.Status()

		// Log format: [method] path?query - status (latency)
		if raw != "" {
			path = path + "?" + raw
		}

		log.Printf("[%s] %s - %d (%v)", c.Request.Method, path, statusCode, latency)
	}
}
