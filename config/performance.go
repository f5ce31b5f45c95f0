package config

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
)

const slowRequestThreshold = 200 * time.Millisecond

// PerformanceLogger logs one [PERF] line per request, plus a warning when it
// exceeds slowRequestThreshold. Both lines use the route template so requests
// for different ids group together; unmatched requests fall back to the path.
func PerformanceLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		latency := time.Since(start)
		route := requestRoute(c)
		log.Printf("[PERF] %s %s | Status: %d | Time: %v",
			c.Request.Method, route, c.Writer.Status(), latency)

		if latency > slowRequestThreshold {
			log.Printf("[PERF] SLOW REQUEST: %s %s took %v", c.Request.Method, route, latency)
		}
	}
}

func requestRoute(c *gin.Context) string {
	if route := c.FullPath(); route != "" {
		return route
	}
	return c.Request.URL.Path
}
