package middleware

import (
	"strconv"
	"time"

	"github.com/crebito-ledger/internal/platform/metrics"
	"github.com/gin-gonic/gin"
)

// Metrics middleware records request counts and latency per route template.
// c.FullPath() keeps the label cardinality bounded to the registered routes.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		metrics.ObserveRequest(
			c.Request.Method,
			path,
			strconv.Itoa(c.Writer.Status()),
			time.Since(start).Seconds(),
		)
	}
}
