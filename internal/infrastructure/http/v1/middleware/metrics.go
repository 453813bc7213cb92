package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"tillbook/internal/infrastructure/metrics"
)

// Metrics records request latency per route. The route template is used
// instead of the raw path so IDs do not explode label cardinality.
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		m.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			route,
			strconv.Itoa(c.Writer.Status()),
		).Observe(time.Since(start).Seconds())
	}
}
