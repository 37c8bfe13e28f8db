package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oneinflu/nsaconsole-api/internal/service"
)

// Metrics returns middleware that records request counts and latency into
// the provided metrics service. Route templates are preferred over raw
// paths to keep the label cardinality bounded.
func Metrics(metrics *service.MetricsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metrics == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		metrics.ObserveHTTPRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}
