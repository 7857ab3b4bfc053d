package monitoring

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// pageRoute labels requests served by the catch-all page handler so that
// arbitrary URLs do not explode label cardinality.
const pageRoute = "page"

// Middleware creates a Gin middleware for metrics collection
func Middleware(metrics *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = pageRoute
		}

		size := c.Writer.Size()
		if size < 0 {
			size = 0
		}

		metrics.RecordHTTPRequest(
			c.Request.Method,
			route,
			strconv.Itoa(c.Writer.Status()),
			time.Since(start),
			int64(size),
		)
	}
}
