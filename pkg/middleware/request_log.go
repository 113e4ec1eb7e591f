package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/modelhub/inventory-server/pkg/logger"
	"github.com/modelhub/inventory-server/pkg/metrics"
)

// RequestLogger logs one line per request and records request metrics.
// Unmatched routes are labelled "unmatched" to keep label cardinality bounded.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		elapsed := time.Since(start)

		metrics.HTTPRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(c.Request.Method, route).Observe(elapsed.Seconds())

		logger.Get().Info().
			Str("method", c.Request.Method).
			Str("route", route).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", elapsed).
			Str("ip", c.ClientIP()).
			Str("request_id", RequestIDFrom(c)).
			Msg("request")
	}
}
