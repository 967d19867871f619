package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/vrdlab/vrdlab/backend/go-services/pkg/logger"
	"github.com/vrdlab/vrdlab/backend/go-services/pkg/metrics"
)

// LoggingMiddleware logs one line per request and records its latency.
func LoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		elapsed := time.Since(start)

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		metrics.HTTPRequestDuration.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())

		log := logger.With("request_id", RequestID(c), "status", status, "latency", elapsed.String())
		if len(c.Errors) > 0 {
			log.Errorf("%s %s: %s", c.Request.Method, c.Request.URL.Path, c.Errors.String())
			return
		}
		log.Infof("%s %s", c.Request.Method, c.Request.URL.Path)
	}
}
