package handlers

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/vrdlab/vrdlab/backend/go-services/pkg/logger"
)

// Greeting is the liveness text served at the root path.
const Greeting = "Hello From VRD Research Lab!"

// Check probes one dependency for readiness.
type Check func(ctx context.Context) error

// RegisterSystem registers the root greeting, /health and /ready.
// /ready returns 200 only when every check passes.
func RegisterSystem(rg gin.IRouter, started time.Time, checks map[string]Check) {
	rg.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, Greeting)
	})

	rg.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})

	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	sort.Strings(names)

	rg.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		ready := true
		deps := make(map[string]bool, len(names))
		for _, name := range names {
			err := checks[name](ctx)
			deps[name] = err == nil
			if err != nil {
				ready = false
				logger.Warnf("readiness: %s: %v", name, err)
			}
		}

		uptime := time.Since(started).String()
		if !ready {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "deps": deps, "uptime": uptime})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready", "deps": deps, "uptime": uptime})
	})
}
