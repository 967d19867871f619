package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/vrdlab/vrdlab/backend/go-services/handlers"
	"github.com/vrdlab/vrdlab/backend/go-services/internal/attachment"
	"github.com/vrdlab/vrdlab/backend/go-services/internal/config"
	"github.com/vrdlab/vrdlab/backend/go-services/internal/record"
	"github.com/vrdlab/vrdlab/backend/go-services/internal/record/handler"
	"github.com/vrdlab/vrdlab/backend/go-services/internal/record/service"
	"github.com/vrdlab/vrdlab/backend/go-services/pkg/middleware"
)

// Deps are the runtime dependencies built in main and shared by every route.
type Deps struct {
	Config   *config.Config
	Services []service.Service
	Files    attachment.Manager
	// Redis is optional; it backs the shared rate limiter when configured.
	Redis   *redis.Client
	Checks  map[string]handlers.Check
	Started time.Time
	// Metrics serves /metrics; defaults to the Prometheus default registry.
	Metrics http.Handler
}

// SetupRouter builds the gin engine with the middleware chain and every route.
func SetupRouter(d Deps) *gin.Engine {
	cfg := d.Config
	r := gin.New()
	r.MaxMultipartMemory = cfg.Uploads.MaxMemoryBytes()

	r.Use(gin.Recovery(), middleware.RequestIDMiddleware(), middleware.LoggingMiddleware())
	r.Use(middleware.CORSMiddleware(cfg.CORS.AllowOrigins, cfg.CORS.AllowAll()))
	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.UseRedis && d.Redis != nil {
			win := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
			r.Use(middleware.RedisRateLimitMiddleware(d.Redis, cfg.RateLimit.RPS, cfg.RateLimit.Burst, win))
		} else {
			r.Use(middleware.RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
		}
	}

	started := d.Started
	if started.IsZero() {
		started = time.Now()
	}
	handlers.RegisterSystem(r, started, d.Checks)
	handlers.RegisterSwagger(r, kindsOf(d.Services))

	for _, svc := range d.Services {
		handler.RegisterRecordRoutes(r, svc)
	}
	if d.Files != nil {
		handler.RegisterUploadRoutes(r, d.Files)
	}

	metricsHandler := d.Metrics
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}
	r.GET("/metrics", gin.WrapH(metricsHandler))
	return r
}

func kindsOf(svcs []service.Service) []record.Kind {
	out := make([]record.Kind, 0, len(svcs))
	for _, s := range svcs {
		out = append(out, s.Kind())
	}
	return out
}
