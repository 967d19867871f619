package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/vrdlab/vrdlab/backend/go-services/handlers"
	"github.com/vrdlab/vrdlab/backend/go-services/internal/attachment"
	"github.com/vrdlab/vrdlab/backend/go-services/internal/config"
	"github.com/vrdlab/vrdlab/backend/go-services/internal/database"
	"github.com/vrdlab/vrdlab/backend/go-services/internal/record"
	"github.com/vrdlab/vrdlab/backend/go-services/internal/record/service"
	"github.com/vrdlab/vrdlab/backend/go-services/internal/routes"
	"github.com/vrdlab/vrdlab/backend/go-services/pkg/logger"
	"github.com/vrdlab/vrdlab/backend/go-services/pkg/metrics"
	"go.mongodb.org/mongo-driver/mongo"
)

var startTime = time.Now()

func main() {
	// initialize logging (can be controlled with LOG_LEVEL env: debug|info|warn|error|fatal)
	logger.Init(os.Getenv("LOG_LEVEL"))
	defer logger.Sync()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Init(cfg.LogLevel)
	logger.Infof("config loaded: log=%s mongo=%v redis=%v attachments=%s", logger.LevelString(), cfg.MongoDB.URI != "", cfg.Redis.Host != "", cfg.Uploads.Backend)
	if cfg.Server.GinMode != "" {
		gin.SetMode(cfg.Server.GinMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	checks := map[string]handlers.Check{}

	files, err := attachment.FromConfig(ctx, cfg)
	if err != nil {
		logger.Fatalf("failed to initialise attachment storage: %v", err)
	}
	logger.Infof("attachments stored via %s backend", cfg.Uploads.Backend)

	// Redis only backs the shared rate limiter
	var redisClient *redis.Client
	if cfg.Redis.Host != "" && cfg.RateLimit.Enabled && cfg.RateLimit.UseRedis {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr(), Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Warnf("failed to connect to Redis (%s): %v", cfg.Redis.Addr(), err)
		} else {
			logger.Infof("Connected to Redis for rate limiting: %s", cfg.Redis.Addr())
		}
		checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}

	var services []service.Service
	if cfg.MongoDB.URI != "" {
		// Retry/backoff when connecting to MongoDB to tolerate startup races
		client, err := database.ConnectWithRetry(ctx, 5, time.Second, func(ctx context.Context) (*mongo.Client, error) {
			return database.ConnectMongo(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout)
		})
		if err != nil {
			logger.Fatalf("could not connect to MongoDB: %v", err)
		}
		defer func() { _ = client.Disconnect(context.Background()) }()
		logger.Infof("Connected to MongoDB database %q", cfg.MongoDB.Database)

		db := client.Database(cfg.MongoDB.Database)
		for _, k := range record.All() {
			services = append(services, service.NewMongoService(k, db.Collection(k.Name), files))
		}
		checks["database"] = func(ctx context.Context) error { return database.Ping(ctx, client, cfg.MongoDB.Timeout) }
	} else {
		logger.Warnf("MONGODB_URI not set: records are kept in memory and lost on restart")
		for _, k := range record.All() {
			services = append(services, service.NewMemoryService(k, files))
		}
	}

	metrics.RegisterCollectors(prometheus.DefaultRegisterer)

	r := routes.SetupRouter(routes.Deps{
		Config:   cfg,
		Services: services,
		Files:    files,
		Redis:    redisClient,
		Checks:   checks,
		Started:  startTime,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("Starting vrd-lab API on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		logger.Fatalf("server failed: %v", err)
	case <-ctx.Done():
	}

	logger.Infof("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("graceful shutdown failed: %v", err)
	}
}
