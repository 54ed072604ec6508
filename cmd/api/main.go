package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/pageza/kitchen-assistant/backend/config"
	"github.com/pageza/kitchen-assistant/backend/internal/api"
	"github.com/pageza/kitchen-assistant/backend/internal/database"
	"github.com/pageza/kitchen-assistant/backend/internal/logger"
	"github.com/pageza/kitchen-assistant/backend/internal/middleware"
	"github.com/pageza/kitchen-assistant/backend/internal/monitoring"
	"github.com/pageza/kitchen-assistant/backend/internal/router"
	"github.com/pageza/kitchen-assistant/backend/internal/server"
	"github.com/pageza/kitchen-assistant/backend/internal/service"
)

func main() {
	bootstrap := logger.New(logger.Config{})

	// Initialize configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		bootstrap.Fatal("failed to load configuration", zap.Error(err))
	}

	log := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		Development: !cfg.IsProduction(),
	})
	defer log.Sync()

	gin.SetMode(cfg.GinMode())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Redis is optional; without it the cache is off and rate limiting is per instance
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			log.Warn("continuing without Redis", zap.Error(err))
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}

	metrics := monitoring.NewMetricsCollector()

	client, err := service.NewCompletionClient(cfg.LLMAPIKey, cfg.LLMAPIURL, cfg.LLMModel, log, service.WithRecorder(metrics))
	if err != nil {
		log.Fatal("failed to create completion client", zap.Error(err))
	}

	var completer service.Completer = client
	if redisClient != nil {
		completer = service.NewCachedCompleter(client, redisClient, cfg.CacheTTL, cfg.LLMModel, log, metrics)
	}

	inventory := service.NewInventoryService(completer, log, metrics)
	diet := service.NewDietService(completer, log, metrics)
	assistant := service.NewAssistantService(inventory, diet, log)

	var limiter middleware.Limiter
	if cfg.RateLimitEnabled {
		limiter = middleware.NewLimiter(redisClient, middleware.RateLimitConfig{
			Window: cfg.RateLimitWindow,
			Limit:  cfg.RateLimitRequests,
			Burst:  cfg.RateLimitBurst,
		})
	}

	engine, err := router.SetupRouter(router.Options{
		Logger:         log,
		Metrics:        metrics,
		Handler:        api.NewAssistantHandler(inventory, diet, assistant),
		AllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimiter:    limiter,
	})
	if err != nil {
		log.Fatal("failed to set up router", zap.Error(err))
	}

	log.Info("configuration loaded",
		zap.String("environment", string(cfg.Environment)),
		zap.String("model", cfg.LLMModel),
		zap.Bool("cache", redisClient != nil),
		zap.Bool("rate_limit", limiter != nil))

	srv := server.New(cfg, engine, log)
	if err := srv.Run(ctx); err != nil {
		log.Fatal("server error", zap.Error(err))
	}
	log.Info("server stopped")
}
