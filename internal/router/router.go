package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/kitchen-assistant/backend/internal/api"
	"github.com/pageza/kitchen-assistant/backend/internal/middleware"
	"github.com/pageza/kitchen-assistant/backend/internal/monitoring"
)

// Options holds everything SetupRouter needs
type Options struct {
	Logger         *zap.Logger
	Metrics        *monitoring.MetricsCollector
	Handler        *api.AssistantHandler
	AllowedOrigins []string
	// RateLimiter guards the POST routes; nil disables rate limiting
	RateLimiter middleware.Limiter
}

// SetupRouter configures the application routes
func SetupRouter(opts Options) (*gin.Engine, error) {
	if err := api.RegisterValidators(); err != nil {
		return nil, err
	}

	router := gin.New()
	router.Use(
		middleware.RequestID(),
		middleware.Logger(opts.Logger),
		middleware.Recovery(opts.Logger),
		opts.Metrics.HTTPMiddleware(),
		middleware.CORS(opts.AllowedOrigins),
	)

	router.GET("/", api.Root)
	router.GET("/health", api.HealthCheck)
	router.GET("/metrics", gin.WrapH(opts.Metrics.Handler()))

	assistant := router.Group("")
	if opts.RateLimiter != nil {
		assistant.Use(middleware.RateLimitMiddleware(opts.RateLimiter, opts.Logger))
	}
	opts.Handler.RegisterRoutes(assistant)

	return router, nil
}
