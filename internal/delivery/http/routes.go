package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/elecmate/materials-compare/config"
)

// RouterOptions carries the cross-cutting collaborators of the router
type RouterOptions struct {
	Logger   zerolog.Logger
	Recorder HTTPRecorder
	// Gatherer backs GET /metrics; the route is omitted when nil
	Gatherer prometheus.Gatherer
}

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler, opts RouterOptions) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.NoRoute(func(c *gin.Context) {
		writeError(c, CodeNotFound, "", nil)
	})

	// Global middleware
	router.Use(RequestIDMiddleware(opts.Logger))
	router.Use(LoggerMiddleware(opts.Recorder))
	router.Use(RecoveryMiddleware())
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	// Operational endpoints
	router.GET("/health", handler.HealthCheck)
	if opts.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	}

	// API v1 routes
	v1 := router.Group("/api/v1")
	v1.Use(RateLimitMiddleware(cfg.RateLimit.PerIP, cfg.RateLimit.Burst))
	{
		v1.POST("/comparison", handler.CompareMaterials)
	}

	return router
}
