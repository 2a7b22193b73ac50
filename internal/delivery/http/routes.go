package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/samalsubrat/mk-price-tracker/config"
)

// MetricsExporter records request metrics and serves them
type MetricsExporter interface {
	HTTPRecorder
	Handler() http.Handler
}

// SetupRouter creates and configures the Gin router.
// metrics may be nil, in which case /metrics is not served.
func SetupRouter(cfg *config.Config, handler *Handler, metrics MetricsExporter) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RecoveryMiddleware())
	router.Use(LoggerMiddleware())
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))
	if metrics != nil {
		router.Use(MetricsMiddleware(metrics))
		router.GET("/metrics", gin.WrapH(metrics.Handler()))
	}

	// Health check endpoint
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		groups := v1.Group("/groups")
		{
			groups.GET("", handler.ListGroups)
			groups.GET("/:name", handler.GetGroup)
		}

		v1.POST("/refresh", APIKeyMiddleware(cfg.Server.APIKey), handler.Refresh)
	}

	return router
}
