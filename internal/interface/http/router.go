package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yanqian/bazi-report/internal/infra/config"
)

// NewRouter wires up the HTTP handlers and returns a configured server.
func NewRouter(cfg *config.Config, handler *Handler) *http.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(
		gin.Recovery(),
		requestLogger(handler.logger),
		corsMiddleware(cfg.HTTP.CORSOrigins),
		errorHandlingMiddleware(handler.logger),
	)

	limits := cfg.HTTP.RateLimit
	router.GET("/", handler.Index)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET(cfg.Report.PublicPrefix+"/:id/:file", handler.ServeArtifact)

	api := router.Group("/api")
	{
		api.GET("/health", handler.Health)
		api.POST("/validate", handler.ValidateInput)
		api.POST("/generate-report", quotaMiddleware(limits.Enabled, limits.ReportsPerHour, handler.logger), handler.GenerateReport)
		api.POST("/bazi-only", quotaMiddleware(limits.Enabled, limits.ChartsPerHour, handler.logger), handler.CalculateChart)
		api.GET("/geocode/cache", handler.GeocodeCacheStats)
		api.DELETE("/geocode/cache", handler.ClearGeocodeCache)
	}

	return &http.Server{
		Addr:           cfg.HTTP.Address,
		Handler:        router,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("http request", "method", c.Request.Method, "path", c.Request.URL.Path, "status", c.Writer.Status(), "latency_ms", latency.Milliseconds())
	}
}
