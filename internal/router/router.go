package router

import (
	"github.com/gin-gonic/gin"

	"leakscan/internal/config"
	"leakscan/internal/handler"
	"leakscan/internal/middleware"
)

// Handlers groups the HTTP handlers mounted by Setup.
type Handlers struct {
	Extract *handler.ExtractHandler
	OCR     *handler.OCRHandler
	Analyze *handler.AnalyzeHandler
	Scan    *handler.ScanHandler
	Health  *handler.HealthHandler
}

// Setup configures the Gin engine with all routes and middleware.
func Setup(cfg *config.Config, h Handlers) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.Tracing())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(cfg.CORS.AllowedHeaders))

	// Health checks
	r.GET("/healthz", h.Health.Liveness)
	r.GET("/readyz", h.Health.Readiness)

	v1 := r.Group("/api/v1")
	v1.Use(middleware.AuthMiddleware(cfg.Auth))
	v1.POST("/extract", h.Extract.Extract)
	v1.POST("/ocr", h.OCR.Extract)
	v1.POST("/analyze-leaks", h.Analyze.Analyze)
	v1.POST("/scans", h.Scan.Scan)
	v1.POST("/scans/stored", h.Scan.ScanStored)

	// Unversioned paths kept for existing clients
	legacy := r.Group("")
	legacy.Use(middleware.AuthMiddleware(cfg.Auth))
	legacy.POST("/extract-data", h.Extract.Extract)
	legacy.POST("/ocr-extract", h.OCR.Extract)
	legacy.POST("/analyze-leaks", h.Analyze.Analyze)

	return r
}
