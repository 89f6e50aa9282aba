// Package api wires the HTTP surface: routing, auth and rate limiting.
package api

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/serptrack/api/handler"
	"github.com/use-agent/serptrack/api/middleware"
	"github.com/use-agent/serptrack/config"
	"github.com/use-agent/serptrack/scraper"
	"github.com/use-agent/serptrack/store"
)

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:  Recovery → Logger
//	API:     Auth (if enabled) → RateLimit
//
// Health endpoint is intentionally outside auth so monitoring probes always work.
func NewRouter(sc *scraper.Scraper, session *scraper.Session, st *store.Store, cfg *config.Config, startTime time.Time) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())

	v1 := r.Group("/api/v1")

	// Health — no auth required.
	v1.GET("/health", handler.Health(sc, st, startTime))

	// Protected group — auth + rate limit.
	protected := v1.Group("")
	protected.Use(middleware.Auth(cfg.Auth.APIKeys))
	protected.Use(middleware.RateLimit(cfg.RateLimit))

	// Extraction
	protected.POST("/extract", handler.Extract(session))
	protected.POST("/extract/auto", handler.AutoExtract(session))
	protected.POST("/extract/abort", handler.AbortExtract(session))

	// Persisted results
	protected.GET("/results", handler.Results(st))
	protected.DELETE("/results", handler.ClearResults(st))
	protected.GET("/results/export", handler.ExportResults(st))

	return r
}
