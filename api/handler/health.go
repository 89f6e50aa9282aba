package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/serptrack/models"
	"github.com/use-agent/serptrack/scraper"
	"github.com/use-agent/serptrack/store"
)

// Health returns a handler for GET /api/v1/health.
//
// Reports degraded status when the browser connection is gone.
func Health(sc *scraper.Scraper, st *store.Store, startTime time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := "healthy"
		if !sc.Connected() {
			status = "degraded"
		}

		stored, err := st.Count(c.Request.Context())
		if err != nil {
			status = "degraded"
		}

		c.JSON(http.StatusOK, models.HealthResponse{
			Status:        status,
			Uptime:        time.Since(startTime).Round(time.Second).String(),
			StoredResults: stored,
			Version:       "0.1.0",
		})
	}
}
