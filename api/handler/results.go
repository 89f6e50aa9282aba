package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/serptrack/models"
	"github.com/use-agent/serptrack/store"
)

// Results returns a handler for GET /api/v1/results: the full persisted
// set sorted ascending by rank.
func Results(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		results, err := st.All(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.ResultsResponse{
			Success: true,
			Count:   len(results),
			Results: results,
		})
	}
}

// ClearResults returns a handler for DELETE /api/v1/results. Clearing an
// already empty store succeeds; the next append starts ranking from 1.
func ClearResults(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := st.Clear(c.Request.Context()); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.StatusResponse{Success: true})
	}
}

// ExportResults returns a handler for GET /api/v1/results/export: the
// persisted set rendered as a CSV download. An empty store is a
// NO_DATA_TO_EXPORT error, never an empty file.
func ExportResults(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		data, err := st.ExportCSV(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}

		filename := fmt.Sprintf("serp_results_%s.csv", time.Now().Format("2006-01-02"))
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
		c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
	}
}
