// Package handler holds the HTTP handlers for the v1 API.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/serptrack/models"
	"github.com/use-agent/serptrack/scraper"
)

// Extract returns a handler for POST /api/v1/extract.
//
// Flow:
//  1. Parse & validate request, apply defaults.
//  2. Session.ExtractPage → fetch, extract, classify, append.
//  3. Return the processed batch, duplicates included.
func Extract(session *scraper.Session) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.ExtractRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ExtractResponse{
				Success: false,
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: err.Error(),
				},
			})
			return
		}
		req.Defaults()

		results, err := session.ExtractPage(c.Request.Context(), req.Query, req.Page, req.TargetID)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, models.ExtractResponse{
			Success: true,
			Count:   len(results),
			Results: results,
		})
	}
}

// AutoExtract returns a handler for POST /api/v1/extract/auto.
//
// Runs the pagination loop synchronously: the response carries everything
// collected across pages. A mid-run fetch failure returns the error along
// with the results collected before it.
func AutoExtract(session *scraper.Session) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.AutoExtractRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ExtractResponse{
				Success: false,
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: err.Error(),
				},
			})
			return
		}
		req.Defaults()

		results, err := session.AutoExtract(c.Request.Context(), req.Query, req.TargetResults)
		if err != nil {
			scrapeErr, ok := err.(*models.ScrapeError)
			if !ok {
				scrapeErr = models.NewScrapeError(models.ErrCodeInternal, err.Error(), err)
			}
			c.JSON(mapErrorToStatus(scrapeErr), models.ExtractResponse{
				Success: false,
				Count:   len(results),
				Results: results,
				Error:   scrapeErr.ToDetail(),
			})
			return
		}

		c.JSON(http.StatusOK, models.ExtractResponse{
			Success: true,
			Count:   len(results),
			Results: results,
		})
	}
}

// AbortExtract returns a handler for POST /api/v1/extract/abort.
func AbortExtract(session *scraper.Session) gin.HandlerFunc {
	return func(c *gin.Context) {
		session.Abort()
		c.JSON(http.StatusOK, models.StatusResponse{Success: true})
	}
}

// respondError maps a ScrapeError to the correct HTTP status code and writes
// a structured JSON error response.
func respondError(c *gin.Context, err error) {
	scrapeErr, ok := err.(*models.ScrapeError)
	if !ok {
		scrapeErr = models.NewScrapeError(models.ErrCodeInternal, err.Error(), err)
	}

	c.JSON(mapErrorToStatus(scrapeErr), models.ExtractResponse{
		Success: false,
		Error:   scrapeErr.ToDetail(),
	})
}

// mapErrorToStatus translates error codes to HTTP status codes.
func mapErrorToStatus(e *models.ScrapeError) int {
	switch e.Code {
	case models.ErrCodePageLoadTimeout:
		return http.StatusGatewayTimeout // 504
	case models.ErrCodeSurfaceCreation, models.ErrCodeMessaging:
		return http.StatusBadGateway // 502
	case models.ErrCodeInvalidInput:
		return http.StatusBadRequest // 400
	case models.ErrCodeNoData:
		return http.StatusNotFound // 404
	case models.ErrCodeRateLimited:
		return http.StatusTooManyRequests // 429
	case models.ErrCodeUnauthorized:
		return http.StatusUnauthorized // 401
	default:
		return http.StatusInternalServerError // 500
	}
}
