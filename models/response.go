package models

// ExtractResponse is the response for the extract endpoints and, with
// Results unset, the generic error envelope used by middleware.
type ExtractResponse struct {
	// Success indicates whether the extraction completed without errors.
	Success bool `json:"success"`

	// Count is the number of processed results returned. Duplicates of
	// previously stored records are included here even though they were
	// dropped from storage.
	Count int `json:"count"`

	// Results are the newly processed records, in extraction order.
	Results []Result `json:"results,omitempty"`

	// Error is populated only when Success is false.
	Error *ErrorDetail `json:"error,omitempty"`
}

// ResultsResponse is the response for GET /api/v1/results.
type ResultsResponse struct {
	Success bool     `json:"success"`
	Count   int      `json:"count"`
	Results []Result `json:"results"`
}

// StatusResponse is the response for operations with no result payload.
type StatusResponse struct {
	Success bool         `json:"success"`
	Error   *ErrorDetail `json:"error,omitempty"`
}

// HealthResponse is the response for GET /api/v1/health.
type HealthResponse struct {
	Status        string `json:"status"`
	Uptime        string `json:"uptime"`
	StoredResults int    `json:"stored_results"`
	Version       string `json:"version"`
}
