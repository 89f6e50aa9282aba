package models

// ExtractRequest is the payload for POST /api/v1/extract.
type ExtractRequest struct {
	// Query is the search query to extract results for. Required.
	Query string `json:"query" binding:"required"`

	// Page is the 1-based result page number. Default: 1.
	Page int `json:"page,omitempty" binding:"omitempty,min=1,max=100"`

	// TargetID optionally names an already-open browser target (tab) to
	// extract from instead of opening an off-screen surface.
	TargetID string `json:"target_id,omitempty"`
}

// Defaults applies default values to unset fields.
func (r *ExtractRequest) Defaults() {
	if r.Page == 0 {
		r.Page = 1
	}
}

// AutoExtractRequest is the payload for POST /api/v1/extract/auto.
type AutoExtractRequest struct {
	// Query is the search query to extract results for. Required.
	Query string `json:"query" binding:"required"`

	// TargetResults is the accumulation target. Pagination stops once
	// this many results have been collected or a page yields nothing.
	// The final batch is never truncated, so the total may overshoot.
	// Default: 30.
	TargetResults int `json:"target_results,omitempty" binding:"omitempty,min=1,max=1000"`
}

// Defaults applies default values to unset fields.
func (r *AutoExtractRequest) Defaults() {
	if r.TargetResults == 0 {
		r.TargetResults = 30
	}
}
