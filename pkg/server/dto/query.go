// Package dto defines the HTTP request and response shapes.
package dto

import "github.com/screenlore/go-screenlore/pkg/types"

// QueryRequest is the body of POST /api/query and /api/query/baseline.
type QueryRequest struct {
	Question                  string `json:"question" binding:"required"`
	PreferredMode             string `json:"preferred_mode,omitempty"`
	IncludeEvidence           *bool  `json:"include_evidence,omitempty"`
	IncludeBaselineComparison bool   `json:"include_baseline_comparison,omitempty"`
}

// ToCore converts the wire request to the core request type. Evidence is
// included unless the caller explicitly opts out.
func (r QueryRequest) ToCore() types.QueryRequest {
	includeEvidence := true
	if r.IncludeEvidence != nil {
		includeEvidence = *r.IncludeEvidence
	}
	mode := types.Mode(r.PreferredMode)
	if mode == "" {
		mode = types.ModeAuto
	}
	return types.QueryRequest{
		Question:                  r.Question,
		PreferredMode:             mode,
		IncludeEvidence:           includeEvidence,
		IncludeBaselineComparison: r.IncludeBaselineComparison,
	}
}

// BaselineResponse is the baseline endpoint's response: the same answer
// shape but without a comparison field.
type BaselineResponse struct {
	Question string `json:"question"`
	types.Answer
}

// ErrorResponse is the error body for 4xx/5xx responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
