// Package api - API types for landed-cost evaluation
// These types define the contract for the /evaluate endpoints.
// The API is stateless, idempotent, and deterministic.
package api

import (
	"landed-cost/core/output"
)

// EvaluateResponse is the output of POST /evaluate and POST /evaluate/form
type EvaluateResponse struct {
	// RequestID identifies this request in logs
	RequestID string `json:"request_id"`

	*output.JSONReport
}

// FormulasResponse is the output of GET /formulas
type FormulasResponse struct {
	Summary  string           `json:"summary"`
	Formulas []output.Formula `json:"formulas"`
}

// ErrorResponse wraps an API error
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody describes an API error. Field and Constraint are set when a
// single input field was rejected.
type ErrorBody struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Field      string `json:"field,omitempty"`
	Constraint string `json:"constraint,omitempty"`
	RequestID  string `json:"request_id,omitempty"`
}

// Error codes
const (
	CodeInvalidBody  = "INVALID_BODY"
	CodeInvalidInput = "INVALID_INPUT"
	CodeUnsupported  = "UNSUPPORTED_MEDIA_TYPE"
	CodeInternal     = "INTERNAL_ERROR"
)
