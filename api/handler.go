// Package api - HTTP handlers for landed-cost evaluation
// These handlers wrap the engine - they contain NO cost logic.
// All logic is delegated to core packages.
package api

import (
	"io"
	"mime"
	"net/http"
	"time"

	"go.uber.org/zap"

	"landed-cost/core/input"
	"landed-cost/core/landed"
	"landed-cost/core/output"
	"landed-cost/internal/errors"
	"landed-cost/internal/logging"
)

// bodyFormats maps request media types onto shipment formats
var bodyFormats = map[string]input.Format{
	"":                   input.FormatJSON,
	"application/json":   input.FormatJSON,
	"application/yaml":   input.FormatYAML,
	"application/x-yaml": input.FormatYAML,
	"text/yaml":          input.FormatYAML,
	"application/hcl":    input.FormatHCL,
}

// handleEvaluate handles POST /evaluate
func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	opts := s.Options()

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	format, ok := bodyFormats[mediaType]
	if !ok {
		s.metrics.RecordFailure("", "unsupported")
		s.writeError(w, r, http.StatusUnsupportedMediaType, ErrorBody{
			Code:    CodeUnsupported,
			Message: "unsupported content type " + mediaType,
		})
		return
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, opts.MaxBodyBytes))
	if err != nil {
		s.metrics.RecordFailure("", "invalid_body")
		s.writeError(w, r, http.StatusBadRequest, ErrorBody{Code: CodeInvalidBody, Message: err.Error()})
		return
	}

	doc, err := input.Decode(format, "request", data)
	if err != nil {
		s.metrics.RecordFailure("", "invalid_body")
		s.writeError(w, r, http.StatusBadRequest, ErrorBody{Code: CodeInvalidBody, Message: err.Error()})
		return
	}

	in, err := doc.ToInput(opts.Defaults)
	if err != nil {
		s.rejectInput(w, r, in.Risk.Model, err)
		return
	}

	meta := output.Metadata{Currency: opts.Currency, Locale: opts.Locale}
	if doc.Currency != "" {
		meta.Currency = doc.Currency
	}
	if hash, err := input.Hash(doc); err == nil {
		meta.InputHash = hash
	}

	s.evaluate(w, r, in, nil, meta)
}

// handleEvaluateForm handles POST /evaluate/form
// Form fields are lenient: unparsable values default to zero with a warning.
func (s *Server) handleEvaluateForm(w http.ResponseWriter, r *http.Request) {
	opts := s.Options()

	r.Body = http.MaxBytesReader(w, r.Body, opts.MaxBodyBytes)
	if err := r.ParseForm(); err != nil {
		s.metrics.RecordFailure("", "invalid_body")
		s.writeError(w, r, http.StatusBadRequest, ErrorBody{Code: CodeInvalidBody, Message: err.Error()})
		return
	}

	fields := make(map[string]string, len(r.PostForm))
	for key := range r.PostForm {
		fields[key] = r.PostForm.Get(key)
	}
	in, warnings := input.ParseFields(fields, opts.Defaults)

	s.evaluate(w, r, in, warnings, output.Metadata{Currency: opts.Currency, Locale: opts.Locale})
}

// evaluate runs the engine and writes either the report or the rejection
func (s *Server) evaluate(w http.ResponseWriter, r *http.Request, in landed.Input, warnings []input.FieldWarning, meta output.Metadata) {
	start := time.Now()
	out, adjustments, err := landed.EvaluateWithAdjustments(in)
	elapsed := time.Since(start)
	if err != nil {
		s.rejectInput(w, r, in.Risk.Model, err)
		return
	}
	s.metrics.RecordSuccess(out, elapsed)

	meta.Timestamp = start.UTC().Format(time.RFC3339)
	meta.Duration = elapsed.String()
	meta.Version = s.version

	report := output.BuildJSON(&output.Report{
		Output:      out,
		Adjustments: adjustments,
		Warnings:    warnings,
		Metadata:    meta,
	})

	logging.Debug("evaluation complete",
		zap.String("request_id", RequestIDFrom(r.Context())),
		zap.String("model", out.Model.String()),
		zap.String("cti", out.CTI.String()),
		zap.Int("adjustments", len(adjustments)),
	)

	s.writeJSON(w, EvaluateResponse{
		RequestID:  RequestIDFrom(r.Context()),
		JSONReport: report,
	}, http.StatusOK)
}

// rejectInput maps engine and boundary errors onto HTTP responses
func (s *Server) rejectInput(w http.ResponseWriter, r *http.Request, model landed.RiskModel, err error) {
	if field, constraint, ok := errors.FieldOf(err); ok {
		s.metrics.RecordFailure(model, "invalid_input")
		s.writeError(w, r, http.StatusUnprocessableEntity, ErrorBody{
			Code:       CodeInvalidInput,
			Message:    err.Error(),
			Field:      field,
			Constraint: constraint,
		})
		return
	}

	s.metrics.RecordFailure(model, "error")
	logging.Error("evaluation failed",
		zap.String("request_id", RequestIDFrom(r.Context())),
		zap.Error(err),
	)
	s.writeError(w, r, http.StatusInternalServerError, ErrorBody{Code: CodeInternal, Message: err.Error()})
}

// handleFormulas handles GET /formulas
func (s *Server) handleFormulas(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, FormulasResponse{
		Summary:  output.SummaryCaption,
		Formulas: output.Formulas,
	}, http.StatusOK)
}
