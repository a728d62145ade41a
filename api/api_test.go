package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"landed-cost/core/input"
)

const workedExampleJSON = `{
	"fob": 1000, "freight": 100, "insurance": 50, "exchange_rate": 1,
	"duty_rate": 0.1, "tax_rate": 0.05, "discount_rate": 0.05, "time_horizon": 2,
	"risk": {"model": "deterministic"}
}`

type evaluateBody struct {
	RequestID string `json:"request_id"`
	Result    struct {
		CIF          string `json:"cif"`
		CTI          string `json:"cti"`
		CTIConTiempo string `json:"cti_con_tiempo"`
		Model        string `json:"model"`
	} `json:"result"`
	GT         string `json:"gt"`
	Components []struct {
		Code  string `json:"code"`
		Label string `json:"label"`
	} `json:"components"`
	Adjustments []struct {
		Field string `json:"field"`
	} `json:"adjustments"`
	Warnings []struct {
		Field string `json:"field"`
	} `json:"warnings"`
	Metadata struct {
		Currency  string `json:"currency"`
		InputHash string `json:"input_hash"`
	} `json:"metadata"`
}

func newTestServer() *Server {
	return NewServer("test", Options{
		Defaults: input.StandardDefaults(),
		Currency: "USD",
		Locale:   "en-US",
	}, true)
}

func do(t *testing.T, s *Server, method, path, contentType, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func TestEvaluateWorkedExample(t *testing.T) {
	s := newTestServer()
	rec := do(t, s, http.MethodPost, "/evaluate", "application/json", workedExampleJSON)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body evaluateBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	assert.Equal(t, "1150", body.Result.CIF)
	assert.Equal(t, "1328.25", body.Result.CTI)
	assert.Equal(t, "178.25", body.GT)
	assert.Equal(t, "deterministic", body.Result.Model)
	assert.True(t, strings.HasPrefix(body.Result.CTIConTiempo, "1464.39"), body.Result.CTIConTiempo)
	assert.Len(t, body.Components, 6)
	assert.Equal(t, "Free on Board", body.Components[0].Label)
	assert.Equal(t, "USD", body.Metadata.Currency)
	assert.Len(t, body.Metadata.InputHash, 64)
	assert.NotEmpty(t, body.RequestID)
	assert.Equal(t, body.RequestID, rec.Header().Get(HeaderRequestID))
}

func TestEvaluateKeepsCallerRequestID(t *testing.T) {
	s := newTestServer()
	const id = "7d444840-9dc0-11d1-b245-5ffdce74fad2"

	req := httptest.NewRequest(http.MethodPost, "/evaluate", strings.NewReader(workedExampleJSON))
	req.Header.Set(HeaderRequestID, id)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, id, rec.Header().Get(HeaderRequestID))
}

func TestEvaluateDocumentCurrency(t *testing.T) {
	s := newTestServer()
	rec := do(t, s, http.MethodPost, "/evaluate", "", `{"fob": 10, "exchange_rate": 1, "currency": "EUR"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body evaluateBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "EUR", body.Metadata.Currency)
	assert.Equal(t, "normal", body.Result.Model)
}

func TestEvaluateYAMLAndHCLBodies(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        string
	}{
		{
			name:        "yaml",
			contentType: "application/yaml",
			body:        "fob: 1000\nfreight: 100\ninsurance: 50\nexchange_rate: 1\nduty_rate: 0.1\ntax_rate: 0.05\nrisk:\n  model: deterministic\n",
		},
		{
			name:        "hcl",
			contentType: "application/hcl",
			body:        "fob = 1000\nfreight = 100\ninsurance = 50\nexchange_rate = 1\nduty_rate = 0.1\ntax_rate = 0.05\nrisk {\n  model = \"deterministic\"\n}\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, newTestServer(), http.MethodPost, "/evaluate", tt.contentType, tt.body)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			var body evaluateBody
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, "1328.25", body.Result.CTI)
		})
	}
}

func TestEvaluateRejections(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        string
		status      int
		code        string
		field       string
		constraint  string
	}{
		{
			name:   "zero exchange rate",
			body:   `{"fob": 1000, "exchange_rate": 0}`,
			status: http.StatusUnprocessableEntity,
			code:   CodeInvalidInput,
			field:  "exchange_rate",
		},
		{
			name:   "unknown risk model",
			body:   `{"fob": 1000, "exchange_rate": 1, "risk": {"model": "montecarlo"}}`,
			status: http.StatusUnprocessableEntity,
			code:   CodeInvalidInput,
			field:  "risk.model",
		},
		{
			name:   "horizon beyond maximum",
			body:   `{"fob": 1000, "exchange_rate": 1, "discount_rate": 0.05, "time_horizon": 10000000}`,
			status: http.StatusUnprocessableEntity,
			code:   CodeInvalidInput,
			field:  "time_horizon",
		},
		{
			name:   "malformed json",
			body:   `{"fob": `,
			status: http.StatusBadRequest,
			code:   CodeInvalidBody,
		},
		{
			name:   "unknown field",
			body:   `{"fob": 1, "exchange_rate": 1, "tariff": 3}`,
			status: http.StatusBadRequest,
			code:   CodeInvalidBody,
		},
		{
			name:        "unsupported media type",
			contentType: "text/csv",
			body:        "fob,1000",
			status:      http.StatusUnsupportedMediaType,
			code:        CodeUnsupported,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			contentType := tt.contentType
			if contentType == "" {
				contentType = "application/json"
			}
			rec := do(t, newTestServer(), http.MethodPost, "/evaluate", contentType, tt.body)
			require.Equal(t, tt.status, rec.Code, rec.Body.String())

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.code, resp.Error.Code)
			assert.Equal(t, tt.field, resp.Error.Field)
			assert.NotEmpty(t, resp.Error.RequestID)
			if tt.field != "" {
				assert.NotEmpty(t, resp.Error.Constraint)
			}
		})
	}
}

func TestEvaluateBodyLimit(t *testing.T) {
	s := newTestServer()
	opts := s.Options()
	opts.MaxBodyBytes = 16
	s.SetOptions(opts)

	rec := do(t, s, http.MethodPost, "/evaluate", "application/json", workedExampleJSON)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEvaluateClampsNegativeValues(t *testing.T) {
	rec := do(t, newTestServer(), http.MethodPost, "/evaluate", "application/json",
		`{"fob": 1000, "freight": -100, "exchange_rate": 1}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body evaluateBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Adjustments, 1)
	assert.Equal(t, "freight", body.Adjustments[0].Field)
	assert.Equal(t, "1000", body.Result.CIF)
}

func TestEvaluateForm(t *testing.T) {
	form := url.Values{
		"fob":           {"1000"},
		"freight":       {"100"},
		"insurance":     {"abc"},
		"exchange_rate": {"1"},
		"duty_rate":     {"0.1"},
		"risk.model":    {"Deterministic"},
		"colour":        {"red"},
	}
	rec := do(t, newTestServer(), http.MethodPost, "/evaluate/form",
		"application/x-www-form-urlencoded", form.Encode())
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body evaluateBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "1100", body.Result.CIF)
	assert.Equal(t, "deterministic", body.Result.Model)

	fields := []string{}
	for _, w := range body.Warnings {
		fields = append(fields, w.Field)
	}
	assert.ElementsMatch(t, []string{"colour", "insurance"}, fields)
}

func TestEvaluateFormOutOfRangeAmount(t *testing.T) {
	form := url.Values{
		"fob":           {"1e300000000"},
		"freight":       {"100"},
		"exchange_rate": {"1"},
	}
	rec := do(t, newTestServer(), http.MethodPost, "/evaluate/form",
		"application/x-www-form-urlencoded", form.Encode())
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body evaluateBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "100", body.Result.CIF)
	require.Len(t, body.Warnings, 1)
	assert.Equal(t, "fob", body.Warnings[0].Field)
}

func TestEvaluateLargeVariance(t *testing.T) {
	rec := do(t, newTestServer(), http.MethodPost, "/evaluate", "application/json",
		`{"fob": 1e200, "exchange_rate": 1, "risk": {"model": "normal", "cv": {"fob": 0.1}}}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body evaluateBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "normal", body.Result.Model)
	assert.NotEmpty(t, body.Result.CTI)
}

func TestEvaluateFormRejectsZeroExchangeRate(t *testing.T) {
	rec := do(t, newTestServer(), http.MethodPost, "/evaluate/form",
		"application/x-www-form-urlencoded", "fob=1000")
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "exchange_rate", resp.Error.Field)
}

func TestFormulas(t *testing.T) {
	rec := do(t, newTestServer(), http.MethodGet, "/formulas", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp FormulasResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Summary)
	require.NotEmpty(t, resp.Formulas)
	assert.Equal(t, "CIF", resp.Formulas[0].Name)
}

func TestHealthAndVersion(t *testing.T) {
	s := newTestServer()

	rec := do(t, s, http.MethodGet, "/health", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"healthy"`)

	rec = do(t, s, http.MethodGet, "/version", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"version":"test"`)
}

func TestMetrics(t *testing.T) {
	s := newTestServer()
	do(t, s, http.MethodPost, "/evaluate", "application/json", workedExampleJSON)
	do(t, s, http.MethodPost, "/evaluate", "application/json", `{"fob": 1, "exchange_rate": -1}`)

	rec := do(t, s, http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	text := rec.Body.String()
	assert.Contains(t, text, `landed_cost_evaluations_total{model="deterministic",outcome="success"} 1`)
	assert.Contains(t, text, `landed_cost_evaluations_total{model="normal",outcome="invalid_input"} 1`)
	assert.Contains(t, text, "landed_cost_cti_bucket")
}

func TestMetricsNotRoutedWhenDisabled(t *testing.T) {
	s := NewServer("test", Options{Defaults: input.StandardDefaults(), Currency: "USD"}, false)
	rec := do(t, s, http.MethodGet, "/metrics", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUnknownRoute(t *testing.T) {
	rec := do(t, newTestServer(), http.MethodGet, "/estimate", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
