package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"landed-cost/core/landed"
	"landed-cost/internal/errors"
)

func usdFormatter(t *testing.T) *CurrencyFormatter {
	t.Helper()
	f, err := NewCurrencyFormatter("en-US", "USD")
	if err != nil {
		t.Fatalf("currency formatter: %v", err)
	}
	return f
}

func sampleReport(t *testing.T) *Report {
	t.Helper()
	out, adj, err := landed.EvaluateWithAdjustments(landed.Input{
		FOB:          decimal.NewFromInt(1000),
		Freight:      decimal.NewFromInt(100),
		Insurance:    decimal.NewFromInt(-50),
		ExchangeRate: decimal.NewFromInt(1),
		DutyRate:     decimal.RequireFromString("0.1"),
		TaxRate:      decimal.RequireFromString("0.05"),
		Risk:         landed.RiskParameters{Model: landed.ModelNormal, Volatility: decimal.RequireFromString("0.1")},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return &Report{
		Output:      out,
		Adjustments: adj,
		Metadata: Metadata{
			Timestamp: "2026-01-01T00:00:00Z",
			InputHash: "abc123",
			Currency:  "USD",
			Version:   "test",
		},
	}
}

func TestNewFormatter(t *testing.T) {
	money := usdFormatter(t)

	for _, format := range Formats() {
		t.Run(string(format), func(t *testing.T) {
			f, err := NewFormatter(format, money)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if f.Format() != format {
				t.Errorf("expected format %s, got %s", format, f.Format())
			}
		})
	}

	_, err := NewFormatter("html", money)
	if !errors.IsType(err, errors.TypeNotSupported) {
		t.Errorf("expected %s, got %v", errors.TypeNotSupported, err)
	}
}

func TestJSONRender(t *testing.T) {
	f, _ := NewFormatter(FormatJSON, nil)

	var buf bytes.Buffer
	if err := f.Render(&buf, sampleReport(t)); err != nil {
		t.Fatalf("render failed: %v", err)
	}

	var decoded struct {
		Result struct {
			CTI   string `json:"cti"`
			Model string `json:"model"`
		} `json:"result"`
		GT              string `json:"gt"`
		ComponentsTotal string `json:"components_total"`
		Components      []struct {
			Code  string `json:"code"`
			Label string `json:"label"`
		} `json:"components"`
		Adjustments []struct {
			Field string `json:"field"`
		} `json:"adjustments"`
		Metadata Metadata `json:"metadata"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
	}

	// CIF 1100, AD 110, IG 60.5
	if decoded.Result.CTI != "1270.5" {
		t.Errorf("expected CTI 1270.5, got %s", decoded.Result.CTI)
	}
	if decoded.GT != "170.5" {
		t.Errorf("expected GT 170.5, got %s", decoded.GT)
	}
	if decoded.Result.Model != "normal" {
		t.Errorf("expected model normal, got %s", decoded.Result.Model)
	}
	if len(decoded.Components) != 6 || decoded.Components[3].Label != "Aranceles y Derechos" {
		t.Errorf("unexpected components: %+v", decoded.Components)
	}
	if len(decoded.Adjustments) != 1 || decoded.Adjustments[0].Field != landed.FieldInsurance {
		t.Errorf("unexpected adjustments: %+v", decoded.Adjustments)
	}
	if decoded.Metadata.InputHash != "abc123" {
		t.Errorf("expected input hash abc123, got %s", decoded.Metadata.InputHash)
	}
}

func TestCLIRender(t *testing.T) {
	f, _ := NewFormatter(FormatCLI, usdFormatter(t))

	var buf bytes.Buffer
	if err := f.Render(&buf, sampleReport(t)); err != nil {
		t.Fatalf("render failed: %v", err)
	}
	text := buf.String()

	for _, want := range []string{
		"RESULTADOS DEL MODELO CIF",
		"1,270.50",
		"Aranceles y Derechos",
		"CTI con factor tiempo",
		"Adjusted insurance",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("CLI output missing %q:\n%s", want, text)
		}
	}
}

func TestMarkdownRender(t *testing.T) {
	f, _ := NewFormatter(FormatMarkdown, usdFormatter(t))

	var buf bytes.Buffer
	if err := f.Render(&buf, sampleReport(t)); err != nil {
		t.Fatalf("render failed: %v", err)
	}
	text := buf.String()

	for _, formula := range Formulas {
		if !strings.Contains(text, formula.Expression) {
			t.Errorf("markdown missing formula %q", formula.Expression)
		}
	}
	if strings.Count(text, "\n| ") != 8 {
		t.Errorf("expected header, 6 components and COF rows:\n%s", text)
	}
}

func TestCurrencyFormatter(t *testing.T) {
	tests := []struct {
		locale string
		code   string
		want   string
	}{
		{"en-US", "USD", "12,345.50"},
		{"es-ES", "EUR", "12.345,50"},
	}
	for _, tt := range tests {
		t.Run(tt.locale, func(t *testing.T) {
			f, err := NewCurrencyFormatter(tt.locale, tt.code)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			got := f.Money(decimal.RequireFromString("12345.5"))
			if !strings.Contains(got, tt.want) {
				t.Errorf("Money = %q, want it to contain %q", got, tt.want)
			}
			if f.Currency() != tt.code {
				t.Errorf("expected currency %s, got %s", tt.code, f.Currency())
			}
		})
	}

	if _, err := NewCurrencyFormatter("en-US", "XXXX"); err == nil {
		t.Error("expected error for invalid currency")
	}
	if _, err := NewCurrencyFormatter("not a locale!", "USD"); err == nil {
		t.Error("expected error for invalid locale")
	}
}

func TestDescribe(t *testing.T) {
	for _, code := range landed.ComponentCodes {
		info := Describe(code)
		if info.Label == "" || info.Color == "" || info.Color == "gray" {
			t.Errorf("component %s has no catalog entry: %+v", code, info)
		}
	}
	if Describe("ZZ").Color != "gray" {
		t.Error("expected fallback colour for unknown component")
	}
}
