package output

import (
	"encoding/json"
	"io"

	"github.com/shopspring/decimal"

	"landed-cost/core/input"
	"landed-cost/core/landed"
)

// ComponentLine is a breakdown component with its display metadata
type ComponentLine struct {
	landed.Component
	Label string `json:"label"`
	Color string `json:"color"`
}

// JSONReport is the machine-readable shape shared by the CLI and the API
type JSONReport struct {
	Result          *landed.Output       `json:"result"`
	GT              decimal.Decimal      `json:"gt"`
	Components      []ComponentLine      `json:"components"`
	ComponentsTotal decimal.Decimal      `json:"components_total"`
	Adjustments     []landed.Adjustment  `json:"adjustments,omitempty"`
	Warnings        []input.FieldWarning `json:"warnings,omitempty"`
	Metadata        Metadata             `json:"metadata"`
}

// BuildJSON assembles the machine-readable report
func BuildJSON(r *Report) *JSONReport {
	components := r.Output.Components()
	lines := make([]ComponentLine, 0, len(components))
	for _, c := range components {
		info := Describe(c.Code)
		lines = append(lines, ComponentLine{Component: c, Label: info.Label, Color: info.Color})
	}
	return &JSONReport{
		Result:          r.Output,
		GT:              r.Output.GT(),
		Components:      lines,
		ComponentsTotal: r.Output.ComponentsTotal(),
		Adjustments:     r.Adjustments,
		Warnings:        r.Warnings,
		Metadata:        r.Metadata,
	}
}

type jsonFormatter struct{}

func (f *jsonFormatter) Format() Format {
	return FormatJSON
}

func (f *jsonFormatter) Render(w io.Writer, r *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(BuildJSON(r))
}
