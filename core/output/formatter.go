// Package output provides output formatting for landed-cost results.
// This package produces human and machine-readable outputs; the engine
// itself only returns raw numbers.
package output

import (
	"io"

	"landed-cost/core/determinism"
	"landed-cost/core/input"
	"landed-cost/core/landed"
	"landed-cost/internal/errors"
)

// Format represents output format type
type Format string

const (
	// FormatCLI is a human-readable CLI table
	FormatCLI Format = "cli"

	// FormatJSON is machine-readable JSON
	FormatJSON Format = "json"

	// FormatMarkdown is a markdown report
	FormatMarkdown Format = "markdown"
)

// Formatter produces output in a specific format
type Formatter interface {
	// Format returns the format type
	Format() Format

	// Render produces output for the given report
	Render(w io.Writer, report *Report) error
}

// Report contains one evaluation and its boundary context
type Report struct {
	// Output is the engine result
	Output *landed.Output

	// Adjustments lists values clamped by the boundary policy
	Adjustments []landed.Adjustment

	// Warnings lists form fields that were defaulted or ignored
	Warnings []input.FieldWarning

	// Metadata contains execution context
	Metadata Metadata
}

// Metadata contains execution context
type Metadata struct {
	// Timestamp is when the evaluation was performed
	Timestamp string `json:"timestamp"`

	// Duration is how long the evaluation took
	Duration string `json:"duration,omitempty"`

	// InputHash identifies the input document
	InputHash string `json:"input_hash,omitempty"`

	// Currency labels the amounts
	Currency string `json:"currency"`

	// Locale is the display locale
	Locale string `json:"locale,omitempty"`

	// Version is the tool version
	Version string `json:"version"`
}

// constructor builds a formatter around a currency formatter
type constructor func(money *CurrencyFormatter) Formatter

var formatters = map[Format]constructor{
	FormatCLI:      func(m *CurrencyFormatter) Formatter { return &cliFormatter{money: m} },
	FormatJSON:     func(m *CurrencyFormatter) Formatter { return &jsonFormatter{} },
	FormatMarkdown: func(m *CurrencyFormatter) Formatter { return &markdownFormatter{money: m} },
}

// NewFormatter returns the formatter for format
func NewFormatter(format Format, money *CurrencyFormatter) (Formatter, error) {
	build, ok := formatters[format]
	if !ok {
		return nil, errors.NotSupported("output format " + string(format))
	}
	return build(money), nil
}

// Formats lists the supported formats, sorted
func Formats() []Format {
	return determinism.SortedKeys(formatters)
}
