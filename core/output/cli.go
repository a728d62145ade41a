package output

import (
	"fmt"
	"io"
	"strings"
)

const boxWidth = 73

type cliFormatter struct {
	money *CurrencyFormatter
}

func (f *cliFormatter) Format() Format {
	return FormatCLI
}

func (f *cliFormatter) Render(w io.Writer, r *Report) error {
	out := r.Output
	b := &boxWriter{w: w}

	b.rule("┌", "┐")
	b.center("RESULTADOS DEL MODELO CIF")
	b.center(SummaryCaption)
	b.rule("├", "┤")
	b.row("CTI TOTAL", f.money.Money(out.CTI))
	b.row("Valor CIF", f.money.Money(out.CIF))
	b.row("Base Gravable", f.money.Money(out.BaseGravable))
	b.rule("├", "┤")

	for _, c := range out.Components() {
		info := Describe(c.Code)
		b.row(
			fmt.Sprintf("%-3s %s", c.Code, info.Label),
			fmt.Sprintf("%s  %s", f.money.Money(c.Value), f.money.Percent(c.Percent, 1)),
		)
	}
	b.row("COF (operativos y financieros)", f.money.Money(out.COF))

	b.rule("├", "┤")
	b.row(fmt.Sprintf("Análisis estocástico (%s)", out.Model), "")
	b.row("  CTI esperado", f.money.Money(out.CTIEsperado))
	b.row("  Desviación estándar", f.money.Money(out.DesviacionEstandar))
	b.row("  Coef. variación", f.money.Percent(out.CoeficienteVariacion, 2))
	b.row("CTI con factor tiempo", f.money.Money(out.CTIConTiempo))
	b.rule("└", "┘")

	for _, a := range r.Adjustments {
		b.printf("Adjusted %s: %s -> %s (%s)\n", a.Field, a.Original, a.Applied, a.Reason)
	}
	for _, warn := range r.Warnings {
		b.printf("Warning %s=%q: %s\n", warn.Field, warn.Value, warn.Message)
	}
	if r.Metadata.Duration != "" {
		b.printf("\nEvaluation completed in %s\n", r.Metadata.Duration)
	}
	return b.err
}

// boxWriter draws the summary box and keeps the first write error
type boxWriter struct {
	w   io.Writer
	err error
}

func (b *boxWriter) printf(format string, args ...interface{}) {
	if b.err != nil {
		return
	}
	_, b.err = fmt.Fprintf(b.w, format, args...)
}

func (b *boxWriter) rule(left, right string) {
	b.printf("%s%s%s\n", left, strings.Repeat("─", boxWidth), right)
}

func (b *boxWriter) center(text string) {
	pad := boxWidth - runeLen(text)
	if pad < 0 {
		pad = 0
	}
	b.printf("│%s%s%s│\n", strings.Repeat(" ", pad/2), text, strings.Repeat(" ", pad-pad/2))
}

func (b *boxWriter) row(label, value string) {
	label = truncate(label, 44)
	pad := boxWidth - 2 - runeLen(label) - runeLen(value)
	if pad < 1 {
		pad = 1
	}
	b.printf("│ %s%s%s │\n", label, strings.Repeat(" ", pad), value)
}

func runeLen(s string) int {
	return len([]rune(s))
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}
