package output

import (
	"fmt"
	"io"
	"strings"
)

type markdownFormatter struct {
	money *CurrencyFormatter
}

func (f *markdownFormatter) Format() Format {
	return FormatMarkdown
}

func (f *markdownFormatter) Render(w io.Writer, r *Report) error {
	out := r.Output
	var sb strings.Builder

	sb.WriteString("## Costo Total de Importación\n\n")
	fmt.Fprintf(&sb, "**CTI:** %s  \n", f.money.Money(out.CTI))
	fmt.Fprintf(&sb, "**CIF:** %s  \n", f.money.Money(out.CIF))
	fmt.Fprintf(&sb, "**Base gravable:** %s\n\n", f.money.Money(out.BaseGravable))

	sb.WriteString("| Componente | Descripción | Valor | % |\n")
	sb.WriteString("|---|---|---:|---:|\n")
	for _, c := range out.Components() {
		info := Describe(c.Code)
		fmt.Fprintf(&sb, "| %s | %s | %s | %s |\n",
			c.Code, info.Label, f.money.Money(c.Value), f.money.Percent(c.Percent, 1))
	}
	fmt.Fprintf(&sb, "| COF | Costos operativos y financieros | %s | |\n\n", f.money.Money(out.COF))

	fmt.Fprintf(&sb, "### Análisis estocástico (%s)\n\n", out.Model)
	fmt.Fprintf(&sb, "- CTI esperado: %s\n", f.money.Money(out.CTIEsperado))
	fmt.Fprintf(&sb, "- Desviación estándar: %s\n", f.money.Money(out.DesviacionEstandar))
	fmt.Fprintf(&sb, "- Coeficiente de variación: %s\n\n", f.money.Percent(out.CoeficienteVariacion, 2))

	fmt.Fprintf(&sb, "### CTI con factor tiempo\n\n%s\n\n", f.money.Money(out.CTIConTiempo))

	sb.WriteString("### Modelo matemático\n\n```\n")
	for _, formula := range Formulas {
		sb.WriteString(formula.Expression + "\n")
	}
	sb.WriteString("```\n")

	if len(r.Adjustments) > 0 {
		sb.WriteString("\n### Ajustes\n\n")
		for _, a := range r.Adjustments {
			fmt.Fprintf(&sb, "- `%s`: %s → %s (%s)\n", a.Field, a.Original, a.Applied, a.Reason)
		}
	}

	_, err := io.WriteString(w, sb.String())
	return err
}
