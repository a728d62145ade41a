package landed

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// ComponentCode identifies one of the six breakdown components
type ComponentCode string

const (
	ComponentFOB       ComponentCode = "FOB"
	ComponentFreight   ComponentCode = "CF"
	ComponentInsurance ComponentCode = "S"
	ComponentDuty      ComponentCode = "AD"
	ComponentTax       ComponentCode = "IG"
	ComponentCustoms   ComponentCode = "GA"
)

// ComponentCodes lists the breakdown components in display order
var ComponentCodes = []ComponentCode{
	ComponentFOB,
	ComponentFreight,
	ComponentInsurance,
	ComponentDuty,
	ComponentTax,
	ComponentCustoms,
}

// Component is one breakdown line with its share of the components total
type Component struct {
	Code    ComponentCode   `json:"code"`
	Value   decimal.Decimal `json:"value"`
	Percent decimal.Decimal `json:"percent"`
}

// Value returns the amount of the component identified by code
func (o *Output) Value(code ComponentCode) decimal.Decimal {
	switch code {
	case ComponentFOB:
		return o.FOB
	case ComponentFreight:
		return o.Freight
	case ComponentInsurance:
		return o.Insurance
	case ComponentDuty:
		return o.Aranceles
	case ComponentTax:
		return o.ImpuestosGenerales
	case ComponentCustoms:
		return o.GastosAduaneros
	}
	return decimal.Zero
}

// ComponentsTotal is FOB + CF + S + AD + IG + GA. It excludes COF and the
// stochastic and time-adjusted figures.
func (o *Output) ComponentsTotal() decimal.Decimal {
	total := decimal.Zero
	for _, code := range ComponentCodes {
		total = total.Add(o.Value(code))
	}
	return total
}

// Percentage returns value as a percentage of the components total
func (o *Output) Percentage(value decimal.Decimal) decimal.Decimal {
	return Percentage(value, o.ComponentsTotal())
}

// Components returns the six breakdown lines in display order
func (o *Output) Components() []Component {
	total := o.ComponentsTotal()
	components := make([]Component, 0, len(ComponentCodes))
	for _, code := range ComponentCodes {
		v := o.Value(code)
		components = append(components, Component{
			Code:    code,
			Value:   v,
			Percent: Percentage(v, total),
		})
	}
	return components
}

// Percentage returns value / total × 100, or 0 when total is 0
func Percentage(value, total decimal.Decimal) decimal.Decimal {
	if total.IsZero() {
		return decimal.Zero
	}
	return value.Mul(hundred).Div(total)
}
