package output

import "landed-cost/core/landed"

// ComponentInfo is the display metadata of a breakdown component
type ComponentInfo struct {
	Code  landed.ComponentCode `json:"code"`
	Label string               `json:"label"`
	Color string               `json:"color"`
}

var catalog = map[landed.ComponentCode]ComponentInfo{
	landed.ComponentFOB:       {Code: landed.ComponentFOB, Label: "Free on Board", Color: "blue"},
	landed.ComponentFreight:   {Code: landed.ComponentFreight, Label: "Costo del Flete", Color: "green"},
	landed.ComponentInsurance: {Code: landed.ComponentInsurance, Label: "Prima del Seguro", Color: "orange"},
	landed.ComponentDuty:      {Code: landed.ComponentDuty, Label: "Aranceles y Derechos", Color: "purple"},
	landed.ComponentTax:       {Code: landed.ComponentTax, Label: "Impuestos Generales", Color: "red"},
	landed.ComponentCustoms:   {Code: landed.ComponentCustoms, Label: "Gastos Aduaneros", Color: "indigo"},
}

// Describe returns the display metadata for code
func Describe(code landed.ComponentCode) ComponentInfo {
	if info, ok := catalog[code]; ok {
		return info
	}
	return ComponentInfo{Code: code, Label: string(code), Color: "gray"}
}

// Formula is a reference formula shown next to the results
type Formula struct {
	Name       string `json:"name"`
	Expression string `json:"expression"`
}

// Formulas are the reference formulas in evaluation order
var Formulas = []Formula{
	{Name: "CIF", Expression: "CIF = FOB + CF + S"},
	{Name: "BG", Expression: "BG = CIF × TC"},
	{Name: "AD", Expression: "AD = BG × ta"},
	{Name: "IG", Expression: "IG = (BG + AD) × ti"},
	{Name: "COF", Expression: "COF = [Cia + Ca × t + Cd] × (1 + if × tp) × νe"},
	{Name: "CTI", Expression: "CTI = BG + GT + GA + CO"},
	{Name: "CTI(t)", Expression: "CTI(t) = CTI × (1 + r)^t"},
}

// SummaryCaption is the simplified headline caption. It matches the
// computed CTI only when TC = 1.
const SummaryCaption = "CTI = CIF × (1 + ta) × (1 + ti) + GA + CO"
