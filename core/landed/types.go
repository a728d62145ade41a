// Package landed computes the landed cost (CTI) of an imported shipment
// under the CIF customs model, with a linearized risk estimate and a
// compound-growth time projection.
//
// The engine is a pure function of its input: no I/O, no logging, no state
// kept between calls. Callers own the Input and Output values.
package landed

import "github.com/shopspring/decimal"

// RiskModel selects the distributional assumption of the stochastic layer
type RiskModel string

const (
	// ModelDeterministic ignores every dispersion input
	ModelDeterministic RiskModel = "deterministic"

	// ModelNormal is a symmetric perturbation: the expected CTI equals the point CTI
	ModelNormal RiskModel = "normal"

	// ModelLognormal treats each point value as the median of a right-skewed
	// distribution, which shifts the expected CTI above the point CTI
	ModelLognormal RiskModel = "lognormal"
)

// DefaultModel is applied when the input leaves the model blank
const DefaultModel = ModelNormal

// Valid reports whether m names a supported model
func (m RiskModel) Valid() bool {
	switch m {
	case ModelDeterministic, ModelNormal, ModelLognormal:
		return true
	}
	return false
}

// String returns the string representation
func (m RiskModel) String() string {
	return string(m)
}

// Field names used in rejections and adjustments
const (
	FieldFOB                   = "fob"
	FieldFreight               = "freight"
	FieldInsurance             = "insurance"
	FieldExchangeRate          = "exchange_rate"
	FieldDutyRate              = "duty_rate"
	FieldTaxRate               = "tax_rate"
	FieldCustomsCharges        = "customs_charges"
	FieldCustomsIntermediation = "operative.customs_intermediation"
	FieldStoragePerDay         = "operative.storage_per_day"
	FieldStorageDays           = "operative.storage_days"
	FieldLocalDistribution     = "operative.local_distribution"
	FieldInterestRate          = "operative.interest_rate"
	FieldFinancingPeriod       = "operative.financing_period"
	FieldExchangeSensitivity   = "operative.exchange_sensitivity"
	FieldRiskModel             = "risk.model"
	FieldVolatility            = "risk.volatility"
	FieldCVFOB                 = "risk.cv.fob"
	FieldCVFreight             = "risk.cv.freight"
	FieldCVInsurance           = "risk.cv.insurance"
	FieldCVExchangeRate        = "risk.cv.exchange_rate"
	FieldCVCustomsCharges      = "risk.cv.customs_charges"
	FieldCVOperative           = "risk.cv.operative"
	FieldDiscountRate          = "discount_rate"
	FieldTimeHorizon           = "time_horizon"
)

// Input is the full set of trade inputs for one evaluation
type Input struct {
	// FOB is the free-on-board value of the goods
	FOB decimal.Decimal `json:"fob"`

	// Freight is the freight cost (CF)
	Freight decimal.Decimal `json:"freight"`

	// Insurance is the insurance premium (S)
	Insurance decimal.Decimal `json:"insurance"`

	// ExchangeRate (TC) is local-currency units per FOB currency unit
	ExchangeRate decimal.Decimal `json:"exchange_rate"`

	// DutyRate (ta) is the import duty as a fraction of the taxable base
	DutyRate decimal.Decimal `json:"duty_rate"`

	// TaxRate (ti) is the general tax as a fraction of base plus duty
	TaxRate decimal.Decimal `json:"tax_rate"`

	// CustomsCharges (GA) are customs administrative charges
	CustomsCharges decimal.Decimal `json:"customs_charges"`

	// Operative holds the COF components
	Operative OperativeCosts `json:"operative"`

	// Risk drives the stochastic layer
	Risk RiskParameters `json:"risk"`

	// DiscountRate (r) is the per-period rate of the time projection
	DiscountRate decimal.Decimal `json:"discount_rate"`

	// TimeHorizon (t) is the number of periods, possibly fractional
	TimeHorizon decimal.Decimal `json:"time_horizon"`
}

// OperativeCosts are the operational and financial cost inputs:
// COF = [Cia + Ca × days + Cd] × (1 + if × tp) × νe
type OperativeCosts struct {
	CustomsIntermediation decimal.Decimal `json:"customs_intermediation"`
	StoragePerDay         decimal.Decimal `json:"storage_per_day"`
	StorageDays           decimal.Decimal `json:"storage_days"`
	LocalDistribution     decimal.Decimal `json:"local_distribution"`
	InterestRate          decimal.Decimal `json:"interest_rate"`
	FinancingPeriod       decimal.Decimal `json:"financing_period"`
	ExchangeSensitivity   decimal.Decimal `json:"exchange_sensitivity"`
}

// RiskParameters express the relative dispersion of the cost components
type RiskParameters struct {
	// Model is the distributional assumption; blank means DefaultModel
	Model RiskModel `json:"model"`

	// Volatility is a systemic coefficient of variation on the whole CTI
	Volatility decimal.Decimal `json:"volatility"`

	// CV holds per-component coefficients of variation
	CV ComponentDispersion `json:"cv"`
}

// ComponentDispersion holds a coefficient of variation per uncertain input
type ComponentDispersion struct {
	FOB            decimal.Decimal `json:"fob"`
	Freight        decimal.Decimal `json:"freight"`
	Insurance      decimal.Decimal `json:"insurance"`
	ExchangeRate   decimal.Decimal `json:"exchange_rate"`
	CustomsCharges decimal.Decimal `json:"customs_charges"`
	Operative      decimal.Decimal `json:"operative"`
}

// Output is the complete cost breakdown of one evaluation
type Output struct {
	// Echoed primary components
	FOB       decimal.Decimal `json:"fob"`
	Freight   decimal.Decimal `json:"freight"`
	Insurance decimal.Decimal `json:"insurance"`

	// Deterministic layer
	CIF                decimal.Decimal `json:"cif"`
	BaseGravable       decimal.Decimal `json:"base_gravable"`
	Aranceles          decimal.Decimal `json:"aranceles"`
	ImpuestosGenerales decimal.Decimal `json:"impuestos_generales"`
	GastosAduaneros    decimal.Decimal `json:"gastos_aduaneros"`
	COF                decimal.Decimal `json:"cof"`
	CTI                decimal.Decimal `json:"cti"`

	// Stochastic layer
	Model                RiskModel       `json:"model"`
	CTIEsperado          decimal.Decimal `json:"cti_esperado"`
	DesviacionEstandar   decimal.Decimal `json:"desviacion_estandar_cti"`
	CoeficienteVariacion decimal.Decimal `json:"coeficiente_variacion"`

	// Time-value layer
	CTIConTiempo decimal.Decimal `json:"cti_con_tiempo"`
}

// GT returns the duty plus general-tax term of the display caption
func (o *Output) GT() decimal.Decimal {
	return o.Aranceles.Add(o.ImpuestosGenerales)
}

// Adjustment records a value changed by the boundary policy
type Adjustment struct {
	Field    string          `json:"field"`
	Original decimal.Decimal `json:"original"`
	Applied  decimal.Decimal `json:"applied"`
	Reason   string          `json:"reason"`
}
