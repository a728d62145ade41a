// Package input turns raw shipment descriptions into engine input.
//
// It is the "parse or default" boundary in front of the landed engine:
// documents (JSON, YAML, HCL) and form-style field maps are normalized here
// so the engine itself never deals with blanks, strings or non-finite numbers.
package input

import (
	"encoding/json"
	"math"
	"strconv"

	"github.com/shopspring/decimal"

	"landed-cost/core/determinism"
	"landed-cost/core/landed"
	"landed-cost/internal/errors"
)

// Document is the file and request shape of a shipment
type Document struct {
	// Currency labels the amounts for display; no conversion is performed
	Currency string `json:"currency,omitempty" yaml:"currency,omitempty" hcl:"currency,optional"`

	FOB            float64 `json:"fob" yaml:"fob" hcl:"fob,optional"`
	Freight        float64 `json:"freight" yaml:"freight" hcl:"freight,optional"`
	Insurance      float64 `json:"insurance" yaml:"insurance" hcl:"insurance,optional"`
	ExchangeRate   float64 `json:"exchange_rate" yaml:"exchange_rate" hcl:"exchange_rate,optional"`
	DutyRate       float64 `json:"duty_rate" yaml:"duty_rate" hcl:"duty_rate,optional"`
	TaxRate        float64 `json:"tax_rate" yaml:"tax_rate" hcl:"tax_rate,optional"`
	CustomsCharges float64 `json:"customs_charges" yaml:"customs_charges" hcl:"customs_charges,optional"`
	DiscountRate   float64 `json:"discount_rate" yaml:"discount_rate" hcl:"discount_rate,optional"`
	TimeHorizon    float64 `json:"time_horizon" yaml:"time_horizon" hcl:"time_horizon,optional"`

	Operative *OperativeDocument `json:"operative,omitempty" yaml:"operative,omitempty" hcl:"operative,block"`
	Risk      *RiskDocument      `json:"risk,omitempty" yaml:"risk,omitempty" hcl:"risk,block"`
}

// OperativeDocument holds the COF inputs
type OperativeDocument struct {
	CustomsIntermediation float64 `json:"customs_intermediation" yaml:"customs_intermediation" hcl:"customs_intermediation,optional"`
	StoragePerDay         float64 `json:"storage_per_day" yaml:"storage_per_day" hcl:"storage_per_day,optional"`
	StorageDays           float64 `json:"storage_days" yaml:"storage_days" hcl:"storage_days,optional"`
	LocalDistribution     float64 `json:"local_distribution" yaml:"local_distribution" hcl:"local_distribution,optional"`
	InterestRate          float64 `json:"interest_rate" yaml:"interest_rate" hcl:"interest_rate,optional"`
	FinancingPeriod       float64 `json:"financing_period" yaml:"financing_period" hcl:"financing_period,optional"`

	// ExchangeSensitivity is nil when absent so the default multiplier applies
	ExchangeSensitivity *float64 `json:"exchange_sensitivity,omitempty" yaml:"exchange_sensitivity,omitempty" hcl:"exchange_sensitivity,optional"`
}

// RiskDocument holds the stochastic inputs
type RiskDocument struct {
	Model      string              `json:"model,omitempty" yaml:"model,omitempty" hcl:"model,optional"`
	Volatility float64             `json:"volatility" yaml:"volatility" hcl:"volatility,optional"`
	CV         *DispersionDocument `json:"cv,omitempty" yaml:"cv,omitempty" hcl:"cv,block"`
}

// DispersionDocument holds per-component coefficients of variation
type DispersionDocument struct {
	FOB            float64 `json:"fob" yaml:"fob" hcl:"fob,optional"`
	Freight        float64 `json:"freight" yaml:"freight" hcl:"freight,optional"`
	Insurance      float64 `json:"insurance" yaml:"insurance" hcl:"insurance,optional"`
	ExchangeRate   float64 `json:"exchange_rate" yaml:"exchange_rate" hcl:"exchange_rate,optional"`
	CustomsCharges float64 `json:"customs_charges" yaml:"customs_charges" hcl:"customs_charges,optional"`
	Operative      float64 `json:"operative" yaml:"operative" hcl:"operative,optional"`
}

// Defaults are the values applied when a document or form omits a field
// whose zero value would be misleading
type Defaults struct {
	// RiskModel is used when no model is given
	RiskModel landed.RiskModel

	// ExchangeSensitivity is the νe multiplier used when none is given
	ExchangeSensitivity decimal.Decimal
}

// StandardDefaults returns the normal model and a neutral νe of 1
func StandardDefaults() Defaults {
	return Defaults{
		RiskModel:           landed.DefaultModel,
		ExchangeSensitivity: decimal.NewFromInt(1),
	}
}

// ToInput converts the document to engine input.
// A non-finite number is an INPUT_ERROR naming the field.
func (doc *Document) ToInput(def Defaults) (landed.Input, error) {
	c := converter{}
	in := landed.Input{
		FOB:            c.dec(landed.FieldFOB, doc.FOB),
		Freight:        c.dec(landed.FieldFreight, doc.Freight),
		Insurance:      c.dec(landed.FieldInsurance, doc.Insurance),
		ExchangeRate:   c.dec(landed.FieldExchangeRate, doc.ExchangeRate),
		DutyRate:       c.dec(landed.FieldDutyRate, doc.DutyRate),
		TaxRate:        c.dec(landed.FieldTaxRate, doc.TaxRate),
		CustomsCharges: c.dec(landed.FieldCustomsCharges, doc.CustomsCharges),
		DiscountRate:   c.dec(landed.FieldDiscountRate, doc.DiscountRate),
		TimeHorizon:    c.dec(landed.FieldTimeHorizon, doc.TimeHorizon),
		Risk:           landed.RiskParameters{Model: def.RiskModel},
	}
	in.Operative.ExchangeSensitivity = def.ExchangeSensitivity

	if op := doc.Operative; op != nil {
		in.Operative.CustomsIntermediation = c.dec(landed.FieldCustomsIntermediation, op.CustomsIntermediation)
		in.Operative.StoragePerDay = c.dec(landed.FieldStoragePerDay, op.StoragePerDay)
		in.Operative.StorageDays = c.dec(landed.FieldStorageDays, op.StorageDays)
		in.Operative.LocalDistribution = c.dec(landed.FieldLocalDistribution, op.LocalDistribution)
		in.Operative.InterestRate = c.dec(landed.FieldInterestRate, op.InterestRate)
		in.Operative.FinancingPeriod = c.dec(landed.FieldFinancingPeriod, op.FinancingPeriod)
		if op.ExchangeSensitivity != nil {
			in.Operative.ExchangeSensitivity = c.dec(landed.FieldExchangeSensitivity, *op.ExchangeSensitivity)
		}
	}

	if risk := doc.Risk; risk != nil {
		if risk.Model != "" {
			in.Risk.Model = landed.RiskModel(risk.Model)
		}
		in.Risk.Volatility = c.dec(landed.FieldVolatility, risk.Volatility)
		if cv := risk.CV; cv != nil {
			in.Risk.CV = landed.ComponentDispersion{
				FOB:            c.dec(landed.FieldCVFOB, cv.FOB),
				Freight:        c.dec(landed.FieldCVFreight, cv.Freight),
				Insurance:      c.dec(landed.FieldCVInsurance, cv.Insurance),
				ExchangeRate:   c.dec(landed.FieldCVExchangeRate, cv.ExchangeRate),
				CustomsCharges: c.dec(landed.FieldCVCustomsCharges, cv.CustomsCharges),
				Operative:      c.dec(landed.FieldCVOperative, cv.Operative),
			}
		}
	}

	if c.err != nil {
		return landed.Input{}, c.err
	}
	return in, nil
}

// converter keeps the first non-finite field it sees
type converter struct {
	err error
}

func (c *converter) dec(field string, v float64) decimal.Decimal {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		if c.err == nil {
			c.err = errors.InvalidField(field, "finite", strconv.FormatFloat(v, 'g', -1, 64))
		}
		return decimal.Zero
	}
	return decimal.NewFromFloat(v)
}

// Hash returns the SHA-256 of the canonical JSON encoding of doc
func Hash(doc *Document) (string, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return "", errors.Parsing("hash document", err)
	}
	return determinism.ComputeHash(data).Hex(), nil
}
