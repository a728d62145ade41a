package input

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"landed-cost/core/determinism"
	"landed-cost/core/landed"
	"landed-cost/internal/errors"
)

// FieldWarning reports a form field that was defaulted or ignored
type FieldWarning struct {
	Field   string `json:"field"`
	Value   string `json:"value"`
	Message string `json:"message"`
}

// fieldSetters maps form field names onto engine input
var fieldSetters = map[string]func(*landed.Input, decimal.Decimal){
	landed.FieldFOB:                   func(in *landed.Input, v decimal.Decimal) { in.FOB = v },
	landed.FieldFreight:               func(in *landed.Input, v decimal.Decimal) { in.Freight = v },
	landed.FieldInsurance:             func(in *landed.Input, v decimal.Decimal) { in.Insurance = v },
	landed.FieldExchangeRate:          func(in *landed.Input, v decimal.Decimal) { in.ExchangeRate = v },
	landed.FieldDutyRate:              func(in *landed.Input, v decimal.Decimal) { in.DutyRate = v },
	landed.FieldTaxRate:               func(in *landed.Input, v decimal.Decimal) { in.TaxRate = v },
	landed.FieldCustomsCharges:        func(in *landed.Input, v decimal.Decimal) { in.CustomsCharges = v },
	landed.FieldDiscountRate:          func(in *landed.Input, v decimal.Decimal) { in.DiscountRate = v },
	landed.FieldTimeHorizon:           func(in *landed.Input, v decimal.Decimal) { in.TimeHorizon = v },
	landed.FieldCustomsIntermediation: func(in *landed.Input, v decimal.Decimal) { in.Operative.CustomsIntermediation = v },
	landed.FieldStoragePerDay:         func(in *landed.Input, v decimal.Decimal) { in.Operative.StoragePerDay = v },
	landed.FieldStorageDays:           func(in *landed.Input, v decimal.Decimal) { in.Operative.StorageDays = v },
	landed.FieldLocalDistribution:     func(in *landed.Input, v decimal.Decimal) { in.Operative.LocalDistribution = v },
	landed.FieldInterestRate:          func(in *landed.Input, v decimal.Decimal) { in.Operative.InterestRate = v },
	landed.FieldFinancingPeriod:       func(in *landed.Input, v decimal.Decimal) { in.Operative.FinancingPeriod = v },
	landed.FieldExchangeSensitivity:   func(in *landed.Input, v decimal.Decimal) { in.Operative.ExchangeSensitivity = v },
	landed.FieldVolatility:            func(in *landed.Input, v decimal.Decimal) { in.Risk.Volatility = v },
	landed.FieldCVFOB:                 func(in *landed.Input, v decimal.Decimal) { in.Risk.CV.FOB = v },
	landed.FieldCVFreight:             func(in *landed.Input, v decimal.Decimal) { in.Risk.CV.Freight = v },
	landed.FieldCVInsurance:           func(in *landed.Input, v decimal.Decimal) { in.Risk.CV.Insurance = v },
	landed.FieldCVExchangeRate:        func(in *landed.Input, v decimal.Decimal) { in.Risk.CV.ExchangeRate = v },
	landed.FieldCVCustomsCharges:      func(in *landed.Input, v decimal.Decimal) { in.Risk.CV.CustomsCharges = v },
	landed.FieldCVOperative:           func(in *landed.Input, v decimal.Decimal) { in.Risk.CV.Operative = v },
}

// FieldNames returns every numeric form field name, sorted
func FieldNames() []string {
	return determinism.SortedKeys(fieldSetters)
}

// ParseFields builds engine input from form-style fields.
//
// Blank fields keep their default. Unparsable fields default to zero and
// produce a warning, except the exchange sensitivity which falls back to
// def. Unknown names are ignored with a warning. Warnings are sorted by field.
func ParseFields(fields map[string]string, def Defaults) (landed.Input, []FieldWarning) {
	in := landed.Input{Risk: landed.RiskParameters{Model: def.RiskModel}}
	in.Operative.ExchangeSensitivity = def.ExchangeSensitivity

	var warnings []FieldWarning
	for _, name := range determinism.SortedKeys(fields) {
		raw := strings.TrimSpace(fields[name])

		if name == landed.FieldRiskModel {
			if raw != "" {
				in.Risk.Model = landed.RiskModel(strings.ToLower(raw))
			}
			continue
		}

		set, ok := fieldSetters[name]
		if !ok {
			warnings = append(warnings, FieldWarning{Field: name, Value: raw, Message: "unknown field ignored"})
			continue
		}
		if raw == "" {
			continue
		}

		v, err := ParseAmount(raw)
		if err != nil {
			fallback := decimal.Zero
			if name == landed.FieldExchangeSensitivity {
				fallback = def.ExchangeSensitivity
			}
			set(&in, fallback)
			warnings = append(warnings, FieldWarning{
				Field:   name,
				Value:   raw,
				Message: "not a number, using " + fallback.String(),
			})
			continue
		}
		set(&in, v)
	}

	return in, warnings
}

// minExponent bounds the scale of parsed amounts; it covers every finite
// float64, subnormals included
const minExponent = -340

// ParseAmount parses raw as an exact decimal. Values outside the finite
// float64 range, or with more than -minExponent decimal places, are a
// PARSING_ERROR.
func ParseAmount(raw string) (decimal.Decimal, error) {
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero, errors.Parsing("amount "+strconv.Quote(raw)+" is not a finite number", err)
	}
	v, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, errors.Parsing("amount "+strconv.Quote(raw), err)
	}
	if v.Exponent() < minExponent {
		return decimal.Zero, errors.Newf(errors.TypeParsing, "amount %q has too many decimal places", raw)
	}
	return v, nil
}
