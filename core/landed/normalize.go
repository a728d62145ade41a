package landed

import (
	"github.com/shopspring/decimal"

	"landed-cost/internal/errors"
)

const reasonNegativeClamped = "negative value clamped to zero"

// Normalize applies the boundary policy to in and returns the value the
// evaluator will see.
//
// Negative physical quantities are clamped to zero and reported as
// adjustments. A horizon above MaxTimeHorizon periods, a non-positive
// exchange rate, an unknown risk model, and a negative growth base combined
// with a fractional horizon are rejected.
func Normalize(in Input) (Input, []Adjustment, error) {
	out := in
	var adj []Adjustment

	clamp := func(field string, v *decimal.Decimal) {
		if v.IsNegative() {
			adj = append(adj, Adjustment{
				Field:    field,
				Original: *v,
				Applied:  decimal.Zero,
				Reason:   reasonNegativeClamped,
			})
			*v = decimal.Zero
		}
	}

	clamp(FieldFOB, &out.FOB)
	clamp(FieldFreight, &out.Freight)
	clamp(FieldInsurance, &out.Insurance)
	clamp(FieldDutyRate, &out.DutyRate)
	clamp(FieldTaxRate, &out.TaxRate)
	clamp(FieldCustomsCharges, &out.CustomsCharges)

	op := &out.Operative
	clamp(FieldCustomsIntermediation, &op.CustomsIntermediation)
	clamp(FieldStoragePerDay, &op.StoragePerDay)
	clamp(FieldStorageDays, &op.StorageDays)
	clamp(FieldLocalDistribution, &op.LocalDistribution)
	clamp(FieldInterestRate, &op.InterestRate)
	clamp(FieldFinancingPeriod, &op.FinancingPeriod)
	clamp(FieldExchangeSensitivity, &op.ExchangeSensitivity)

	risk := &out.Risk
	clamp(FieldVolatility, &risk.Volatility)
	clamp(FieldCVFOB, &risk.CV.FOB)
	clamp(FieldCVFreight, &risk.CV.Freight)
	clamp(FieldCVInsurance, &risk.CV.Insurance)
	clamp(FieldCVExchangeRate, &risk.CV.ExchangeRate)
	clamp(FieldCVCustomsCharges, &risk.CV.CustomsCharges)
	clamp(FieldCVOperative, &risk.CV.Operative)

	clamp(FieldTimeHorizon, &out.TimeHorizon)

	if out.TimeHorizon.GreaterThan(maxHorizon) {
		return Input{}, nil, errors.InvalidField(FieldTimeHorizon,
			"<= "+maxHorizon.String(), out.TimeHorizon.String())
	}

	if !out.ExchangeRate.IsPositive() {
		return Input{}, nil, errors.InvalidField(FieldExchangeRate, "> 0", out.ExchangeRate.String())
	}

	if risk.Model == "" {
		risk.Model = DefaultModel
	}
	if !risk.Model.Valid() {
		return Input{}, nil, errors.InvalidField(FieldRiskModel,
			"one of deterministic|normal|lognormal", string(risk.Model))
	}

	// (1+r)^t has no real value for a negative base and fractional t
	base := decimal.NewFromInt(1).Add(out.DiscountRate)
	if base.IsNegative() && !out.TimeHorizon.IsInteger() {
		return Input{}, nil, errors.InvalidField(FieldDiscountRate,
			">= -1 when time_horizon is fractional", out.DiscountRate.String())
	}

	return out, adj, nil
}
