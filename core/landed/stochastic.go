package landed

import (
	"github.com/shopspring/decimal"

	"landed-cost/internal/errors"
)

// estimateResult is the stochastic triple before the CV is derived
type estimateResult struct {
	expected decimal.Decimal
	stddev   decimal.Decimal
}

// term is one uncertain input of the linearized CTI: its point value, the
// partial derivative of CTI with respect to it, and its coefficient of
// variation.
type term struct {
	value  decimal.Decimal
	weight decimal.Decimal
	cv     decimal.Decimal
}

// terms linearizes CTI around the point estimate. With K = (1+ta)(1+ti):
//
//	∂CTI/∂FOB = ∂CTI/∂CF = ∂CTI/∂S = TC·K
//	∂CTI/∂TC  = CIF·K
//	∂CTI/∂GA  = ∂CTI/∂COF = 1
func terms(in Input, out *Output) []term {
	k := one.Add(in.DutyRate).Mul(one.Add(in.TaxRate))
	goods := in.ExchangeRate.Mul(k)
	cv := in.Risk.CV
	return []term{
		{value: in.FOB, weight: goods, cv: cv.FOB},
		{value: in.Freight, weight: goods, cv: cv.Freight},
		{value: in.Insurance, weight: goods, cv: cv.Insurance},
		{value: in.ExchangeRate, weight: out.CIF.Mul(k), cv: cv.ExchangeRate},
		{value: in.CustomsCharges, weight: one, cv: cv.CustomsCharges},
		{value: out.COF, weight: one, cv: cv.Operative},
	}
}

// estimate propagates component dispersion to the CTI assuming independent
// components.
func estimate(in Input, out *Output) (estimateResult, error) {
	switch in.Risk.Model {
	case ModelDeterministic:
		return estimateResult{expected: out.CTI, stddev: decimal.Zero}, nil
	case ModelLognormal:
		return estimateLognormal(in, out)
	default:
		return estimateNormal(in, out)
	}
}

// estimateNormal: E[CTI] = CTI, Var = Σ (wᵢ·cvᵢ·xᵢ)² + (vol·CTI)²
func estimateNormal(in Input, out *Output) (estimateResult, error) {
	variance := decimal.Zero
	for _, t := range terms(in, out) {
		sd := t.weight.Mul(t.cv).Mul(t.value)
		variance = variance.Add(sd.Mul(sd))
	}
	systemic := in.Risk.Volatility.Mul(out.CTI)
	variance = variance.Add(systemic.Mul(systemic))

	sd, err := sqrt(variance)
	if err != nil {
		return estimateResult{}, err
	}
	return estimateResult{expected: out.CTI, stddev: sd}, nil
}

// estimateLognormal treats each point value as a median. A component with
// coefficient of variation c has mean x·√(1+c²) and standard deviation
// mean·c. The systemic volatility scales the whole expected CTI the same way.
func estimateLognormal(in Input, out *Output) (estimateResult, error) {
	shift := decimal.Zero
	variance := decimal.Zero
	for _, t := range terms(in, out) {
		if t.cv.IsZero() {
			continue
		}
		skew, err := sqrt(one.Add(t.cv.Mul(t.cv)))
		if err != nil {
			return estimateResult{}, err
		}
		mean := t.value.Mul(skew)
		shift = shift.Add(t.weight.Mul(mean.Sub(t.value)))
		sd := t.weight.Mul(mean).Mul(t.cv)
		variance = variance.Add(sd.Mul(sd))
	}

	vol := in.Risk.Volatility
	systemicSkew, err := sqrt(one.Add(vol.Mul(vol)))
	if err != nil {
		return estimateResult{}, err
	}
	expected := out.CTI.Add(shift).Mul(systemicSkew)
	systemic := vol.Mul(expected)
	variance = variance.Add(systemic.Mul(systemic))

	sd, err := sqrt(variance)
	if err != nil {
		return estimateResult{}, err
	}
	return estimateResult{expected: expected, stddev: sd}, nil
}

// sqrtPrecision is the number of decimal places kept by sqrt on the
// scaled mantissa, which lies in [0.01, 10)
const sqrtPrecision = 20

var half = decimal.New(5, -1)

// sqrt returns √d with sqrtPrecision significant digits for any magnitude.
// d is split into s × 10^(2k) so the root is taken on a value near 1 and
// shifted back by k.
func sqrt(d decimal.Decimal) (decimal.Decimal, error) {
	if d.IsZero() {
		return decimal.Zero, nil
	}
	if d.IsNegative() {
		return decimal.Zero, errors.Newf(errors.TypeInternal, "square root of negative variance %s", d)
	}

	k := (int32(d.NumDigits()) + d.Exponent()) / 2
	s := d.Shift(-2 * k)

	r, err := s.Round(sqrtPrecision).PowWithPrecision(half, sqrtPrecision)
	if err != nil {
		return decimal.Zero, errors.Internal("square root", err)
	}
	if !r.IsPositive() {
		return decimal.Zero, errors.Newf(errors.TypeInternal, "square root of %s collapsed to %s", s, r)
	}
	// one Newton step: r = (r + s/r) / 2
	r = r.Add(s.DivRound(r, sqrtPrecision)).Mul(half).Round(sqrtPrecision)

	return r.Shift(k), nil
}
