package landed

import (
	"github.com/shopspring/decimal"

	"landed-cost/internal/errors"
)

// powPrecision is the number of decimal places kept by growth factors
const powPrecision = 16

// MaxTimeHorizon is the largest accepted time horizon, in periods
const MaxTimeHorizon = 1000

var (
	one        = decimal.NewFromInt(1)
	maxHorizon = decimal.NewFromInt(MaxTimeHorizon)
)

// Evaluate computes the full cost breakdown for in.
//
// It is all-or-nothing: on a boundary rejection it returns nil and an
// INPUT_ERROR naming the field. Evaluate is safe for concurrent use.
func Evaluate(in Input) (*Output, error) {
	norm, _, err := Normalize(in)
	if err != nil {
		return nil, err
	}
	return evaluate(norm)
}

// EvaluateWithAdjustments is Evaluate that also reports what the boundary
// policy changed.
func EvaluateWithAdjustments(in Input) (*Output, []Adjustment, error) {
	norm, adj, err := Normalize(in)
	if err != nil {
		return nil, nil, err
	}
	out, err := evaluate(norm)
	if err != nil {
		return nil, nil, err
	}
	return out, adj, nil
}

func evaluate(in Input) (*Output, error) {
	out := &Output{
		FOB:             in.FOB,
		Freight:         in.Freight,
		Insurance:       in.Insurance,
		GastosAduaneros: in.CustomsCharges,
		Model:           in.Risk.Model,
	}

	out.CIF = in.FOB.Add(in.Freight).Add(in.Insurance)
	out.BaseGravable = out.CIF.Mul(in.ExchangeRate)
	out.Aranceles = out.BaseGravable.Mul(in.DutyRate)
	out.ImpuestosGenerales = out.BaseGravable.Add(out.Aranceles).Mul(in.TaxRate)
	out.COF = operativeCost(in.Operative)
	out.CTI = out.BaseGravable.
		Add(out.Aranceles).
		Add(out.ImpuestosGenerales).
		Add(out.GastosAduaneros).
		Add(out.COF)

	est, err := estimate(in, out)
	if err != nil {
		return nil, err
	}
	out.CTIEsperado = est.expected
	out.DesviacionEstandar = est.stddev
	out.CoeficienteVariacion = CoefficientOfVariation(est.stddev, est.expected)

	growth, err := GrowthFactor(in.DiscountRate, in.TimeHorizon)
	if err != nil {
		return nil, err
	}
	out.CTIConTiempo = out.CTI.Mul(growth)

	return out, nil
}

// operativeCost computes COF = [Cia + Ca × days + Cd] × (1 + if × tp) × νe
func operativeCost(op OperativeCosts) decimal.Decimal {
	base := op.CustomsIntermediation.
		Add(op.StoragePerDay.Mul(op.StorageDays)).
		Add(op.LocalDistribution)
	financing := one.Add(op.InterestRate.Mul(op.FinancingPeriod))
	return base.Mul(financing).Mul(op.ExchangeSensitivity)
}

// GrowthFactor returns (1 + rate)^horizon.
//
// A zero horizon yields 1. A horizon beyond ±MaxTimeHorizon is an
// INPUT_ERROR on the time horizon, and a negative base with a fractional
// horizon is an INPUT_ERROR on the discount rate. The factor is rounded to
// powPrecision decimal places.
func GrowthFactor(rate, horizon decimal.Decimal) (decimal.Decimal, error) {
	if horizon.IsZero() {
		return one, nil
	}
	if horizon.Abs().GreaterThan(maxHorizon) {
		return decimal.Zero, errors.InvalidField(FieldTimeHorizon,
			"<= "+maxHorizon.String(), horizon.String())
	}
	base := one.Add(rate)
	if base.IsZero() {
		if horizon.IsNegative() {
			return decimal.Zero, errors.InvalidField(FieldDiscountRate,
				"> -1 when time_horizon is negative", rate.String())
		}
		return decimal.Zero, nil
	}
	if base.IsNegative() && !horizon.IsInteger() {
		return decimal.Zero, errors.InvalidField(FieldDiscountRate,
			">= -1 when time_horizon is fractional", rate.String())
	}
	factor, err := base.PowWithPrecision(horizon, powPrecision)
	if err != nil {
		return decimal.Zero, errors.Internal("growth factor", err)
	}
	return factor.Round(powPrecision), nil
}

// CoefficientOfVariation returns stddev / expected × 100.
// It is 0 when either term is 0.
func CoefficientOfVariation(stddev, expected decimal.Decimal) decimal.Decimal {
	if stddev.IsZero() || expected.IsZero() {
		return decimal.Zero
	}
	return stddev.Div(expected).Mul(hundred).Abs()
}
