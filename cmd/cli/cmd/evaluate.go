// Package cmd - evaluate command
package cmd

import (
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"landed-cost/core/input"
	"landed-cost/core/landed"
	"landed-cost/core/output"
	"landed-cost/internal/config"
	"landed-cost/internal/errors"
	"landed-cost/internal/logging"
)

// decimalFlag is a flag holding an exact decimal value
type decimalFlag struct {
	value decimal.Decimal
}

func (f *decimalFlag) String() string { return f.value.String() }

func (f *decimalFlag) Set(s string) error {
	v, err := input.ParseAmount(s)
	if err != nil {
		return err
	}
	f.value = v
	return nil
}

func (f *decimalFlag) Type() string { return "decimal" }

// inputFlag binds one command-line flag to one engine input field
type inputFlag struct {
	name  string
	field string
	usage string
	set   func(*landed.Input, decimal.Decimal)
	value decimalFlag
}

var inputFlags = []*inputFlag{
	{name: "fob", field: landed.FieldFOB, usage: "free-on-board value",
		set: func(in *landed.Input, v decimal.Decimal) { in.FOB = v }},
	{name: "freight", field: landed.FieldFreight, usage: "international freight",
		set: func(in *landed.Input, v decimal.Decimal) { in.Freight = v }},
	{name: "insurance", field: landed.FieldInsurance, usage: "insurance premium",
		set: func(in *landed.Input, v decimal.Decimal) { in.Insurance = v }},
	{name: "exchange-rate", field: landed.FieldExchangeRate, usage: "exchange rate (must be > 0)",
		set: func(in *landed.Input, v decimal.Decimal) { in.ExchangeRate = v }},
	{name: "duty-rate", field: landed.FieldDutyRate, usage: "ad-valorem duty rate as a fraction",
		set: func(in *landed.Input, v decimal.Decimal) { in.DutyRate = v }},
	{name: "tax-rate", field: landed.FieldTaxRate, usage: "general tax rate as a fraction",
		set: func(in *landed.Input, v decimal.Decimal) { in.TaxRate = v }},
	{name: "customs-charges", field: landed.FieldCustomsCharges, usage: "customs charges",
		set: func(in *landed.Input, v decimal.Decimal) { in.CustomsCharges = v }},
	{name: "customs-intermediation", field: landed.FieldCustomsIntermediation, usage: "customs broker fee",
		set: func(in *landed.Input, v decimal.Decimal) { in.Operative.CustomsIntermediation = v }},
	{name: "storage-per-day", field: landed.FieldStoragePerDay, usage: "storage cost per day",
		set: func(in *landed.Input, v decimal.Decimal) { in.Operative.StoragePerDay = v }},
	{name: "storage-days", field: landed.FieldStorageDays, usage: "days in storage",
		set: func(in *landed.Input, v decimal.Decimal) { in.Operative.StorageDays = v }},
	{name: "local-distribution", field: landed.FieldLocalDistribution, usage: "local distribution cost",
		set: func(in *landed.Input, v decimal.Decimal) { in.Operative.LocalDistribution = v }},
	{name: "interest-rate", field: landed.FieldInterestRate, usage: "financing interest rate per period",
		set: func(in *landed.Input, v decimal.Decimal) { in.Operative.InterestRate = v }},
	{name: "financing-period", field: landed.FieldFinancingPeriod, usage: "financing periods",
		set: func(in *landed.Input, v decimal.Decimal) { in.Operative.FinancingPeriod = v }},
	{name: "exchange-sensitivity", field: landed.FieldExchangeSensitivity, usage: "exchange sensitivity multiplier",
		set: func(in *landed.Input, v decimal.Decimal) { in.Operative.ExchangeSensitivity = v }},
	{name: "volatility", field: landed.FieldVolatility, usage: "aggregate volatility of the CTI",
		set: func(in *landed.Input, v decimal.Decimal) { in.Risk.Volatility = v }},
	{name: "cv-fob", field: landed.FieldCVFOB, usage: "coefficient of variation of FOB",
		set: func(in *landed.Input, v decimal.Decimal) { in.Risk.CV.FOB = v }},
	{name: "cv-freight", field: landed.FieldCVFreight, usage: "coefficient of variation of freight",
		set: func(in *landed.Input, v decimal.Decimal) { in.Risk.CV.Freight = v }},
	{name: "cv-insurance", field: landed.FieldCVInsurance, usage: "coefficient of variation of insurance",
		set: func(in *landed.Input, v decimal.Decimal) { in.Risk.CV.Insurance = v }},
	{name: "cv-exchange-rate", field: landed.FieldCVExchangeRate, usage: "coefficient of variation of the exchange rate",
		set: func(in *landed.Input, v decimal.Decimal) { in.Risk.CV.ExchangeRate = v }},
	{name: "cv-customs-charges", field: landed.FieldCVCustomsCharges, usage: "coefficient of variation of customs charges",
		set: func(in *landed.Input, v decimal.Decimal) { in.Risk.CV.CustomsCharges = v }},
	{name: "cv-operative", field: landed.FieldCVOperative, usage: "coefficient of variation of operative costs",
		set: func(in *landed.Input, v decimal.Decimal) { in.Risk.CV.Operative = v }},
	{name: "discount-rate", field: landed.FieldDiscountRate, usage: "growth rate per period for CTI(t)",
		set: func(in *landed.Input, v decimal.Decimal) { in.DiscountRate = v }},
	{name: "horizon", field: landed.FieldTimeHorizon, usage: "time horizon in periods",
		set: func(in *landed.Input, v decimal.Decimal) { in.TimeHorizon = v }},
}

// evaluateOptions are the non-numeric evaluate flags
type evaluateOptions struct {
	format    string
	locale    string
	currency  string
	riskModel string
}

var evalOpts evaluateOptions

// evaluateCmd represents the evaluate command
var evaluateCmd = &cobra.Command{
	Use:   "evaluate [file]",
	Short: "Evaluate the landed cost of a shipment",
	Long: `Compute the total cost of importation (CTI) of a shipment.

The shipment can be read from a JSON, YAML or HCL file, given entirely
through flags, or both. Flags override the values in the file.

Examples:
  landed-cost evaluate shipment.yaml
  landed-cost evaluate --fob 1000 --freight 100 --insurance 50 --exchange-rate 1
  landed-cost evaluate --format markdown --risk-model lognormal shipment.json
  landed-cost evaluate --duty-rate 0.15 shipment.hcl`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := ""
		if len(args) > 0 {
			path = args[0]
		}
		return runEvaluate(cmd.OutOrStdout(), path, evalOpts, cmd.Flags().Changed)
	},
}

func init() {
	for _, f := range inputFlags {
		evaluateCmd.Flags().Var(&f.value, f.name, f.usage)
	}
	evaluateCmd.Flags().StringVar(&evalOpts.riskModel, "risk-model", "", "risk model (deterministic, normal, lognormal)")
	evaluateCmd.Flags().StringVarP(&evalOpts.format, "format", "f", "", "output format (cli, json, markdown)")
	evaluateCmd.Flags().StringVar(&evalOpts.locale, "locale", "", "locale used to format numbers, e.g. es-CO")
	evaluateCmd.Flags().StringVar(&evalOpts.currency, "currency", "", "ISO 4217 currency code shown next to amounts")
}

// runEvaluate loads the shipment, applies the flags that changed and renders the report
func runEvaluate(w io.Writer, path string, opts evaluateOptions, changed func(string) bool) error {
	cfg := config.Get()
	startTime := time.Now()

	meta := output.Metadata{
		Currency: firstNonEmpty(opts.currency, cfg.Output.Currency),
		Locale:   firstNonEmpty(opts.locale, cfg.Output.Locale),
		Version:  Version,
	}

	in, err := loadShipment(path, cfg.InputDefaults(), &meta)
	if err != nil {
		return err
	}
	if opts.currency != "" {
		meta.Currency = opts.currency
	}
	for _, f := range inputFlags {
		if changed(f.name) {
			f.set(&in, f.value.value)
		}
	}
	if opts.riskModel != "" {
		in.Risk.Model = landed.RiskModel(strings.ToLower(opts.riskModel))
	}

	money, err := output.NewCurrencyFormatter(meta.Locale, meta.Currency)
	if err != nil {
		return err
	}
	formatter, err := output.NewFormatter(output.Format(firstNonEmpty(opts.format, cfg.Output.DefaultFormat)), money)
	if err != nil {
		return err
	}

	logging.Debug("evaluating shipment", zap.String("path", path), zap.String("model", in.Risk.Model.String()))

	out, adjustments, err := landed.EvaluateWithAdjustments(in)
	if err != nil {
		return err
	}
	for _, adj := range adjustments {
		logging.Warn("input adjusted",
			zap.String("field", adj.Field),
			zap.String("original", adj.Original.String()),
			zap.String("applied", adj.Applied.String()),
		)
	}

	meta.Timestamp = time.Now().Format(time.RFC3339)
	meta.Duration = time.Since(startTime).String()

	return formatter.Render(w, &output.Report{
		Output:      out,
		Adjustments: adjustments,
		Metadata:    meta,
	})
}

// loadShipment reads path when given; otherwise it starts from the defaults
func loadShipment(path string, def input.Defaults, meta *output.Metadata) (landed.Input, error) {
	if path == "" {
		in := landed.Input{Risk: landed.RiskParameters{Model: def.RiskModel}}
		in.Operative.ExchangeSensitivity = def.ExchangeSensitivity
		return in, nil
	}

	doc, err := input.LoadFile(path)
	if err != nil {
		return landed.Input{}, errors.Wrapf(errors.TypeInput, err, "load shipment %s", path)
	}
	if doc.Currency != "" {
		meta.Currency = doc.Currency
	}
	if hash, err := input.Hash(doc); err == nil {
		meta.InputHash = hash
	}
	return doc.ToInput(def)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
