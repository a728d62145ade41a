package output

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"landed-cost/internal/errors"
)

// CurrencyFormatter renders amounts as locale-aware currency strings
type CurrencyFormatter struct {
	printer *message.Printer
	unit    currency.Unit
	locale  language.Tag
}

// NewCurrencyFormatter creates a formatter for a BCP 47 locale and an ISO
// 4217 currency code
func NewCurrencyFormatter(locale, code string) (*CurrencyFormatter, error) {
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, errors.Wrapf(errors.TypeInput, err, "invalid locale %q", locale)
	}
	unit, err := currency.ParseISO(strings.ToUpper(code))
	if err != nil {
		return nil, errors.Wrapf(errors.TypeInput, err, "invalid currency %q", code)
	}
	return &CurrencyFormatter{
		printer: message.NewPrinter(tag),
		unit:    unit,
		locale:  tag,
	}, nil
}

// Money formats v with the currency symbol and the currency's standard
// number of decimals
func (f *CurrencyFormatter) Money(v decimal.Decimal) string {
	scale, _ := currency.Standard.Rounding(f.unit)
	symbol := f.printer.Sprint(currency.Symbol(f.unit))
	amount := f.printer.Sprint(number.Decimal(v.InexactFloat64(), number.Scale(scale)))
	return symbol + " " + amount
}

// Percent formats v (already scaled to 0-100) with the given decimals
func (f *CurrencyFormatter) Percent(v decimal.Decimal, decimals int) string {
	return f.printer.Sprint(number.Decimal(v.InexactFloat64(), number.Scale(decimals))) + "%"
}

// Currency returns the ISO code
func (f *CurrencyFormatter) Currency() string {
	return f.unit.String()
}

// Locale returns the locale tag
func (f *CurrencyFormatter) Locale() string {
	return f.locale.String()
}
