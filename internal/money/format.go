package money

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Formatter renders amounts for one currency and locale pair.
type Formatter struct {
	unit    currency.Unit
	printer *message.Printer
	symbol  string
}

// NewFormatter builds a Formatter. The locale accepts both en_US and en-US forms.
func NewFormatter(currencyCode, locale string) (*Formatter, error) {
	unit, err := currency.ParseISO(strings.ToUpper(currencyCode))
	if err != nil {
		return nil, fmt.Errorf("unknown currency %q: %w", currencyCode, err)
	}
	tag, err := ParseLocale(locale)
	if err != nil {
		return nil, err
	}
	p := message.NewPrinter(tag)
	return &Formatter{
		unit:    unit,
		printer: p,
		symbol:  p.Sprint(currency.Symbol(unit)),
	}, nil
}

// Format renders amount with the currency symbol and locale grouping, for
// example "$1,234.50" or "-$5.00".
func (f *Formatter) Format(amount decimal.Decimal) string {
	sign := ""
	if amount.IsNegative() {
		sign = "-"
		amount = amount.Abs()
	}
	return sign + f.symbol + f.FormatNumber(amount)
}

// FormatNumber renders amount without any currency symbol.
func (f *Formatter) FormatNumber(amount decimal.Decimal) string {
	return f.printer.Sprintf("%.2f", amount.Round(2).InexactFloat64())
}

// Currency returns the ISO code the formatter was built for.
func (f *Formatter) Currency() string {
	return f.unit.String()
}

// Symbol returns the display symbol for the formatter's currency.
func (f *Formatter) Symbol() string {
	return f.symbol
}

// ParseLocale parses a POSIX-style (en_US) or BCP 47 (en-US) locale.
func ParseLocale(locale string) (language.Tag, error) {
	tag, err := language.Parse(strings.ReplaceAll(locale, "_", "-"))
	if err != nil {
		return language.Und, fmt.Errorf("unknown locale %q: %w", locale, err)
	}
	return tag, nil
}

// ValidCurrency reports whether code is an ISO 4217 currency code.
func ValidCurrency(code string) bool {
	if len(code) != 3 {
		return false
	}
	_, err := currency.ParseISO(code)
	return err == nil
}

// ValidLocale reports whether locale parses as a language tag.
func ValidLocale(locale string) bool {
	if locale == "" {
		return false
	}
	_, err := ParseLocale(locale)
	return err == nil
}
