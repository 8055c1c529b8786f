// Package money parses user-entered amounts and formats amounts for display.
package money

import (
	"bytes"
	"encoding/json"
	"errors"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	// ErrEmpty is returned by Parse for blank input.
	ErrEmpty = errors.New("amount is empty")
	// ErrInvalid is returned by Parse when no number can be recovered.
	ErrInvalid = errors.New("enter a valid number, for example 10.50, 10,50 or $10.50")
)

var (
	currencySymbols  = regexp.MustCompile(`(?i)[$€£]|zł|zl`)
	whitespaceRun    = regexp.MustCompile(`\s+`)
	decimalSeparator = regexp.MustCompile(`[,.](\d{1,2})(?:[^\d]|$)`)
	groupingChars    = regexp.MustCompile(`[,.\s]`)
	nonDigitOrMinus  = regexp.MustCompile(`[^\d-]`)
	nonNumeric       = regexp.MustCompile(`[^\d.-]`)
)

// Parse reads an amount written in any common notation: comma or dot
// decimals, thousands grouped by commas, dots or spaces, and a surrounding
// currency symbol. "1 234,56 zł", "$1,234.56" and "1.234,56" all parse to 1234.56.
func Parse(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Zero, ErrEmpty
	}

	d, err := decimal.NewFromString(Sanitize(s))
	if err != nil {
		return decimal.Zero, ErrInvalid
	}
	return d, nil
}

// Sanitize rewrites raw into plain dot notation. Input it cannot make sense
// of is returned unchanged.
func Sanitize(raw string) string {
	value := strings.TrimSpace(raw)
	if value == "" {
		return value
	}

	value = currencySymbols.ReplaceAllString(value, "")
	value = strings.TrimSpace(whitespaceRun.ReplaceAllString(value, " "))

	var out string
	if m := decimalSeparator.FindStringSubmatchIndex(value); m != nil {
		integer := groupingChars.ReplaceAllString(value[:m[0]], "")
		out = integer + "." + value[m[2]:m[3]]
	} else {
		out = nonDigitOrMinus.ReplaceAllString(value, "")
	}

	if strings.HasPrefix(value, "-") && !strings.HasPrefix(out, "-") {
		out = "-" + out
	}
	out = nonNumeric.ReplaceAllString(out, "")

	// Only the last dot is the decimal point.
	if parts := strings.Split(out, "."); len(parts) > 2 {
		out = strings.Join(parts[:len(parts)-1], "") + "." + parts[len(parts)-1]
	}

	switch out {
	case "", "-", ".", "-.":
		return raw
	}
	if _, err := decimal.NewFromString(out); err != nil {
		return raw
	}
	return out
}

// Amount is a decimal that unmarshals from either a JSON number or a
// free-form string run through Parse.
type Amount struct {
	decimal.Decimal
}

// UnmarshalJSON implements json.Unmarshaler.
func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		a.Decimal = decimal.Zero
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		d, err := Parse(s)
		if err != nil {
			return err
		}
		a.Decimal = d
		return nil
	}
	d, err := decimal.NewFromString(string(data))
	if err != nil {
		return ErrInvalid
	}
	a.Decimal = d
	return nil
}

// Ptr returns a pointer to the wrapped decimal, or nil for a nil Amount.
func (a *Amount) Ptr() *decimal.Decimal {
	if a == nil {
		return nil
	}
	d := a.Decimal
	return &d
}
