// Package money parses and formats Ugandan shilling amounts.
package money

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Currency is the display prefix for formatted amounts.
const Currency = "UGX"

// ErrValidation is matched by every ValidationError.
var ErrValidation = errors.New("validation error")

// ValidationError describes a field whose text could not be used as an amount.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid amount %q: %s", e.Value, e.Reason)
	}
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

var currencyPrefixes = []string{"ugx", "ush"}

// ParseAmount parses amount text such as "50,000,000" or "UGX 2,000,000".
func ParseAmount(text string) (decimal.Decimal, error) {
	return ParseField("", text)
}

// ParseField is ParseAmount with the field name carried into the error.
func ParseField(field, text string) (decimal.Decimal, error) {
	s := strings.TrimSpace(text)
	lower := strings.ToLower(s)
	for _, p := range currencyPrefixes {
		if strings.HasPrefix(lower, p) {
			s = strings.TrimSpace(s[len(p):])
			break
		}
	}
	s = strings.ReplaceAll(s, ",", "")

	if s == "" {
		return decimal.Zero, &ValidationError{Field: field, Value: text, Reason: "empty"}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, &ValidationError{Field: field, Value: text, Reason: "not a number"}
	}
	if d.IsNegative() {
		return decimal.Zero, &ValidationError{Field: field, Value: text, Reason: "must not be negative"}
	}
	return d, nil
}

// ParsePositive parses a field that must be strictly greater than zero.
func ParsePositive(field, text string) (decimal.Decimal, error) {
	d, err := ParseField(field, text)
	if err != nil {
		return d, err
	}
	if !d.IsPositive() {
		return decimal.Zero, &ValidationError{Field: field, Value: text, Reason: "must be greater than zero"}
	}
	return d, nil
}

var printer = message.NewPrinter(language.English)

// Format renders an amount as "UGX 50,000,000", keeping two decimals only
// when the amount has a fractional part.
func Format(amount decimal.Decimal) string {
	sign := ""
	if amount.IsNegative() {
		sign = "-"
		amount = amount.Neg()
	}

	whole := amount.Truncate(0)
	grouped := printer.Sprintf("%d", whole.IntPart())
	if !amount.Equal(whole) {
		frac := amount.Sub(whole).StringFixed(2)
		if frac == "1.00" {
			grouped = printer.Sprintf("%d", whole.IntPart()+1)
		} else {
			grouped += strings.TrimPrefix(frac, "0")
		}
	}
	return Currency + " " + sign + grouped
}

// Percent renders a ratio as a percentage with one decimal, e.g. 2.0833 → "208.3%".
func Percent(ratio decimal.Decimal) string {
	return ratio.Mul(decimal.NewFromInt(100)).StringFixed(1) + "%"
}
