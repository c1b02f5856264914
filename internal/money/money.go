// Package money converts between user-entered decimal amounts and the int64
// minor units used everywhere else.
//
// Conversion is exact: an amount with more decimal places than its currency
// allows is rejected rather than rounded.
package money

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrTooPrecise      = errors.New("amount has more decimal places than the currency allows")
	ErrInvalidCurrency = errors.New("currency must be a three-letter ISO 4217 code")
)

// DefaultCurrency is used when neither the request nor the group names one.
const DefaultCurrency = "INR"

// MaxMinor is the largest amount, in minor units, accepted for a single
// expense or settlement. It leaves enough headroom that a group's history
// can be summed in int64.
const MaxMinor int64 = 1_000_000_000_000_000

// exponents lists currencies whose minor unit is not 1/100.
var exponents = map[string]int32{
	"BHD": 3, "IQD": 3, "JOD": 3, "KWD": 3, "LYD": 3, "OMR": 3, "TND": 3,
	"BIF": 0, "CLP": 0, "DJF": 0, "GNF": 0, "ISK": 0, "JPY": 0, "KMF": 0,
	"KRW": 0, "PYG": 0, "RWF": 0, "UGX": 0, "VND": 0, "VUV": 0, "XAF": 0,
	"XOF": 0, "XPF": 0,
}

var maxMinor = decimal.NewFromInt(MaxMinor)

// NormalizeCurrency upper-cases and checks an ISO 4217 code.
func NormalizeCurrency(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != 3 {
		return "", fmt.Errorf("%w: %q", ErrInvalidCurrency, code)
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return "", fmt.Errorf("%w: %q", ErrInvalidCurrency, code)
		}
	}
	return code, nil
}

// Exponent returns the number of decimal places in one major unit of currency.
func Exponent(currency string) int32 {
	if e, ok := exponents[currency]; ok {
		return e
	}
	return 2
}

// Parse reads a decimal amount. A comma is accepted as the decimal separator.
func Parse(s string) (decimal.Decimal, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return d, nil
}

// ToMinor converts a major-unit amount into minor units. The sign is kept;
// callers decide whether zero or negative values are acceptable. Amounts
// beyond MaxMinor in either direction are rejected with ErrInvalidAmount.
func ToMinor(amount decimal.Decimal, currency string) (int64, error) {
	minor := Shift(amount, currency)
	if !minor.IsInteger() {
		return 0, fmt.Errorf("%w: %s %s", ErrTooPrecise, amount, currency)
	}
	if minor.Abs().GreaterThan(maxMinor) {
		return 0, fmt.Errorf("%w: %s out of range", ErrInvalidAmount, amount)
	}
	return minor.IntPart(), nil
}

// Shift converts a major-unit amount into minor units without rounding,
// keeping any fraction of a minor unit.
func Shift(amount decimal.Decimal, currency string) decimal.Decimal {
	return amount.Shift(Exponent(currency))
}

// FromMinor converts minor units back to a major-unit decimal.
func FromMinor(minor int64, currency string) decimal.Decimal {
	return decimal.New(minor, -Exponent(currency))
}

// Format renders minor units with the currency's fixed number of decimals,
// e.g. 1250 INR -> "12.50", 1250 JPY -> "1250".
func Format(minor int64, currency string) string {
	return FromMinor(minor, currency).StringFixed(Exponent(currency))
}
