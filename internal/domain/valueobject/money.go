// Package valueobject contains domain value objects for the Savings Circle system.
package valueobject

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// centsPerUnit converts between major currency units and stored minor units.
var centsPerUnit = decimal.NewFromInt(100)

var maxCents = decimal.NewFromInt(math.MaxInt64)

// ParseAmount converts a decimal string such as "50.00" into minor units.
// More than two fractional digits are rejected rather than rounded, as are
// amounts whose minor units do not fit in an int64.
func ParseAmount(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("amount is required")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	cents := d.Mul(centsPerUnit)
	if !cents.IsInteger() {
		return 0, fmt.Errorf("amount %q has more than two decimal places", s)
	}
	if cents.Abs().GreaterThan(maxCents) {
		return 0, fmt.Errorf("amount %q is out of range", s)
	}
	return cents.IntPart(), nil
}

// FormatCents renders minor units as a fixed two-decimal string.
func FormatCents(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}

// IsValidCurrency reports whether code looks like an upper-case ISO 4217 code.
func IsValidCurrency(code string) bool {
	if len(code) != 3 {
		return false
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}
