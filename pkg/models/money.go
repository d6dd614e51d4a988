package models

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Amounts are stored as integer paise.
const paiseExponent = -2

// FormatAmount renders paise as rupees, e.g. 120050 -> "₹1200.50".
func FormatAmount(paise int64) string {
	return "₹" + decimal.New(paise, paiseExponent).StringFixed(2)
}

// ParseAmount converts a rupee string such as "1200.50" into paise.
// More than two decimal places is rejected rather than rounded.
func ParseAmount(rupees string) (int64, error) {
	d, err := decimal.NewFromString(rupees)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", rupees, err)
	}
	paise := d.Shift(-paiseExponent)
	if !paise.Equal(paise.Truncate(0)) {
		return 0, fmt.Errorf("invalid amount %q: more than two decimal places", rupees)
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("invalid amount %q: must not be negative", rupees)
	}
	return paise.IntPart(), nil
}

// Rupees converts paise to a float for metrics.
func Rupees(paise int64) float64 {
	f, _ := decimal.New(paise, paiseExponent).Float64()
	return f
}
