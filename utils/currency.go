package utils

import (
	"fmt"
	"math"
	"strings"
)

// Round2 rounds a sub-amount (subtotal, tax, discount) to 2 decimals.
// All intermediate bill amounts carry 2-decimal precision on the wire.
func Round2(amount float64) float64 {
	return math.Round(amount*100) / 100
}

// RoundHalfUp rounds the payable total to the nearest whole currency
// unit, halves going up. The same rule runs for live preview and at
// checkout so the displayed and charged totals never diverge.
func RoundHalfUp(amount float64) float64 {
	return math.Floor(amount + 0.5)
}

// FormatCurrencyINR formats a float64 value as an Indian Rupee string
// using the lakh/crore digit grouping.
// Example: 1234567.50 -> "Rs 12,34,567.50"
func FormatCurrencyINR(amount float64) string {
	formatted := fmt.Sprintf("%.2f", amount)

	parts := strings.Split(formatted, ".")
	integerPart := parts[0]
	decimalPart := parts[1]

	negative := strings.HasPrefix(integerPart, "-")
	if negative {
		integerPart = integerPart[1:]
	}

	// Indian grouping: last group of 3, then groups of 2
	var groups []string
	if len(integerPart) > 3 {
		groups = append(groups, integerPart[len(integerPart)-3:])
		rest := integerPart[:len(integerPart)-3]
		for len(rest) > 2 {
			groups = append([]string{rest[len(rest)-2:]}, groups...)
			rest = rest[:len(rest)-2]
		}
		if rest != "" {
			groups = append([]string{rest}, groups...)
		}
	} else {
		groups = []string{integerPart}
	}

	result := strings.Join(groups, ",") + "." + decimalPart
	if negative {
		result = "-" + result
	}
	return "Rs " + result
}
