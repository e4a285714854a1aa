package kener

import (
	"math"
	"strconv"
)

// ParseUptime formats an availability ratio for display.
//
//	no samples        -> "-"
//	fully down        -> "0"
//	fully up          -> integer percent, no decimals
//	anything between  -> percent with exactly four decimals
func ParseUptime(numerator, denominator float64) string {
	switch {
	case denominator == 0:
		return "-"
	case numerator == 0:
		return "0"
	case numerator == denominator:
		return strconv.FormatFloat(numerator/denominator*100, 'f', 0, 64)
	default:
		return strconv.FormatFloat(numerator/denominator*100, 'f', 4, 64)
	}
}

// ParsePercentage formats an already-computed percentage the same way
// ParseUptime formats a ratio.
func ParsePercentage(p float64) string {
	switch {
	case math.IsNaN(p):
		return "-"
	case p == 0:
		return "0"
	case p == 100:
		return "100"
	default:
		return strconv.FormatFloat(p, 'f', 4, 64)
	}
}
