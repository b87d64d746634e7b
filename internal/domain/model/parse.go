package model

import (
	"math"
	"strconv"
	"strings"
)

// ParseNumber strictly parses trimmed user input. Empty, partial ("12abc")
// and non-finite input report ok=false.
func ParseNumber(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// ParseScore returns the raw score for input, 0 when it does not parse.
func ParseScore(raw string) float64 {
	v, _ := ParseNumber(raw)
	return v
}

// ParseWeight returns the weight for input. Blank and unparseable input both
// yield nil (unset).
func ParseWeight(raw string) *float64 {
	v, ok := ParseNumber(raw)
	if !ok {
		return nil
	}
	return Weight(v)
}

// Round2 rounds to two decimal places, halves away from zero.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
