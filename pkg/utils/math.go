package utils

import "math"

// Clamp limits v to the [lo, hi] range.
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Round1 rounds v to one decimal place. Scores are carried with a single
// decimal everywhere so equal ratings compare equal.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}
