package opp

import "math"

// Score returns the priority score for the given impact and complexity,
// both expected in [0,10]. Higher impact and lower complexity both raise
// the score; the two inputs weigh equally. The result is rounded to one
// decimal and lies in [0,10].
func Score(impact, complexity float64) float64 {
	return round1((impact + (10 - complexity)) / 2)
}

// round1 rounds to one decimal place, the precision of every numeric column.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
