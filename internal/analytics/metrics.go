package analytics

import "math"

// All calculators here are zero-safe: a zero denominator yields 0, never
// NaN or Inf. That property is what lets the report builders run over an
// empty window without special-casing.

// Efficiency is actual vs estimated hours as a percentage. Below 80 the
// work came in under estimate, 80 to 120 inclusive counts as
// well-estimated, above 120 the estimate was blown.
func Efficiency(actualHours, estimatedHours float64) float64 {
	if estimatedHours == 0 {
		return 0
	}
	return actualHours / estimatedHours * 100
}

// Productivity is completed tasks per hour worked.
func Productivity(completedTasks int, totalHours float64) float64 {
	if totalHours == 0 {
		return 0
	}
	return float64(completedTasks) / totalHours
}

// CompletionRate is completed vs total tasks as a percentage.
func CompletionRate(completed, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(completed) / float64(total) * 100
}

// Consistency scores how evenly hours were spread across days, 0 (erratic)
// to 100 (uniform): 100 minus the coefficient of variation of the daily
// series, floored at 0. A single day carries no variability evidence and
// scores 100; an empty series scores 0.
func Consistency(dailyHours []float64) float64 {
	if len(dailyHours) == 0 {
		return 0
	}
	if len(dailyHours) == 1 {
		return 100
	}
	m := mean(dailyHours)
	if m == 0 {
		return 0
	}
	cv := stddev(dailyHours) / m * 100
	return math.Max(0, 100-cv)
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// stddev is the population standard deviation (divide by n, not n-1).
func stddev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	m := mean(xs)
	var sq float64
	for _, x := range xs {
		d := x - m
		sq += d * d
	}
	return math.Sqrt(sq / float64(len(xs)))
}

// Round2 rounds to two decimal places. Applied only when assembling final
// report rows so intermediate sums keep full precision.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Tone labels a qualitative insight.
type Tone string

const (
	TonePositive Tone = "positive"
	ToneNeutral  Tone = "neutral"
	ToneNegative Tone = "negative"
)

// scoreTone bands a 0-100 score: 80 and up positive, 60 and up neutral,
// anything lower negative.
func scoreTone(score float64) Tone {
	switch {
	case score >= 80:
		return TonePositive
	case score >= 60:
		return ToneNeutral
	default:
		return ToneNegative
	}
}

// EfficiencyBand is the descriptive label for an efficiency percentage.
// Both band boundaries are inclusive on the well-estimated side.
func EfficiencyBand(e float64) string {
	switch {
	case e < 80:
		return "under-estimated"
	case e <= 120:
		return "well-estimated"
	default:
		return "over-estimated"
	}
}
