package services

import (
	"math"
	"time"
)

// priorityEpsilon bounds each denominator away from zero. Without it an
// order due exactly one day out (or a one-day processing window) would
// divide by zero.
const priorityEpsilon = 1e-9

const hoursPerDay = 24

// ScorePriority computes an order's scheduling score. The scheduler promotes
// the numerically smallest scores first.
//
// days_remaining is the whole number of days from now until the due date
// (negative for overdue orders). The critical ratio divides the remaining
// days by the processing time:
//
//	priority = 0.4/(cr+1) + 0.3/(processing+1) + 0.3/(days_remaining+1)
func ScorePriority(dueDate time.Time, processingDays int, now time.Time) float64 {
	daysRemaining := math.Floor(dueDate.Sub(now).Hours() / hoursPerDay)

	var criticalRatio float64
	if processingDays != 0 {
		criticalRatio = daysRemaining / float64(processingDays)
	}

	return 0.4/clamp(criticalRatio+1) +
		0.3/clamp(float64(processingDays)+1) +
		0.3/clamp(daysRemaining+1)
}

// clamp bounds d's magnitude away from zero, preserving its sign.
func clamp(d float64) float64 {
	if math.Abs(d) >= priorityEpsilon {
		return d
	}
	if math.Signbit(d) {
		return -priorityEpsilon
	}
	return priorityEpsilon
}
