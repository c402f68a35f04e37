package statistics

import (
	"math"

	mstats "github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"

	"doorsim/domain/core"
	"doorsim/domain/simulation"
	"doorsim/domain/stats"
	"doorsim/internal/errors"
)

// StabilityThreshold is the deviation bound (5 percentage points from the
// theoretical rate) used for the stability window and the stable-run scan
const StabilityThreshold = 0.05

// Milestone thresholds in decreasing order of tolerance
const (
	milestone10 = 0.10
	milestone5  = 0.05
	milestone1  = 0.01
)

// Convergence diagnoses the win-rate history of one strategy batch against
// its theoretical probability: the per-point deviation series, a
// least-squares convergence rate, trailing-window stability, threshold
// milestones, and the longest stretch of points within the stability
// threshold along with the single worst point.
func (e *Engine) Convergence(history []simulation.WinRatePoint, theoretical float64) (stats.Convergence, error) {
	if len(history) == 0 {
		return stats.Convergence{}, errors.WithCode(errors.CodeInsufficientSample, core.ErrInsufficientSample)
	}

	deviations := make([]float64, len(history))
	for i, point := range history {
		deviations[i] = math.Abs(point.WinRate - theoretical)
	}

	milestones, longest, worst := scanDeviations(history, deviations)

	return stats.Convergence{
		DeviationSeries: deviations,
		ConvergenceRate: convergenceRate(deviations),
		Stability:       trailingStability(deviations),
		Milestones:      milestones,
		LongestStable:   longest,
		MaxDeviation:    worst,
	}, nil
}

// convergenceRate fits a least-squares line to (index, deviation) and
// returns the negated slope, so a shrinking deviation reads as a positive
// rate
func convergenceRate(deviations []float64) float64 {
	if len(deviations) < 2 {
		return 0
	}
	xs := make([]float64, len(deviations))
	for i := range xs {
		xs[i] = float64(i)
	}
	_, slope := stat.LinearRegression(xs, deviations, nil, false)
	return -slope
}

// trailingStability summarizes the last max(10, 10% of points) deviations
// against the fixed threshold
func trailingStability(deviations []float64) stats.Stability {
	window := len(deviations) / 10
	if window < 10 {
		window = 10
	}
	if window > len(deviations) {
		window = len(deviations)
	}
	tail := deviations[len(deviations)-window:]

	mean, _ := mstats.Mean(tail)
	max, _ := mstats.Max(tail)

	return stats.Stability{
		WindowSize:    window,
		MeanDeviation: mean,
		MaxDeviation:  max,
		Threshold:     StabilityThreshold,
		Stable:        max <= StabilityThreshold,
	}
}

// scanDeviations walks the series once, detecting the first game number at
// which each milestone threshold is reached, the longest contiguous run of
// points within the stability threshold, and the point of maximum deviation
func scanDeviations(history []simulation.WinRatePoint, deviations []float64) (stats.Milestones, stats.StableRun, stats.DeviationPoint) {
	var milestones stats.Milestones
	var longest, current stats.StableRun
	worst := stats.DeviationPoint{GameNumber: history[0].GameNumber, Deviation: deviations[0]}

	for i, d := range deviations {
		gameNumber := history[i].GameNumber

		if milestones.Within10Pct == 0 && d <= milestone10 {
			milestones.Within10Pct = gameNumber
		}
		if milestones.Within5Pct == 0 && d <= milestone5 {
			milestones.Within5Pct = gameNumber
		}
		if milestones.Within1Pct == 0 && d <= milestone1 {
			milestones.Within1Pct = gameNumber
		}

		if d <= StabilityThreshold {
			if current.Length == 0 {
				current.Start = gameNumber
			}
			current.End = gameNumber
			current.Length++
			if current.Length > longest.Length {
				longest = current
			}
		} else {
			current = stats.StableRun{}
		}

		if d > worst.Deviation {
			worst = stats.DeviationPoint{GameNumber: gameNumber, Deviation: d}
		}
	}

	return milestones, longest, worst
}
