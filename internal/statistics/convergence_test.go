package statistics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"doorsim/domain/simulation"
	"doorsim/internal/errors"
)

// historyFromRates builds a win-rate history whose points deviate from the
// theoretical value by exactly the given offsets
func historyFromRates(theoretical float64, offsets []float64) []simulation.WinRatePoint {
	history := make([]simulation.WinRatePoint, len(offsets))
	for i, offset := range offsets {
		history[i] = simulation.WinRatePoint{
			GameNumber: i + 1,
			WinRate:    theoretical + offset,
		}
	}
	return history
}

func TestConvergence_Empty(t *testing.T) {
	engine := NewEngine(0.95)
	_, err := engine.Convergence(nil, 0.5)
	require.Error(t, err)
	assert.Equal(t, errors.CodeInsufficientSample, errors.GetCode(err))
}

func TestConvergence_Milestones(t *testing.T) {
	engine := NewEngine(0.95)
	// Deviations: 0.30, 0.20, 0.09, 0.04, 0.009, 0.002
	history := historyFromRates(0.5, []float64{0.30, -0.20, 0.09, -0.04, 0.009, -0.002})

	report, err := engine.Convergence(history, 0.5)
	require.NoError(t, err)

	assert.Equal(t, 3, report.Milestones.Within10Pct)
	assert.Equal(t, 4, report.Milestones.Within5Pct)
	assert.Equal(t, 5, report.Milestones.Within1Pct)
}

func TestConvergence_MilestonesNeverReached(t *testing.T) {
	engine := NewEngine(0.95)
	history := historyFromRates(0.5, []float64{0.30, 0.25, 0.20})

	report, err := engine.Convergence(history, 0.5)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Milestones.Within10Pct)
	assert.Equal(t, 0, report.Milestones.Within5Pct)
	assert.Equal(t, 0, report.Milestones.Within1Pct)
}

func TestConvergence_LongestStableRunAndWorstPoint(t *testing.T) {
	engine := NewEngine(0.95)
	// In threshold (<=0.05): games 2,3 then games 5,6,7. Worst point game 4.
	history := historyFromRates(0.5, []float64{0.20, 0.04, 0.03, -0.35, 0.02, 0.01, 0.04})

	report, err := engine.Convergence(history, 0.5)
	require.NoError(t, err)

	assert.Equal(t, 5, report.LongestStable.Start)
	assert.Equal(t, 7, report.LongestStable.End)
	assert.Equal(t, 3, report.LongestStable.Length)

	assert.Equal(t, 4, report.MaxDeviation.GameNumber)
	assert.InDelta(t, 0.35, report.MaxDeviation.Deviation, 1e-9)
}

func TestConvergence_DeviationSeries(t *testing.T) {
	engine := NewEngine(0.95)
	history := historyFromRates(1.0/3.0, []float64{0.1, -0.1, 0.05})

	report, err := engine.Convergence(history, 1.0/3.0)
	require.NoError(t, err)
	require.Len(t, report.DeviationSeries, 3)
	assert.InDelta(t, 0.1, report.DeviationSeries[0], 1e-9)
	assert.InDelta(t, 0.1, report.DeviationSeries[1], 1e-9)
	assert.InDelta(t, 0.05, report.DeviationSeries[2], 1e-9)
}

func TestConvergence_RateSign(t *testing.T) {
	engine := NewEngine(0.95)

	// Steadily shrinking deviation: positive convergence rate.
	shrinking := make([]float64, 50)
	for i := range shrinking {
		shrinking[i] = 0.5 - float64(i)*0.01
	}
	report, err := engine.Convergence(historyFromRates(0.5, shrinking), 0.5)
	require.NoError(t, err)
	assert.Greater(t, report.ConvergenceRate, 0.0)

	// Steadily growing deviation: negative rate.
	growing := make([]float64, 50)
	for i := range growing {
		growing[i] = float64(i) * 0.01
	}
	report, err = engine.Convergence(historyFromRates(0.5, growing), 0.5)
	require.NoError(t, err)
	assert.Less(t, report.ConvergenceRate, 0.0)

	// A single point has no slope to fit.
	report, err = engine.Convergence(historyFromRates(0.5, []float64{0.1}), 0.5)
	require.NoError(t, err)
	assert.Equal(t, 0.0, report.ConvergenceRate)
}

func TestConvergence_StabilityWindow(t *testing.T) {
	engine := NewEngine(0.95)

	// 200 points: window is max(10, 20) = 20. The last 20 points are all
	// inside the threshold even though earlier ones are far outside.
	offsets := make([]float64, 200)
	for i := range offsets {
		if i < 180 {
			offsets[i] = 0.3
		} else {
			offsets[i] = 0.01
		}
	}
	report, err := engine.Convergence(historyFromRates(0.5, offsets), 0.5)
	require.NoError(t, err)
	assert.Equal(t, 20, report.Stability.WindowSize)
	assert.True(t, report.Stability.Stable)
	assert.InDelta(t, 0.01, report.Stability.MeanDeviation, 1e-9)
	assert.InDelta(t, 0.01, report.Stability.MaxDeviation, 1e-9)
	assert.Equal(t, StabilityThreshold, report.Stability.Threshold)

	// Fewer points than the minimum window: the window is the whole series.
	report, err = engine.Convergence(historyFromRates(0.5, []float64{0.2, 0.01, 0.3}), 0.5)
	require.NoError(t, err)
	assert.Equal(t, 3, report.Stability.WindowSize)
	assert.False(t, report.Stability.Stable)

	// A short series just inside the threshold counts as stable.
	report, err = engine.Convergence(historyFromRates(0.5, []float64{0.04, 0.04}), 0.5)
	require.NoError(t, err)
	assert.True(t, report.Stability.Stable)
}
