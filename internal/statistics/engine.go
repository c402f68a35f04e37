package statistics

import (
	"math"

	"doorsim/domain/core"
	"doorsim/domain/game"
	"doorsim/domain/simulation"
	"doorsim/domain/stats"
	"doorsim/internal/errors"
)

// Alpha is the significance threshold for the hypothesis test
const Alpha = 0.05

// Engine computes descriptive statistics, confidence intervals, hypothesis
// tests, sample adequacy and convergence diagnostics over a completed
// simulation result. It is a pure consumer: the result is never mutated, so
// computing twice over the same result yields identical output.
type Engine struct {
	confidenceLevel float64
}

// NewEngine creates an engine producing intervals at the given confidence
// level. Levels outside {0.90, 0.95, 0.99, 0.999} fall back to 95%.
func NewEngine(confidenceLevel float64) *Engine {
	return &Engine{confidenceLevel: confidenceLevel}
}

// Compute produces per-strategy statistics for every batch in the result.
// Fails with INSUFFICIENT_SAMPLE if any strategy batch is empty.
func (e *Engine) Compute(result *simulation.SimulationResult) (map[game.Strategy]*stats.StrategyStats, error) {
	if result == nil {
		return nil, errors.New(errors.CodeNoData, "no simulation result to analyze")
	}
	out := make(map[game.Strategy]*stats.StrategyStats, len(result.Strategies))
	for _, strategy := range result.Strategies {
		batch, ok := result.PerStrategy[strategy]
		if !ok {
			return nil, errors.WithCode(errors.CodeInvalidArgument,
				core.NewValidationError("result", "missing batch for strategy "+strategy.String()))
		}
		strategyStats, err := e.ComputeStrategy(batch)
		if err != nil {
			return nil, err
		}
		out[strategy] = strategyStats
	}
	return out, nil
}

// ComputeStrategy produces the full statistics bundle for one batch
func (e *Engine) ComputeStrategy(batch *simulation.StrategyBatch) (*stats.StrategyStats, error) {
	if batch.Played == 0 {
		return nil, errors.WithCode(errors.CodeInsufficientSample, core.ErrInsufficientSample)
	}

	theoretical := batch.Strategy.TheoreticalWinRate()
	observed := batch.ObservedWinRate()
	n := batch.Played

	descriptive := e.describe(observed, theoretical, n, batch.Won)

	interval, err := e.ConfidenceInterval(observed, n)
	if err != nil {
		return nil, err
	}

	hypothesis, err := e.HypothesisTest(observed, theoretical, n)
	if err != nil {
		return nil, err
	}

	convergence, err := e.Convergence(batch.WinRateHistory, theoretical)
	if err != nil {
		return nil, err
	}

	return &stats.StrategyStats{
		Descriptive: descriptive,
		Interval:    interval,
		Hypothesis:  hypothesis,
		Adequacy:    e.SampleAdequacy(theoretical, n),
		Convergence: convergence,
	}, nil
}

// describe compares the observed win rate against the theoretical constant
func (e *Engine) describe(observed, theoretical float64, n, wins int) stats.Descriptive {
	deviation := observed - theoretical
	return stats.Descriptive{
		SampleSize:         n,
		Wins:               wins,
		ObservedWinRate:    observed,
		TheoreticalWinRate: theoretical,
		AbsoluteDeviation:  math.Abs(deviation),
		RelativeDeviation:  deviation / theoretical,
		PercentDeviation:   deviation / theoretical * 100,
		Accuracy:           1 - math.Abs(deviation)/theoretical,
	}
}

// ConfidenceInterval builds a Wald normal-approximation interval around the
// observed proportion, clipped to [0,1]
func (e *Engine) ConfidenceInterval(observed float64, n int) (stats.ConfidenceInterval, error) {
	if n == 0 {
		return stats.ConfidenceInterval{}, errors.WithCode(errors.CodeInsufficientSample, core.ErrInsufficientSample)
	}
	z := zScoreFor(e.confidenceLevel)
	se := math.Sqrt(observed * (1 - observed) / float64(n))
	moe := z * se
	return stats.ConfidenceInterval{
		ConfidenceLevel: e.confidenceLevel,
		ZScore:          z,
		Lower:           clipProportion(observed - moe),
		Upper:           clipProportion(observed + moe),
		MarginOfError:   moe,
		StandardError:   se,
	}, nil
}

// HypothesisTest runs a two-tailed one-proportion z-test of the observed win
// rate against the theoretical probability. The null standard error uses the
// theoretical proportion, and the p-value comes from the Zelen-Severo normal
// CDF approximation.
func (e *Engine) HypothesisTest(observed, theoretical float64, n int) (stats.HypothesisTest, error) {
	if n == 0 {
		return stats.HypothesisTest{}, errors.WithCode(errors.CodeInsufficientSample, core.ErrInsufficientSample)
	}
	se := math.Sqrt(theoretical * (1 - theoretical) / float64(n))
	z := (observed - theoretical) / se
	p := twoTailedPValue(z)
	return stats.HypothesisTest{
		NullValue:  theoretical,
		Observed:   observed,
		SampleSize: n,
		ZStatistic: z,
		PValue:     p,
		Alpha:      Alpha,
		RejectNull: p < Alpha,
	}, nil
}

// SampleAdequacy classifies the sample size against the n required for 5%
// and 1% margins of error at 95% confidence
func (e *Engine) SampleAdequacy(theoretical float64, n int) stats.SampleAdequacy {
	required5 := RequiredSampleSize(theoretical, 0.05)
	required1 := RequiredSampleSize(theoretical, 0.01)

	rating := stats.AdequacyInsufficient
	switch {
	case n >= required1:
		rating = stats.AdequacyExcellent
	case n >= required5:
		rating = stats.AdequacyGood
	case n >= required5/2:
		rating = stats.AdequacyFair
	}

	return stats.SampleAdequacy{
		ActualN:            n,
		RequiredForMargin5: required5,
		RequiredForMargin1: required1,
		Rating:             rating,
	}
}

// RequiredSampleSize computes the n needed to achieve the target margin of
// error at 95% confidence for a proportion p: n = z^2 * p(1-p) / m^2
func RequiredSampleSize(p, margin float64) int {
	return int(math.Ceil(z95 * z95 * p * (1 - p) / (margin * margin)))
}
