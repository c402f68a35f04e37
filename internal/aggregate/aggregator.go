package aggregate

import (
	"doorsim/domain/game"
	"doorsim/domain/simulation"
)

// Aggregator folds generated trials into a strategy batch and keeps the
// running win-rate series in step with the counts. It must see every trial
// exactly once, in generation order; the batch totals are then always
// reproducible by replaying the stored trials.
type Aggregator struct{}

// NewAggregator creates an aggregator
func NewAggregator() *Aggregator {
	return &Aggregator{}
}

// RecordTrial appends the trial to the batch, updates the cumulative counts
// and appends the win-rate point for the new game number
func (a *Aggregator) RecordTrial(batch *simulation.StrategyBatch, t game.Trial) {
	batch.Trials = append(batch.Trials, t)
	batch.Played++
	if t.Won {
		batch.Won++
	}
	batch.WinRateHistory = append(batch.WinRateHistory, simulation.WinRatePoint{
		GameNumber:     batch.Played,
		WinRate:        float64(batch.Won) / float64(batch.Played),
		CumulativeWins: batch.Won,
	})
}

// Replay recomputes played/won from the stored trial sequence. Used by
// consistency checks to confirm the batch totals match the trials.
func (a *Aggregator) Replay(batch *simulation.StrategyBatch) (played, won int) {
	for _, t := range batch.Trials {
		played++
		if t.Won {
			won++
		}
	}
	return played, won
}
