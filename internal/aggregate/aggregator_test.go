package aggregate

import (
	"math/rand"
	"testing"

	"doorsim/domain/game"
	"doorsim/domain/simulation"
	"doorsim/internal/trial"
)

func TestRecordTrial_Counts(t *testing.T) {
	agg := NewAggregator()
	batch := simulation.NewStrategyBatch(game.StrategyStay, 4)

	trials := []game.Trial{
		{Strategy: game.StrategyStay, Won: true},
		{Strategy: game.StrategyStay, Won: false},
		{Strategy: game.StrategyStay, Won: true},
		{Strategy: game.StrategyStay, Won: true},
	}
	for _, tr := range trials {
		agg.RecordTrial(batch, tr)
	}

	if batch.Played != 4 || batch.Won != 3 {
		t.Errorf("played/won = %d/%d, want 4/3", batch.Played, batch.Won)
	}
	if len(batch.Trials) != batch.Played {
		t.Errorf("len(trials) = %d, want %d", len(batch.Trials), batch.Played)
	}

	wantRates := []float64{1, 0.5, 2.0 / 3.0, 0.75}
	for i, point := range batch.WinRateHistory {
		if point.GameNumber != i+1 {
			t.Errorf("point %d game number = %d, want %d", i, point.GameNumber, i+1)
		}
		if point.WinRate != wantRates[i] {
			t.Errorf("point %d win rate = %v, want %v", i, point.WinRate, wantRates[i])
		}
	}
}

// Replaying the stored trials must reproduce the batch totals, and the last
// history point must equal won/played.
func TestRecordTrial_ReplayProperty(t *testing.T) {
	agg := NewAggregator()
	gen := trial.NewGenerator(rand.New(rand.NewSource(99)))
	batch := simulation.NewStrategyBatch(game.StrategySwitch, 1000)

	for i := 0; i < 1000; i++ {
		tr, err := gen.GenerateWithChoice(game.StrategySwitch)
		if err != nil {
			t.Fatalf("generate failed: %v", err)
		}
		agg.RecordTrial(batch, tr)
	}

	played, won := agg.Replay(batch)
	if played != batch.Played || won != batch.Won {
		t.Errorf("replay = %d/%d, stored = %d/%d", played, won, batch.Played, batch.Won)
	}

	last := batch.WinRateHistory[len(batch.WinRateHistory)-1]
	want := float64(batch.Won) / float64(batch.Played)
	if last.WinRate != want {
		t.Errorf("final win rate = %v, want %v", last.WinRate, want)
	}
	if last.CumulativeWins != batch.Won {
		t.Errorf("final cumulative wins = %d, want %d", last.CumulativeWins, batch.Won)
	}

	// Game numbers strictly increase from 1
	for i, point := range batch.WinRateHistory {
		if point.GameNumber != i+1 {
			t.Fatalf("history not monotonic at %d: game number %d", i, point.GameNumber)
		}
	}
}
