package runner

import (
	"context"
	"testing"

	"doorsim/adapters/rng"
	"doorsim/domain/game"
	"doorsim/domain/simulation"
	"doorsim/internal/errors"
	"doorsim/internal/testkit"
	"doorsim/ports"
)

func newTestRunner(yielder ports.Yielder) *Runner {
	return New(rng.NewSeededAdapter(), yielder, nil)
}

func TestRun_Validation(t *testing.T) {
	r := newTestRunner(FastYielder)
	cases := []struct {
		name string
		req  RunRequest
	}{
		{"zero games", RunRequest{TotalGames: 0, ChunkSize: 10, Strategies: []game.Strategy{game.StrategyStay}}},
		{"negative games", RunRequest{TotalGames: -5, ChunkSize: 10, Strategies: []game.Strategy{game.StrategyStay}}},
		{"zero chunk", RunRequest{TotalGames: 10, ChunkSize: 0, Strategies: []game.Strategy{game.StrategyStay}}},
		{"no strategies", RunRequest{TotalGames: 10, ChunkSize: 10}},
		{"unknown strategy", RunRequest{TotalGames: 10, ChunkSize: 10, Strategies: []game.Strategy{"quantum"}}},
		{"duplicate strategy", RunRequest{TotalGames: 10, ChunkSize: 10, Strategies: []game.Strategy{game.StrategyStay, game.StrategyStay}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := r.Run(context.Background(), tc.req)
			if err == nil {
				t.Fatal("expected error")
			}
			if code := errors.GetCode(err); code != errors.CodeInvalidArgument {
				t.Errorf("error code = %s, want %s", code, errors.CodeInvalidArgument)
			}
			if r.State() != simulation.StateIdle {
				t.Errorf("state after rejected run = %s, want idle", r.State())
			}
		})
	}
}

func TestRun_ExactBatch(t *testing.T) {
	r := newTestRunner(FastYielder)
	var events []simulation.Progress

	result, err := r.Run(context.Background(), RunRequest{
		TotalGames: 6,
		Strategies: []game.Strategy{game.StrategyStay},
		ChunkSize:  6,
		Seed:       1,
		OnProgress: ports.ProgressFunc(func(p simulation.Progress) { events = append(events, p) }),
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	batch := result.PerStrategy[game.StrategyStay]
	if batch.Played != 6 || len(batch.Trials) != 6 {
		t.Errorf("played = %d, trials = %d, want 6", batch.Played, len(batch.Trials))
	}
	if result.TotalGames != 6 {
		t.Errorf("total games = %d, want 6", result.TotalGames)
	}
	if result.State != simulation.StateCompleted {
		t.Errorf("state = %s, want completed", result.State)
	}
	if result.Statistics != nil {
		t.Errorf("runner must not populate statistics")
	}
	if len(events) != 1 {
		t.Fatalf("progress events = %d, want 1", len(events))
	}
	if events[0].Completed != 6 || events[0].Total != 6 || events[0].Percentage != 100 {
		t.Errorf("unexpected progress event: %+v", events[0])
	}
	for _, tr := range batch.Trials {
		if err := tr.Validate(); err != nil {
			t.Fatalf("invalid trial in batch: %v", err)
		}
	}
}

func TestRun_RemainderGamesDropped(t *testing.T) {
	r := newTestRunner(FastYielder)
	result, err := r.Run(context.Background(), RunRequest{
		TotalGames: 7,
		Strategies: game.AllStrategies(),
		ChunkSize:  10,
		Seed:       1,
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	// 7 games across 2 strategies floors to 3 each; the 7th is dropped.
	for _, strategy := range game.AllStrategies() {
		if got := result.PerStrategy[strategy].Played; got != 3 {
			t.Errorf("%s played = %d, want 3", strategy, got)
		}
	}
	if result.TotalGames != 6 {
		t.Errorf("total games = %d, want 6", result.TotalGames)
	}
}

func TestRun_ChunkingAndYields(t *testing.T) {
	yielder := &testkit.CountingYielder{}
	r := newTestRunner(yielder)
	var events []simulation.Progress

	result, err := r.Run(context.Background(), RunRequest{
		TotalGames: 25,
		Strategies: []game.Strategy{game.StrategySwitch},
		ChunkSize:  10,
		Seed:       3,
		OnProgress: ports.ProgressFunc(func(p simulation.Progress) { events = append(events, p) }),
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.PerStrategy[game.StrategySwitch].Played != 25 {
		t.Errorf("played = %d, want 25", result.PerStrategy[game.StrategySwitch].Played)
	}
	// Chunks of 10, 10, 5: one progress event and one yield per chunk.
	if len(events) != 3 {
		t.Fatalf("progress events = %d, want 3", len(events))
	}
	if yielder.Count != 3 {
		t.Errorf("yields = %d, want 3", yielder.Count)
	}
	wantCompleted := []int{10, 20, 25}
	for i, event := range events {
		if event.Completed != wantCompleted[i] {
			t.Errorf("event %d completed = %d, want %d", i, event.Completed, wantCompleted[i])
		}
	}
}

func TestRun_StopAfterFirstChunk(t *testing.T) {
	r := newTestRunner(FastYielder)
	events := 0

	result, err := r.Run(context.Background(), RunRequest{
		TotalGames: 100,
		Strategies: []game.Strategy{game.StrategyStay},
		ChunkSize:  10,
		Seed:       1,
		OnProgress: ports.ProgressFunc(func(p simulation.Progress) {
			events++
			if events == 1 {
				r.Stop()
			}
		}),
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.State != simulation.StateStopped {
		t.Errorf("state = %s, want stopped", result.State)
	}
	if r.State() != simulation.StateStopped {
		t.Errorf("runner state = %s, want stopped", r.State())
	}
	// The chunk in flight completed; nothing after the boundary ran.
	batch := result.PerStrategy[game.StrategyStay]
	if batch.Played != 10 {
		t.Errorf("played = %d, want 10", batch.Played)
	}
	if got, want := len(batch.WinRateHistory), batch.Played; got != want {
		t.Errorf("history length = %d, want %d", got, want)
	}
}

func TestRun_ContextCancelStops(t *testing.T) {
	r := newTestRunner(FastYielder)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := r.Run(ctx, RunRequest{
		TotalGames: 100,
		Strategies: []game.Strategy{game.StrategyStay},
		ChunkSize:  10,
		Seed:       1,
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.State != simulation.StateStopped {
		t.Errorf("state = %s, want stopped", result.State)
	}
	if result.PerStrategy[game.StrategyStay].Played != 10 {
		t.Errorf("played = %d, want 10 (first chunk always completes)", result.PerStrategy[game.StrategyStay].Played)
	}
}

func TestRun_AlreadyRunning(t *testing.T) {
	r := newTestRunner(FastYielder)
	var nestedErr error

	_, err := r.Run(context.Background(), RunRequest{
		TotalGames: 10,
		Strategies: []game.Strategy{game.StrategyStay},
		ChunkSize:  5,
		Seed:       1,
		OnProgress: ports.ProgressFunc(func(p simulation.Progress) {
			if nestedErr == nil {
				_, nestedErr = r.Run(context.Background(), RunRequest{
					TotalGames: 10,
					Strategies: []game.Strategy{game.StrategyStay},
					ChunkSize:  5,
				})
			}
		}),
	})
	if err != nil {
		t.Fatalf("outer run failed: %v", err)
	}
	if nestedErr == nil {
		t.Fatal("nested run should have been rejected")
	}
	if code := errors.GetCode(nestedErr); code != errors.CodeAlreadyRunning {
		t.Errorf("nested error code = %s, want %s", code, errors.CodeAlreadyRunning)
	}
}

func TestRun_SeedReproducibility(t *testing.T) {
	run := func() *simulation.SimulationResult {
		r := newTestRunner(FastYielder)
		result, err := r.Run(context.Background(), RunRequest{
			RunID:      "fixed-run",
			TotalGames: 200,
			Strategies: game.AllStrategies(),
			ChunkSize:  50,
			Seed:       12345,
		})
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		return result
	}

	first, second := run(), run()
	for _, strategy := range game.AllStrategies() {
		a, b := first.PerStrategy[strategy], second.PerStrategy[strategy]
		if a.Won != b.Won || a.Played != b.Played {
			t.Fatalf("%s not reproducible: %d/%d vs %d/%d", strategy, a.Won, a.Played, b.Won, b.Played)
		}
		for i := range a.Trials {
			if a.Trials[i] != b.Trials[i] {
				t.Fatalf("%s trial %d differs between seeded runs", strategy, i)
			}
		}
	}
}

func TestReset(t *testing.T) {
	r := newTestRunner(FastYielder)
	_, err := r.Run(context.Background(), RunRequest{
		TotalGames: 10,
		Strategies: []game.Strategy{game.StrategyStay},
		ChunkSize:  10,
		Seed:       1,
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if r.Result() == nil {
		t.Fatal("expected result after completed run")
	}
	if err := r.Reset(); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	if r.State() != simulation.StateIdle {
		t.Errorf("state after reset = %s, want idle", r.State())
	}
	if r.Result() != nil {
		t.Errorf("result should be discarded on reset")
	}
}

func TestRun_ConvergenceSeries(t *testing.T) {
	r := newTestRunner(FastYielder)
	result, err := r.Run(context.Background(), RunRequest{
		TotalGames: 40,
		Strategies: game.AllStrategies(),
		ChunkSize:  10,
		Seed:       5,
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(result.ConvergenceSeries) != 40 {
		t.Fatalf("convergence series length = %d, want 40", len(result.ConvergenceSeries))
	}
	for _, point := range result.ConvergenceSeries {
		theoretical := point.Strategy.TheoreticalWinRate()
		want := point.WinRate - theoretical
		if want < 0 {
			want = -want
		}
		if point.Deviation != want {
			t.Fatalf("deviation mismatch at game %d: %v vs %v", point.GameNumber, point.Deviation, want)
		}
	}
}
