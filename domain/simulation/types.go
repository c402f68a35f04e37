package simulation

import (
	"time"

	"doorsim/domain/core"
	"doorsim/domain/game"
	"doorsim/domain/stats"
)

// RunState tracks the lifecycle of a batch run.
// Transitions: Idle -> Running -> {Completed | Stopped | Failed} -> Idle.
type RunState string

const (
	StateIdle      RunState = "idle"
	StateRunning   RunState = "running"
	StateCompleted RunState = "completed"
	StateStopped   RunState = "stopped"
	StateFailed    RunState = "failed"
)

// Terminal reports whether the state ends a run
func (s RunState) Terminal() bool {
	return s == StateCompleted || s == StateStopped || s == StateFailed
}

// String returns the string representation
func (s RunState) String() string { return string(s) }

// WinRatePoint is one sample of the running win rate after a trial.
// GameNumber is strictly increasing starting at 1 within a batch and
// WinRate is always CumulativeWins / GameNumber.
type WinRatePoint struct {
	GameNumber     int     `json:"game_number"`
	WinRate        float64 `json:"win_rate"`
	CumulativeWins int     `json:"cumulative_wins"`
}

// StrategyBatch accumulates the outcome of all trials played under a single
// strategy during one run. It is owned by exactly one run, mutated only by
// the aggregator while that run is active, and immutable afterwards.
type StrategyBatch struct {
	Strategy       game.Strategy  `json:"strategy"`
	Played         int            `json:"played"`
	Won            int            `json:"won"`
	Trials         []game.Trial   `json:"trials"`
	WinRateHistory []WinRatePoint `json:"win_rate_history"`
}

// NewStrategyBatch creates an empty batch for the strategy with capacity for
// the expected number of trials
func NewStrategyBatch(strategy game.Strategy, expected int) *StrategyBatch {
	if expected < 0 {
		expected = 0
	}
	return &StrategyBatch{
		Strategy:       strategy,
		Trials:         make([]game.Trial, 0, expected),
		WinRateHistory: make([]WinRatePoint, 0, expected),
	}
}

// ObservedWinRate returns Won/Played, or 0 for an empty batch
func (b *StrategyBatch) ObservedWinRate() float64 {
	if b.Played == 0 {
		return 0
	}
	return float64(b.Won) / float64(b.Played)
}

// ConvergencePoint is one sample of the deviation from the theoretical win
// rate, tagged with its strategy so a consumer can chart all strategies from
// one flat series in generation order.
type ConvergencePoint struct {
	Strategy   game.Strategy `json:"strategy"`
	GameNumber int           `json:"game_number"`
	WinRate    float64       `json:"win_rate"`
	Deviation  float64       `json:"deviation"`
}

// Progress reports chunk completion within a run. Delivered synchronously on
// the runner's goroutine after every chunk.
type Progress struct {
	Completed  int           `json:"completed"`
	Total      int           `json:"total"`
	Percentage float64       `json:"percentage"`
	Strategy   game.Strategy `json:"strategy"`
}

// SimulationResult is the complete outcome of one batch run. Statistics is
// nil until a caller computes it with the statistics engine; the runner never
// populates it.
type SimulationResult struct {
	RunID             core.RunID                             `json:"run_id"`
	Seed              int64                                  `json:"seed"`
	TotalGames        int                                    `json:"total_games"`
	Strategies        []game.Strategy                        `json:"strategies"`
	PerStrategy       map[game.Strategy]*StrategyBatch       `json:"per_strategy"`
	ConvergenceSeries []ConvergencePoint                     `json:"convergence_series"`
	StartTime         core.Timestamp                         `json:"start_time"`
	EndTime           core.Timestamp                         `json:"end_time"`
	Duration          time.Duration                          `json:"duration_ns"`
	State             RunState                               `json:"state"`
	Statistics        map[game.Strategy]*stats.StrategyStats `json:"statistics,omitempty"`
}

// NewSimulationResult creates a result shell for a starting run
func NewSimulationResult(runID core.RunID, seed int64, strategies []game.Strategy, perStrategyGames int) *SimulationResult {
	perStrategy := make(map[game.Strategy]*StrategyBatch, len(strategies))
	for _, s := range strategies {
		perStrategy[s] = NewStrategyBatch(s, perStrategyGames)
	}
	return &SimulationResult{
		RunID:       runID,
		Seed:        seed,
		Strategies:  strategies,
		PerStrategy: perStrategy,
		StartTime:   core.Now(),
		State:       StateRunning,
	}
}

// TotalPlayed sums the played counts across all strategy batches
func (r *SimulationResult) TotalPlayed() int {
	total := 0
	for _, batch := range r.PerStrategy {
		total += batch.Played
	}
	return total
}

// Finish seals the result with its terminal state and timing
func (r *SimulationResult) Finish(state RunState) {
	r.State = state
	r.EndTime = core.Now()
	r.Duration = r.EndTime.Sub(r.StartTime)
	r.TotalGames = r.TotalPlayed()
}
