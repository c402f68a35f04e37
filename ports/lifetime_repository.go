package ports

import (
	"context"

	"doorsim/domain/game"
	"doorsim/domain/simulation"
)

// LifetimeRepository persists cumulative per-strategy totals across
// sessions. It sits outside the run path: the core never reads it during a
// simulation, and a run's own result is complete without it.
type LifetimeRepository interface {
	// Record folds one finished batch into the lifetime totals for a strategy
	Record(ctx context.Context, strategy game.Strategy, played, won int) error

	// Totals returns the lifetime totals per strategy
	Totals(ctx context.Context) (map[game.Strategy]simulation.LifetimeTotals, error)

	// Reset clears all lifetime totals
	Reset(ctx context.Context) error
}
