package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"doorsim/domain/core"
	"doorsim/domain/game"
	"doorsim/domain/simulation"
	"doorsim/ports"
)

// lifetimeRepository implements ports.LifetimeRepository on Postgres
type lifetimeRepository struct {
	db *sqlx.DB
}

// NewLifetimeRepository creates a lifetime stats repository
func NewLifetimeRepository(db *sqlx.DB) ports.LifetimeRepository {
	return &lifetimeRepository{db: db}
}

// Migrate creates the lifetime stats table when missing
func Migrate(ctx context.Context, db *sqlx.DB) error {
	query := `CREATE TABLE IF NOT EXISTS lifetime_stats (
		strategy   TEXT PRIMARY KEY,
		played     BIGINT NOT NULL DEFAULT 0,
		won        BIGINT NOT NULL DEFAULT 0,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`
	if _, err := db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to migrate lifetime_stats: %w", err)
	}
	return nil
}

// Record folds one finished batch into the lifetime totals for a strategy
func (r *lifetimeRepository) Record(ctx context.Context, strategy game.Strategy, played, won int) error {
	if !strategy.Valid() {
		return core.NewValidationError("strategy", strategy.String())
	}
	if played < 0 || won < 0 || won > played {
		return core.NewValidationError("lifetime_stats", "counts out of range")
	}

	query := `INSERT INTO lifetime_stats (strategy, played, won, updated_at)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (strategy) DO UPDATE SET
		played = lifetime_stats.played + EXCLUDED.played,
		won = lifetime_stats.won + EXCLUDED.won,
		updated_at = EXCLUDED.updated_at`

	_, err := r.db.ExecContext(ctx, query, strategy.String(), played, won, time.Now())
	if err != nil {
		return fmt.Errorf("failed to record lifetime stats: %w", err)
	}
	return nil
}

// Totals returns the lifetime totals per strategy
func (r *lifetimeRepository) Totals(ctx context.Context) (map[game.Strategy]simulation.LifetimeTotals, error) {
	query := `SELECT strategy, played, won, updated_at FROM lifetime_stats`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query lifetime stats: %w", err)
	}
	defer rows.Close()

	totals := make(map[game.Strategy]simulation.LifetimeTotals)
	for rows.Next() {
		var (
			strategy  string
			played    int64
			won       int64
			updatedAt time.Time
		)
		if err := rows.Scan(&strategy, &played, &won, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan lifetime stats: %w", err)
		}
		totals[game.Strategy(strategy)] = simulation.LifetimeTotals{
			Strategy:  game.Strategy(strategy),
			Played:    played,
			Won:       won,
			UpdatedAt: core.NewTimestamp(updatedAt),
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate lifetime stats: %w", err)
	}
	return totals, nil
}

// Reset clears all lifetime totals
func (r *lifetimeRepository) Reset(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM lifetime_stats`); err != nil {
		return fmt.Errorf("failed to reset lifetime stats: %w", err)
	}
	return nil
}
