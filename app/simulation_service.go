package app

import (
	"context"

	"doorsim/domain/game"
	"doorsim/domain/simulation"
	"doorsim/internal/export"
	"doorsim/internal/logging"
	"doorsim/internal/runner"
	"doorsim/internal/statistics"
	"doorsim/ports"
)

// SimulationService orchestrates the batch runner, statistics engine,
// exporter and the optional lifetime-stats repository behind one API. The
// runner produces a raw result; the service is the caller that chains the
// statistics computation onto it and folds the outcome into the lifetime
// record.
type SimulationService struct {
	runner   *runner.Runner
	engine   *statistics.Engine
	exporter *export.Exporter
	lifetime ports.LifetimeRepository
	log      *logging.Logger
}

// NewSimulationService creates the service. lifetime may be nil, which
// disables cross-session persistence.
func NewSimulationService(r *runner.Runner, engine *statistics.Engine, exporter *export.Exporter, lifetime ports.LifetimeRepository, log *logging.Logger) *SimulationService {
	if log == nil {
		log = logging.NewDefaultLogger()
	}
	return &SimulationService{
		runner:   r,
		engine:   engine,
		exporter: exporter,
		lifetime: lifetime,
		log:      log,
	}
}

// Run executes a batch, attaches statistics to the completed result and
// records the outcome in the lifetime repository. Statistics are skipped for
// strategies left without trials (a run stopped before reaching them).
func (s *SimulationService) Run(ctx context.Context, req runner.RunRequest) (*simulation.SimulationResult, error) {
	result, err := s.runner.Run(ctx, req)
	if err != nil {
		return nil, err
	}

	if allBatchesPlayed(result) {
		stats, err := s.engine.Compute(result)
		if err != nil {
			return nil, err
		}
		result.Statistics = stats
	} else {
		s.log.Warn("run %s has empty strategy batches, skipping statistics", result.RunID)
	}

	s.recordLifetime(ctx, result)
	return result, nil
}

// Stop requests cooperative cancellation of the active run
func (s *SimulationService) Stop() {
	s.runner.Stop()
}

// State returns the current runner state
func (s *SimulationService) State() simulation.RunState {
	return s.runner.State()
}

// Result returns the most recent terminal result, or nil
func (s *SimulationService) Result() *simulation.SimulationResult {
	return s.runner.Result()
}

// Reset discards the held result and re-arms the runner
func (s *SimulationService) Reset() error {
	return s.runner.Reset()
}

// Export serializes the most recent result. The format token is
// case-insensitive; fails with NO_DATA when no run has finished yet.
func (s *SimulationService) Export(formatToken string) ([]byte, error) {
	format, err := export.ParseFormat(formatToken)
	if err != nil {
		return nil, err
	}
	return s.exporter.Export(s.runner.Result(), format)
}

// LifetimeTotals returns the cross-session totals, or nil when persistence
// is disabled
func (s *SimulationService) LifetimeTotals(ctx context.Context) (map[game.Strategy]simulation.LifetimeTotals, error) {
	if s.lifetime == nil {
		return nil, nil
	}
	return s.lifetime.Totals(ctx)
}

// recordLifetime folds the run into the lifetime repository. Persistence
// failures are logged, never surfaced: the lifetime store sits outside the
// run path and a run's result is complete without it.
func (s *SimulationService) recordLifetime(ctx context.Context, result *simulation.SimulationResult) {
	if s.lifetime == nil {
		return
	}
	for _, strategy := range result.Strategies {
		batch := result.PerStrategy[strategy]
		if batch == nil || batch.Played == 0 {
			continue
		}
		if err := s.lifetime.Record(ctx, strategy, batch.Played, batch.Won); err != nil {
			s.log.Warn("failed to record lifetime stats for %s: %v", strategy, err)
		}
	}
}

func allBatchesPlayed(result *simulation.SimulationResult) bool {
	for _, strategy := range result.Strategies {
		batch := result.PerStrategy[strategy]
		if batch == nil || batch.Played == 0 {
			return false
		}
	}
	return true
}
