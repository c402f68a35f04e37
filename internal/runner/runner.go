package runner

import (
	"context"
	"runtime"
	"time"

	"doorsim/domain/core"
	"doorsim/domain/game"
	"doorsim/domain/simulation"
	"doorsim/internal/aggregate"
	"doorsim/internal/errors"
	"doorsim/internal/logging"
	"doorsim/internal/trial"
	"doorsim/ports"
)

// DefaultChunkSize is the suggested number of trials per chunk
const DefaultChunkSize = 100

// GoschedYielder yields the processor between chunks so other goroutines can
// run during long simulations
var GoschedYielder = ports.YieldFunc(runtime.Gosched)

// FastYielder skips the suspension point entirely (fast mode)
var FastYielder = ports.YieldFunc(func() {})

// RunRequest describes one batch run
type RunRequest struct {
	// RunID identifies the run; empty means generate one
	RunID      core.RunID
	TotalGames int
	Strategies []game.Strategy
	ChunkSize  int
	// Seed for the run's random stream; 0 means derive one from the clock
	Seed int64
	// OnProgress and OnComplete are optional observers, invoked
	// synchronously on the runner's goroutine
	OnProgress ports.ProgressSink
	OnComplete ports.ResultSink
}

// Runner drives chunked, cancellable execution of batch trials. A runner
// owns at most one active run at a time; a second Run call while one is in
// flight fails with ALREADY_RUNNING. Trials inside a run are generated and
// aggregated on a single goroutine; the mutex only guards the state word
// against Stop calls arriving from other goroutines.
type Runner struct {
	rng     ports.RNGPort
	yielder ports.Yielder
	agg     *aggregate.Aggregator
	log     *logging.Logger

	state  *stateGuard
	result *simulation.SimulationResult
}

// New creates a runner in the Idle state
func New(rng ports.RNGPort, yielder ports.Yielder, log *logging.Logger) *Runner {
	if yielder == nil {
		yielder = GoschedYielder
	}
	if log == nil {
		log = logging.NewDefaultLogger()
	}
	return &Runner{
		rng:     rng,
		yielder: yielder,
		agg:     aggregate.NewAggregator(),
		log:     log,
		state:   newStateGuard(),
	}
}

// State returns the current run state
func (r *Runner) State() simulation.RunState {
	return r.state.current()
}

// Result returns the result of the most recent terminal run, or nil when no
// run has finished since the last reset
func (r *Runner) Result() *simulation.SimulationResult {
	if r.state.current() == simulation.StateRunning {
		return nil
	}
	return r.result
}

// Stop requests cooperative cancellation. It is advisory: the run observes
// it at the next chunk boundary, finishes the chunk in flight, and ends in
// the Stopped state with a fully aggregated partial result. Stopping a
// non-running runner is a no-op.
func (r *Runner) Stop() {
	r.state.requestStop()
}

// Reset returns a terminal runner to Idle and discards the held result
func (r *Runner) Reset() error {
	if err := r.state.reset(); err != nil {
		return err
	}
	r.result = nil
	return nil
}

// Run executes the batch described by req and returns the sealed result.
// totalGames is split across the strategies by integer floor division;
// remainder games are dropped, so TotalGames on the result reports what was
// actually played. Statistics on the result is left nil - callers invoke the
// statistics engine separately. Cancellation via Stop or ctx ends the run in
// the Stopped state, which is a normal completion path, not an error.
func (r *Runner) Run(ctx context.Context, req RunRequest) (*simulation.SimulationResult, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	if err := r.state.begin(); err != nil {
		return nil, err
	}
	r.result = nil

	seed := req.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	runID := req.RunID
	if runID == "" {
		runID = core.RunID(core.NewID())
	}
	stream, err := r.rng.SeededStream(ctx, "run:"+runID.String(), seed)
	if err != nil {
		r.state.finish(simulation.StateFailed)
		return nil, errors.Wrap(err, "failed to open random stream")
	}
	gen := trial.NewGenerator(stream)

	perStrategy := req.TotalGames / len(req.Strategies)
	total := perStrategy * len(req.Strategies)
	result := simulation.NewSimulationResult(runID, seed, req.Strategies, perStrategy)

	r.log.Info("run %s started: %d games across %d strategies (chunk size %d, seed %d)",
		runID, total, len(req.Strategies), req.ChunkSize, seed)

	completed := 0
	stopped := false

strategies:
	for _, strategy := range req.Strategies {
		batch := result.PerStrategy[strategy]
		theoretical := strategy.TheoreticalWinRate()

		for batch.Played < perStrategy {
			chunk := req.ChunkSize
			if remaining := perStrategy - batch.Played; chunk > remaining {
				chunk = remaining
			}

			for i := 0; i < chunk; i++ {
				t, err := gen.GenerateWithChoice(strategy)
				if err != nil {
					r.state.finish(simulation.StateFailed)
					result.Finish(simulation.StateFailed)
					r.result = result
					return nil, errors.Wrapf(err, "trial generation failed for %s", strategy)
				}
				r.agg.RecordTrial(batch, t)

				point := batch.WinRateHistory[len(batch.WinRateHistory)-1]
				result.ConvergenceSeries = append(result.ConvergenceSeries, simulation.ConvergencePoint{
					Strategy:   strategy,
					GameNumber: point.GameNumber,
					WinRate:    point.WinRate,
					Deviation:  absFloat(point.WinRate - theoretical),
				})
			}
			completed += chunk

			progress := simulation.Progress{
				Completed:  completed,
				Total:      total,
				Percentage: float64(completed) / float64(total) * 100,
				Strategy:   strategy,
			}
			if req.OnProgress != nil {
				req.OnProgress.Progress(progress)
			}
			r.log.Debug("run %s progress: %d/%d (%s)", runID, completed, total, strategy)

			// Cooperative suspension point between chunks. Cancellation is
			// observed here and only here; the chunk above always completes.
			r.yielder.Yield()
			if r.state.stopRequested() || ctx.Err() != nil {
				stopped = true
				break strategies
			}
		}
	}

	finalState := simulation.StateCompleted
	if stopped {
		finalState = simulation.StateStopped
	}
	result.Finish(finalState)
	r.state.finish(finalState)
	r.result = result

	r.log.Info("run %s %s: %d games in %s", runID, finalState, result.TotalGames, result.Duration)

	if req.OnComplete != nil {
		req.OnComplete.Complete(result)
	}
	return result, nil
}

func validateRequest(req RunRequest) error {
	if req.TotalGames <= 0 {
		return errors.WithCode(errors.CodeInvalidArgument,
			core.NewValidationError("total_games", "must be positive"))
	}
	if req.ChunkSize <= 0 {
		return errors.WithCode(errors.CodeInvalidArgument,
			core.NewValidationError("chunk_size", "must be positive"))
	}
	if len(req.Strategies) == 0 {
		return errors.WithCode(errors.CodeInvalidArgument,
			core.NewValidationError("strategies", "must not be empty"))
	}
	seen := make(map[game.Strategy]bool, len(req.Strategies))
	for _, s := range req.Strategies {
		if !s.Valid() {
			return errors.WithCode(errors.CodeInvalidArgument,
				core.NewValidationError("strategies", "unknown strategy "+s.String()))
		}
		if seen[s] {
			return errors.WithCode(errors.CodeInvalidArgument,
				core.NewValidationError("strategies", "duplicate strategy "+s.String()))
		}
		seen[s] = true
	}
	return nil
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
