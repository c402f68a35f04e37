package runner

import (
	"sync"

	"doorsim/domain/core"
	"doorsim/domain/simulation"
	"doorsim/internal/errors"
)

// stateGuard serializes run-state transitions. Everything else in a run is
// single-goroutine; only the state word and the stop flag can be touched
// from outside (Stop, State, a competing Run call), so they live behind one
// mutex here.
type stateGuard struct {
	mu   sync.Mutex
	st   simulation.RunState
	stop bool
}

func newStateGuard() *stateGuard {
	return &stateGuard{st: simulation.StateIdle}
}

func (g *stateGuard) current() simulation.RunState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.st
}

// begin moves to Running. A terminal state re-arms through Idle first, since
// starting a new run discards the previous one.
func (g *stateGuard) begin() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.st == simulation.StateRunning {
		return errors.WithCode(errors.CodeAlreadyRunning, core.ErrAlreadyRunning)
	}
	g.st = simulation.StateRunning
	g.stop = false
	return nil
}

func (g *stateGuard) finish(state simulation.RunState) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.st = state
	g.stop = false
}

// reset returns a terminal or idle guard to Idle
func (g *stateGuard) reset() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.st == simulation.StateRunning {
		return errors.WithCode(errors.CodeAlreadyRunning, core.ErrAlreadyRunning)
	}
	g.st = simulation.StateIdle
	g.stop = false
	return nil
}

func (g *stateGuard) requestStop() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.st == simulation.StateRunning {
		g.stop = true
	}
}

func (g *stateGuard) stopRequested() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.stop
}
