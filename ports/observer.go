package ports

import (
	"doorsim/domain/simulation"
)

// ProgressSink receives one event per completed chunk, delivered
// synchronously on the runner's goroutine in generation order.
// Implementations must not block; a blocking sink stalls the simulation.
type ProgressSink interface {
	Progress(p simulation.Progress)
}

// ProgressFunc adapts a plain function to a ProgressSink
type ProgressFunc func(p simulation.Progress)

// Progress implements ProgressSink
func (f ProgressFunc) Progress(p simulation.Progress) { f(p) }

// ResultSink receives the finished result when a run reaches a terminal
// state, before Run returns. Same delivery rules as ProgressSink.
type ResultSink interface {
	Complete(r *simulation.SimulationResult)
}

// ResultFunc adapts a plain function to a ResultSink
type ResultFunc func(r *simulation.SimulationResult)

// Complete implements ResultSink
func (f ResultFunc) Complete(r *simulation.SimulationResult) { f(r) }
