package testkit

import (
	"context"
	"math/rand"

	"doorsim/ports"
)

// ScriptedSource is a rand.Source that plays back a fixed script of small
// integers through rand.Intn. Each scripted value v (0 <= v < n for the
// Intn(n) call it feeds) is returned verbatim by that call, because
// rand.Int31n takes the top 31 bits of Int63 and v is far below the
// rejection bound for the tiny n values used in door draws. The script
// wraps around when exhausted.
type ScriptedSource struct {
	values []int64
	pos    int
}

// NewScriptedSource creates a source scripting the given Intn outcomes
func NewScriptedSource(outcomes ...int) *ScriptedSource {
	values := make([]int64, len(outcomes))
	for i, v := range outcomes {
		values[i] = int64(v)
	}
	return &ScriptedSource{values: values}
}

// Int63 implements rand.Source
func (s *ScriptedSource) Int63() int64 {
	v := s.values[s.pos%len(s.values)]
	s.pos++
	return v << 32
}

// Seed implements rand.Source as a no-op; the script is the seed
func (s *ScriptedSource) Seed(int64) {}

// NewScriptedRand creates a *rand.Rand whose successive Intn calls yield the
// given outcomes in order
func NewScriptedRand(outcomes ...int) *rand.Rand {
	return rand.New(NewScriptedSource(outcomes...))
}

// ScriptedRNGPort implements ports.RNGPort with a fixed script, ignoring
// name and seed
type ScriptedRNGPort struct {
	outcomes []int
}

// NewScriptedRNGPort creates the port
func NewScriptedRNGPort(outcomes ...int) *ScriptedRNGPort {
	return &ScriptedRNGPort{outcomes: outcomes}
}

// SeededStream returns a fresh scripted stream
func (p *ScriptedRNGPort) SeededStream(ctx context.Context, name string, seed int64) (*rand.Rand, error) {
	return NewScriptedRand(p.outcomes...), nil
}

// CountingYielder counts suspension points hit during a run
type CountingYielder struct {
	Count int
}

// Yield implements ports.Yielder
func (y *CountingYielder) Yield() { y.Count++ }

var (
	_ ports.RNGPort = (*ScriptedRNGPort)(nil)
	_ ports.Yielder = (*CountingYielder)(nil)
)
