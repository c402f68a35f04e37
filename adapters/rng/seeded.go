package rng

import (
	"context"
	"hash/fnv"
	"math/rand"

	"doorsim/ports"
)

// SeededAdapter implements ports.RNGPort with math/rand streams. The name is
// folded into the seed so distinct operations sharing a base seed still get
// independent streams, while identical (name, seed) pairs replay identically.
type SeededAdapter struct{}

// NewSeededAdapter creates the adapter
func NewSeededAdapter() *SeededAdapter {
	return &SeededAdapter{}
}

// SeededStream creates a deterministic random number generator for a named operation
func (a *SeededAdapter) SeededStream(ctx context.Context, name string, seed int64) (*rand.Rand, error) {
	if name != "" {
		seed += int64(hashString(name))
	}
	return rand.New(rand.NewSource(seed)), nil
}

func hashString(s string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return h.Sum64()
}

var _ ports.RNGPort = (*SeededAdapter)(nil)
