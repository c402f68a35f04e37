package ports

import (
	"context"
	"math/rand"
)

// RNGPort provides seeded random number generation for deterministic trials.
// Batches draw all of their randomness from a single named stream so a run
// is reproducible from its seed alone.
type RNGPort interface {
	// SeededStream creates a deterministic random number generator for a named operation
	SeededStream(ctx context.Context, name string, seed int64) (*rand.Rand, error)
}
