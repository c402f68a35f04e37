package testkit

import (
	"context"
	"testing"
)

func TestScriptedRand_PlaysBackOutcomes(t *testing.T) {
	r := NewScriptedRand(2, 0, 1)

	for round := 0; round < 2; round++ {
		for _, want := range []int{2, 0, 1} {
			if got := r.Intn(3); got != want {
				t.Fatalf("round %d: Intn(3) = %d, want %d", round, got, want)
			}
		}
	}
}

func TestScriptedRand_SmallBounds(t *testing.T) {
	r := NewScriptedRand(1, 0)

	if got := r.Intn(2); got != 1 {
		t.Errorf("Intn(2) = %d, want 1", got)
	}
	if got := r.Intn(2); got != 0 {
		t.Errorf("Intn(2) = %d, want 0", got)
	}
}

func TestScriptedRNGPort_FreshStreamPerCall(t *testing.T) {
	port := NewScriptedRNGPort(2, 1, 0)

	for call := 0; call < 2; call++ {
		stream, err := port.SeededStream(context.Background(), "anything", int64(call))
		if err != nil {
			t.Fatalf("SeededStream failed: %v", err)
		}
		if got := stream.Intn(3); got != 2 {
			t.Fatalf("call %d: first draw = %d, want 2", call, got)
		}
	}
}

func TestCountingYielder(t *testing.T) {
	y := &CountingYielder{}
	y.Yield()
	y.Yield()
	if y.Count != 2 {
		t.Errorf("Count = %d, want 2", y.Count)
	}
}
