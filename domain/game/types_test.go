package game

import (
	"testing"

	"doorsim/domain/core"
)

func TestTheoreticalWinRate(t *testing.T) {
	if got := StrategyStay.TheoreticalWinRate(); got != 1.0/3.0 {
		t.Errorf("stay theoretical = %v, want 1/3", got)
	}
	if got := StrategySwitch.TheoreticalWinRate(); got != 2.0/3.0 {
		t.Errorf("switch theoretical = %v, want 2/3", got)
	}
}

func TestParseStrategy(t *testing.T) {
	cases := []struct {
		input   string
		want    Strategy
		wantErr bool
	}{
		{"stay", StrategyStay, false},
		{"switch", StrategySwitch, false},
		{"", "", true},
		{"Stay", "", true},
		{"random", "", true},
	}
	for _, tc := range cases {
		got, err := ParseStrategy(tc.input)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseStrategy(%q) expected error", tc.input)
			}
			if !core.IsValidationError(err) {
				t.Errorf("ParseStrategy(%q) error %v is not a validation error", tc.input, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseStrategy(%q) unexpected error: %v", tc.input, err)
		}
		if got != tc.want {
			t.Errorf("ParseStrategy(%q) = %v, want %v", tc.input, got, tc.want)
		}
	}
}

func TestRemainingDoor(t *testing.T) {
	cases := []struct {
		a, b, want Door
	}{
		{0, 1, 2},
		{0, 2, 1},
		{1, 2, 0},
		{2, 1, 0},
	}
	for _, tc := range cases {
		if got := RemainingDoor(tc.a, tc.b); got != tc.want {
			t.Errorf("RemainingDoor(%d, %d) = %d, want %d", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestTrialValidate(t *testing.T) {
	valid := Trial{
		Strategy:         StrategySwitch,
		PlayerChoice:     1,
		HostRevealedDoor: 2,
		FinalChoice:      0,
		CarDoor:          0,
		Won:              true,
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid trial rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Trial)
	}{
		{"host reveals car", func(tr *Trial) { tr.HostRevealedDoor = tr.CarDoor }},
		{"host reveals player door", func(tr *Trial) { tr.HostRevealedDoor = tr.PlayerChoice }},
		{"switch keeps own door", func(tr *Trial) { tr.FinalChoice = tr.PlayerChoice }},
		{"won flag wrong", func(tr *Trial) { tr.Won = false }},
		{"door out of range", func(tr *Trial) { tr.CarDoor = 3 }},
		{"unknown strategy", func(tr *Trial) { tr.Strategy = "quantum" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tr := valid
			tc.mutate(&tr)
			if err := tr.Validate(); err == nil {
				t.Errorf("expected validation error")
			}
		})
	}

	stay := Trial{
		Strategy:         StrategyStay,
		PlayerChoice:     1,
		HostRevealedDoor: 2,
		FinalChoice:      1,
		CarDoor:          0,
		Won:              false,
	}
	if err := stay.Validate(); err != nil {
		t.Errorf("valid stay trial rejected: %v", err)
	}
	stay.FinalChoice = 0
	if err := stay.Validate(); err == nil {
		t.Errorf("stay trial that changed doors should fail validation")
	}
}
