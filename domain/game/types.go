package game

import (
	"doorsim/domain/core"
)

// DoorCount is the number of doors in the game. The host-reveal rules below
// assume exactly three: one car door, the player's pick, and at most two
// goat doors to choose a reveal from.
const DoorCount = 3

// Door is the index of one of the three doors
type Door int

// Valid reports whether the door index is inside the fixed door set
func (d Door) Valid() bool {
	return d >= 0 && d < DoorCount
}

// Strategy identifies the player's decision rule after the host reveal
type Strategy string

const (
	// StrategyStay keeps the initial choice
	StrategyStay Strategy = "stay"
	// StrategySwitch moves to the other unopened door
	StrategySwitch Strategy = "switch"
)

// AllStrategies lists the supported strategies in canonical order
func AllStrategies() []Strategy {
	return []Strategy{StrategyStay, StrategySwitch}
}

// Valid reports whether the strategy is one of the supported decision rules
func (s Strategy) Valid() bool {
	return s == StrategyStay || s == StrategySwitch
}

// String returns the string representation
func (s Strategy) String() string { return string(s) }

// TheoreticalWinRate returns the closed-form win probability for the strategy.
// These are fixed constants of the three-door game: 1/3 for staying, 2/3 for
// switching.
func (s Strategy) TheoreticalWinRate() float64 {
	switch s {
	case StrategySwitch:
		return 2.0 / 3.0
	default:
		return 1.0 / 3.0
	}
}

// ParseStrategy parses a string into a Strategy
func ParseStrategy(s string) (Strategy, error) {
	strategy := Strategy(s)
	if !strategy.Valid() {
		return "", core.NewValidationError("strategy", s)
	}
	return strategy, nil
}

// Trial is one simulated instance of the three-door game under a fixed
// strategy. Immutable once produced.
// INVARIANTS:
// - HostRevealedDoor is never CarDoor and never PlayerChoice
// - FinalChoice is PlayerChoice for "stay", the remaining door for "switch"
// - Won holds exactly when FinalChoice == CarDoor
type Trial struct {
	Strategy         Strategy `json:"strategy"`
	PlayerChoice     Door     `json:"player_choice"`
	HostRevealedDoor Door     `json:"host_revealed_door"`
	FinalChoice      Door     `json:"final_choice"`
	CarDoor          Door     `json:"car_door"`
	Won              bool     `json:"won"`
}

// Validate checks the trial invariants
func (t Trial) Validate() error {
	if !t.Strategy.Valid() {
		return core.NewValidationError("trial", "unknown strategy "+string(t.Strategy))
	}
	for _, d := range []Door{t.PlayerChoice, t.HostRevealedDoor, t.FinalChoice, t.CarDoor} {
		if !d.Valid() {
			return core.NewDoorError(int(d))
		}
	}
	if t.HostRevealedDoor == t.CarDoor {
		return core.NewValidationError("trial", "host revealed the car door")
	}
	if t.HostRevealedDoor == t.PlayerChoice {
		return core.NewValidationError("trial", "host revealed the player's door")
	}
	switch t.Strategy {
	case StrategyStay:
		if t.FinalChoice != t.PlayerChoice {
			return core.NewValidationError("trial", "stay trial changed doors")
		}
	case StrategySwitch:
		if t.FinalChoice == t.PlayerChoice || t.FinalChoice == t.HostRevealedDoor {
			return core.NewValidationError("trial", "switch trial did not take the remaining door")
		}
	}
	if t.Won != (t.FinalChoice == t.CarDoor) {
		return core.NewValidationError("trial", "won flag disagrees with final choice")
	}
	return nil
}

// RemainingDoor returns the unique door outside the given pair. The pair must
// be two distinct valid doors.
func RemainingDoor(a, b Door) Door {
	// Indices 0+1+2 sum to 3, so the third door is the complement.
	return Door(3 - int(a) - int(b))
}
