package trial

import (
	"math/rand"

	"doorsim/domain/core"
	"doorsim/domain/game"
	"doorsim/internal/errors"
)

// Generator produces one randomized three-door trial at a time. All
// randomness comes from the injected stream, so a generator seeded the same
// way replays the same trial sequence.
type Generator struct {
	rng *rand.Rand
}

// NewGenerator creates a generator over the given random stream
func NewGenerator(rng *rand.Rand) *Generator {
	return &Generator{rng: rng}
}

// Generate plays one trial for the strategy with the given initial player
// choice. The car is placed uniformly at random; the host then reveals a
// goat door. When the player's choice is the car door there are two goat
// doors and the host picks between them uniformly at random - that tie-break
// is the only host non-determinism. Otherwise exactly one goat door remains
// and the reveal is forced.
func (g *Generator) Generate(strategy game.Strategy, playerChoice game.Door) (game.Trial, error) {
	if !strategy.Valid() {
		return game.Trial{}, errors.WithCode(errors.CodeInvalidArgument,
			core.NewValidationError("strategy", strategy.String()))
	}
	if !playerChoice.Valid() {
		return game.Trial{}, errors.WithCode(errors.CodeInvalidDoor,
			core.NewDoorError(int(playerChoice)))
	}

	carDoor := game.Door(g.rng.Intn(game.DoorCount))
	hostReveal := g.revealDoor(carDoor, playerChoice)

	finalChoice := playerChoice
	if strategy == game.StrategySwitch {
		finalChoice = game.RemainingDoor(playerChoice, hostReveal)
	}

	return game.Trial{
		Strategy:         strategy,
		PlayerChoice:     playerChoice,
		HostRevealedDoor: hostReveal,
		FinalChoice:      finalChoice,
		CarDoor:          carDoor,
		Won:              finalChoice == carDoor,
	}, nil
}

// GenerateWithChoice plays one trial with the initial player choice drawn
// uniformly at random as well
func (g *Generator) GenerateWithChoice(strategy game.Strategy) (game.Trial, error) {
	return g.Generate(strategy, game.Door(g.rng.Intn(game.DoorCount)))
}

// revealDoor picks the door the host opens: a goat door that is not the
// player's choice
func (g *Generator) revealDoor(carDoor, playerChoice game.Door) game.Door {
	if carDoor != playerChoice {
		// Car and player occupy two distinct doors; the third is the only
		// goat the host may open.
		return game.RemainingDoor(carDoor, playerChoice)
	}

	// Player picked the car: both other doors hide goats. Randomized
	// tie-break between them.
	candidates := make([]game.Door, 0, 2)
	for d := game.Door(0); d < game.DoorCount; d++ {
		if d != carDoor {
			candidates = append(candidates, d)
		}
	}
	return candidates[g.rng.Intn(len(candidates))]
}
