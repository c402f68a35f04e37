package simulation

import (
	"doorsim/domain/core"
	"doorsim/domain/game"
)

// LifetimeTotals is the cumulative record for one strategy across all
// sessions. It is maintained by a persistence collaborator outside the run
// path and never feeds back into a simulation.
type LifetimeTotals struct {
	Strategy  game.Strategy  `json:"strategy"`
	Played    int64          `json:"played"`
	Won       int64          `json:"won"`
	UpdatedAt core.Timestamp `json:"updated_at"`
}

// WinRate returns Won/Played, or 0 when nothing has been played
func (t LifetimeTotals) WinRate() float64 {
	if t.Played == 0 {
		return 0
	}
	return float64(t.Won) / float64(t.Played)
}
