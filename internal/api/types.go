package api

import (
	"github.com/glitchplay/chance-engine-go/internal/games"
	"github.com/glitchplay/chance-engine-go/internal/sim"
)

// ModelsResponse lists the registered game variants.
type ModelsResponse struct {
	Models []games.ModelSpec `json:"models"`
}

// SimulateRequest asks for one simulation run.
type SimulateRequest struct {
	Model  string  `json:"model"`
	Seed   uint32  `json:"seed"`
	Spins  int     `json:"spins"`
	Wager  float64 `json:"wager,omitempty"`
	StopAt int     `json:"stop_at,omitempty"`
	Script string  `json:"script,omitempty"`
}

// SimulateResponse returns the aggregate report plus the persisted run ID.
type SimulateResponse struct {
	RunID  string      `json:"run_id,omitempty"`
	Report *sim.Report `json:"report"`
}

// StartRoundRequest opens a live round.
type StartRoundRequest struct {
	Model string  `json:"model"`
	Seed  uint32  `json:"seed"`
	Wager float64 `json:"wager"`
}

// RoundResponse describes the observable state of a live round. It never
// carries the pre-sampled failure point: only the oracle inside the session
// knows it, and the oracle has no serializable accessor.
type RoundResponse struct {
	ID      string  `json:"id"`
	Model   string  `json:"model"`
	Active  bool    `json:"active"`
	Step    int     `json:"step"`
	Level   int     `json:"level,omitempty"`
	Value   string  `json:"value"`
	Outcome string  `json:"outcome,omitempty"`
	Payout  string  `json:"payout,omitempty"`
	Balance string  `json:"balance"`
	Wager   float64 `json:"wager"`
}

// SpinRequest asks for one reels spin.
type SpinRequest struct {
	Seed  uint32  `json:"seed"`
	Wager float64 `json:"wager,omitempty"`
}

// SpinResponse returns the decided outcome and the grid built for it.
type SpinResponse struct {
	Outcome    string     `json:"outcome"`
	Symbol     int        `json:"symbol"`
	Multiplier float64    `json:"multiplier"`
	Payout     float64    `json:"payout"`
	Grid       games.Grid `json:"grid"`
}
