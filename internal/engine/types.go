package engine

// OutcomeKind discriminates a decided event.
type OutcomeKind string

const (
	// Card-draw (swipe) outcomes.
	OutcomeDanger OutcomeKind = "danger"
	OutcomeBonus  OutcomeKind = "bonus"
	OutcomeNormal OutcomeKind = "normal"

	// Slot payline outcomes.
	OutcomeNoWin     OutcomeKind = "no_win"
	OutcomeThreeKind OutcomeKind = "three_kind"
	OutcomeFourKind  OutcomeKind = "four_kind"
)

// OutcomeDraw is one decided event. It is produced once by a probability
// model, never mutated afterward, and never exposes the random state that
// produced it.
type OutcomeDraw struct {
	Kind OutcomeKind `json:"kind"`

	// Multiplier applied to the running round value for favorable outcomes,
	// zero for terminal losses and no-win spins.
	Multiplier float64 `json:"multiplier"`

	// Symbol is the winning payline symbol for slot outcomes, -1 otherwise.
	Symbol int `json:"symbol"`
}

// Favorable reports whether the draw grows the round value.
func (d OutcomeDraw) Favorable() bool {
	switch d.Kind {
	case OutcomeBonus, OutcomeNormal, OutcomeThreeKind, OutcomeFourKind:
		return true
	}
	return false
}

// Terminal reports whether the draw ends the round with a loss.
func (d OutcomeDraw) Terminal() bool {
	return d.Kind == OutcomeDanger
}
