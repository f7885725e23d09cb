package games

import (
	"fmt"

	"github.com/glitchplay/chance-engine-go/internal/engine"
)

// Grid is a rows x cols array of symbol identifiers.
type Grid [][]int

// Row returns row i of the grid.
func (g Grid) Row(i int) []int { return g[i] }

// ConsistencyError reports a grid whose payline disagrees with the outcome
// it was built for. This is a fatal engine bug, not a recoverable game
// condition: the caller is expected to abort and surface the diagnostics.
type ConsistencyError struct {
	Expected engine.OutcomeKind
	Actual   engine.OutcomeKind
	Payline  []int
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("games: grid payline %v evaluates to %q, outcome was %q", e.Payline, e.Actual, e.Expected)
}

// EvaluatePayline classifies a payline row. Only left-anchored consecutive
// runs count: four-of-a-kind when all four cells match (four-column grids
// only), else three-of-a-kind when the first three match, else no win.
// The evaluator is pure; it is the single source of truth for both outcome
// decisions and simulation verification.
func EvaluatePayline(row []int, cols int) engine.OutcomeKind {
	if cols >= 4 && row[0] == row[1] && row[1] == row[2] && row[2] == row[3] {
		return engine.OutcomeFourKind
	}
	if row[0] == row[1] && row[1] == row[2] {
		return engine.OutcomeThreeKind
	}
	return engine.OutcomeNoWin
}

// BuildGrid synthesizes a full grid that realizes a pre-decided outcome:
// every cell is filled uniformly at random, then the payline row is forced
// to agree with the outcome. The returned grid is always re-checked against
// the same evaluator the outcome decision uses.
func BuildGrid(cfg ReelsConfig, r *engine.Rand, outcome engine.OutcomeDraw) (Grid, error) {
	grid := make(Grid, cfg.Rows)
	for i := range grid {
		grid[i] = make([]int, cfg.Cols)
		for j := range grid[i] {
			grid[i][j] = r.IntN(cfg.Symbols)
		}
	}

	if outcome.Kind == engine.OutcomeThreeKind || outcome.Kind == engine.OutcomeFourKind {
		if outcome.Symbol < 0 || outcome.Symbol >= cfg.Symbols {
			return nil, fmt.Errorf("games: winning symbol %d outside [0, %d)", outcome.Symbol, cfg.Symbols)
		}
	}

	payline := grid[cfg.PaylineRow]
	switch outcome.Kind {
	case engine.OutcomeNoWin:
		// Repair loop: nudging the third cell breaks any left-anchored run.
		// Each nudge strictly changes the cell and the symbol space is
		// finite, so at most one full symbol cycle terminates it.
		repaired := false
		for i := 0; i < cfg.Symbols; i++ {
			if EvaluatePayline(payline, cfg.Cols) == engine.OutcomeNoWin {
				repaired = true
				break
			}
			payline[2] = (payline[2] + 1) % cfg.Symbols
		}
		if !repaired && EvaluatePayline(payline, cfg.Cols) != engine.OutcomeNoWin {
			return nil, &ConsistencyError{Expected: outcome.Kind, Actual: EvaluatePayline(payline, cfg.Cols), Payline: payline}
		}

	case engine.OutcomeThreeKind:
		payline[0], payline[1], payline[2] = outcome.Symbol, outcome.Symbol, outcome.Symbol
		if cfg.Cols == 4 && payline[3] == outcome.Symbol {
			// A matching fourth column would upgrade the win; rotate it.
			payline[3] = (outcome.Symbol + 1) % cfg.Symbols
		}

	case engine.OutcomeFourKind:
		if cfg.Cols < 4 {
			return nil, fmt.Errorf("games: four-of-a-kind outcome on a %d-column grid", cfg.Cols)
		}
		for j := 0; j < 4; j++ {
			payline[j] = outcome.Symbol
		}

	default:
		return nil, fmt.Errorf("games: outcome kind %q is not a reels outcome", outcome.Kind)
	}

	if got := EvaluatePayline(payline, cfg.Cols); got != outcome.Kind {
		return nil, &ConsistencyError{Expected: outcome.Kind, Actual: got, Payline: payline}
	}
	return grid, nil
}
