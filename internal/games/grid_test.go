package games

import (
	"errors"
	"testing"

	"github.com/glitchplay/chance-engine-go/internal/engine"
)

func TestEvaluatePayline(t *testing.T) {
	cases := []struct {
		name string
		row  []int
		cols int
		want engine.OutcomeKind
	}{
		{"all four match", []int{2, 2, 2, 2}, 4, engine.OutcomeFourKind},
		{"first three match", []int{2, 2, 2, 5}, 4, engine.OutcomeThreeKind},
		{"three columns all match", []int{2, 2, 2}, 3, engine.OutcomeThreeKind},
		{"run not left-anchored", []int{5, 2, 2, 2}, 4, engine.OutcomeNoWin},
		{"pair only", []int{2, 2, 5, 5}, 4, engine.OutcomeNoWin},
		{"no repeats", []int{0, 1, 2, 3}, 4, engine.OutcomeNoWin},
		{"gap in run", []int{2, 5, 2, 2}, 4, engine.OutcomeNoWin},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := EvaluatePayline(tc.row, tc.cols); got != tc.want {
				t.Errorf("EvaluatePayline(%v, %d) = %q, want %q", tc.row, tc.cols, got, tc.want)
			}
		})
	}
}

func TestBuildGridRealizesOutcome(t *testing.T) {
	// Zero tolerance: over many seeds and every outcome kind, the built
	// grid's payline must evaluate back to exactly the decided outcome.
	configs := []ReelsConfig{
		DefaultReelsConfig(),
		{Rows: 3, Cols: 3, Symbols: 8, PaylineRow: 1, Volatility: VolatilityLow, TargetRTP: 0.95},
		{Rows: 5, Cols: 4, Symbols: 3, PaylineRow: 4, Volatility: VolatilityHigh, TargetRTP: 0.95, FourKindShare: 0.5},
	}
	for _, cfg := range configs {
		outcomes := []engine.OutcomeDraw{
			{Kind: engine.OutcomeNoWin, Symbol: -1},
			{Kind: engine.OutcomeThreeKind, Multiplier: 2, Symbol: 0},
			{Kind: engine.OutcomeThreeKind, Multiplier: 2, Symbol: cfg.Symbols - 1},
		}
		if cfg.Cols == 4 {
			outcomes = append(outcomes, engine.OutcomeDraw{Kind: engine.OutcomeFourKind, Multiplier: 5, Symbol: 1})
		}
		for _, outcome := range outcomes {
			r := engine.NewRand(engine.DeriveSeed(7, uint32(cfg.Rows*10+cfg.Cols)))
			for i := 0; i < 5000; i++ {
				grid, err := BuildGrid(cfg, r, outcome)
				if err != nil {
					t.Fatalf("cols=%d outcome=%q iteration %d: %v", cfg.Cols, outcome.Kind, i, err)
				}
				if len(grid) != cfg.Rows || len(grid[0]) != cfg.Cols {
					t.Fatalf("grid is %dx%d, want %dx%d", len(grid), len(grid[0]), cfg.Rows, cfg.Cols)
				}
				got := EvaluatePayline(grid.Row(cfg.PaylineRow), cfg.Cols)
				if got != outcome.Kind {
					t.Fatalf("cols=%d iteration %d: payline %v evaluates to %q, outcome was %q",
						cfg.Cols, i, grid.Row(cfg.PaylineRow), got, outcome.Kind)
				}
			}
		}
	}
}

func TestBuildGridCellsInRange(t *testing.T) {
	cfg := DefaultReelsConfig()
	r := engine.NewRand(13)
	for i := 0; i < 1000; i++ {
		grid, err := BuildGrid(cfg, r, engine.OutcomeDraw{Kind: engine.OutcomeNoWin, Symbol: -1})
		if err != nil {
			t.Fatalf("iteration %d: %v", i, err)
		}
		for _, row := range grid {
			for _, cell := range row {
				if cell < 0 || cell >= cfg.Symbols {
					t.Fatalf("cell %d outside [0, %d)", cell, cfg.Symbols)
				}
			}
		}
	}
}

func TestBuildGridThreeKindRotatesFourthColumn(t *testing.T) {
	cfg := DefaultReelsConfig()
	r := engine.NewRand(21)
	outcome := engine.OutcomeDraw{Kind: engine.OutcomeThreeKind, Multiplier: 2, Symbol: 3}
	for i := 0; i < 5000; i++ {
		grid, err := BuildGrid(cfg, r, outcome)
		if err != nil {
			t.Fatalf("iteration %d: %v", i, err)
		}
		row := grid.Row(cfg.PaylineRow)
		if row[0] != 3 || row[1] != 3 || row[2] != 3 {
			t.Fatalf("iteration %d: winning run %v does not start with symbol 3", i, row)
		}
		if row[3] == 3 {
			t.Fatalf("iteration %d: fourth column %v upgrades a three-of-a-kind", i, row)
		}
	}
}

func TestBuildGridRejectsBadOutcomes(t *testing.T) {
	three := ReelsConfig{Rows: 3, Cols: 3, Symbols: 8, PaylineRow: 1, Volatility: VolatilityLow, TargetRTP: 0.95}

	if _, err := BuildGrid(three, engine.NewRand(1), engine.OutcomeDraw{Kind: engine.OutcomeFourKind, Symbol: 0}); err == nil {
		t.Error("four-of-a-kind accepted on a 3-column grid")
	}
	if _, err := BuildGrid(DefaultReelsConfig(), engine.NewRand(1), engine.OutcomeDraw{Kind: engine.OutcomeThreeKind, Symbol: 99}); err == nil {
		t.Error("out-of-range winning symbol accepted")
	}
	if _, err := BuildGrid(DefaultReelsConfig(), engine.NewRand(1), engine.OutcomeDraw{Kind: engine.OutcomeDanger}); err == nil {
		t.Error("non-reels outcome kind accepted")
	}
}

func TestConsistencyErrorMessage(t *testing.T) {
	err := &ConsistencyError{Expected: engine.OutcomeNoWin, Actual: engine.OutcomeThreeKind, Payline: []int{2, 2, 2, 5}}
	var target *ConsistencyError
	if !errors.As(error(err), &target) {
		t.Fatal("errors.As failed on ConsistencyError")
	}
	if err.Error() == "" {
		t.Error("empty error message")
	}
}
