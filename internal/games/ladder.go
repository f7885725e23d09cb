package games

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/glitchplay/chance-engine-go/internal/economy"
	"github.com/glitchplay/chance-engine-go/internal/engine"
)

// LadderMaxLevel is the default number of levels in the ladder variant.
const LadderMaxLevel = 22

const (
	// The ladder's edge lives entirely in the first-level survival
	// probability, so the ledger applies no additional discount.
	ladderHouseEdgeFactor = 1.0
	ladderMaxMultiplier   = 10000
	ladderTargetRTP       = 0.95
)

// ladderDefaultMultipliers is the published cash-out table: multiplier for
// holding level k, 1-indexed by position. Level 1 is the entry level and
// refunds the wager.
var ladderDefaultMultipliers = []float64{
	1.00, 1.25, 1.56, 1.95, 2.44, 3.05, 3.81, 4.77,
	5.96, 7.45, 9.31, 11.64, 14.55, 18.19, 22.74, 28.42,
	35.53, 44.41, 55.51, 69.39, 86.74, 108.42,
}

// LadderModel implements the level-ladder variant. Per-level survival
// probabilities are derived from the cash-out table so that, for every
// level beyond the first, advancing once more and stopping have equal
// expected value, and the first level's continuation is worth exactly the
// target RTP:
//
//	survival[1] = targetRTP / multiplier[2]
//	survival[k] = multiplier[k] / multiplier[k+1]   for k >= 2
type LadderModel struct {
	targetRTP   float64
	multipliers []float64 // multipliers[i] pays for holding level i+1
	survival    []float64 // survival[i] survives the attempt from level i+1
	econ        economy.Config
}

// NewLadderModel returns the ladder model with the default table and RTP.
func NewLadderModel() *LadderModel {
	m, err := NewLadderModelParams(ladderTargetRTP, ladderDefaultMultipliers)
	if err != nil {
		panic(fmt.Sprintf("games: default ladder table invalid: %v", err))
	}
	return m
}

// NewLadderModelParams builds a ladder model from a target RTP and a
// cash-out multiplier table. The table must start at 1.0 and be strictly
// increasing; tables whose derived survival probabilities fall outside
// (0, 1) are rejected at construction.
func NewLadderModelParams(targetRTP float64, multipliers []float64) (*LadderModel, error) {
	if targetRTP <= 0 || targetRTP > 1 {
		return nil, fmt.Errorf("games: ladder target RTP must be in (0, 1], got %v", targetRTP)
	}
	if len(multipliers) < 2 {
		return nil, fmt.Errorf("games: ladder needs at least 2 levels, got %d", len(multipliers))
	}
	if multipliers[0] != 1.0 {
		return nil, fmt.Errorf("games: ladder entry level must pay 1.0, got %v", multipliers[0])
	}
	for i := 1; i < len(multipliers); i++ {
		if multipliers[i] <= multipliers[i-1] {
			return nil, fmt.Errorf("games: ladder multipliers must be strictly increasing, level %d: %v <= %v",
				i+1, multipliers[i], multipliers[i-1])
		}
	}

	table := append([]float64(nil), multipliers...)
	survival := make([]float64, len(table)-1)
	survival[0] = targetRTP / table[1]
	for i := 1; i < len(survival); i++ {
		survival[i] = table[i] / table[i+1]
	}
	for i, p := range survival {
		if p <= 0 || p >= 1 {
			return nil, fmt.Errorf("games: ladder survival probability for level %d is %v, outside (0, 1)", i+1, p)
		}
	}

	return &LadderModel{
		targetRTP:   targetRTP,
		multipliers: table,
		survival:    survival,
		econ: economy.Config{
			HouseEdgeFactor:       ladderHouseEdgeFactor,
			MaxMultiplier:         ladderMaxMultiplier,
			DefaultStepMultiplier: table[1] / table[0],
		},
	}, nil
}

// Spec implements Model.
func (m *LadderModel) Spec() ModelSpec {
	return ModelSpec{ID: "ladder", Name: "Level Ladder", OutcomeLabel: "level"}
}

// EconomyConfig implements Model.
func (m *LadderModel) EconomyConfig() economy.Config { return m.econ }

// MaxLevel returns the number of levels in the table.
func (m *LadderModel) MaxLevel() int { return len(m.multipliers) }

// Multipliers returns a copy of the published cash-out table.
func (m *LadderModel) Multipliers() []float64 {
	return append([]float64(nil), m.multipliers...)
}

// Survival returns a copy of the derived per-level survival table.
// survival[i] is the probability of surviving the attempt from level i+1.
func (m *LadderModel) Survival() []float64 {
	return append([]float64(nil), m.survival...)
}

// FailureOracle holds the pre-sampled level at which a continuation attempt
// is destined to fail. The level is private and only consulted through
// CheckContinuation, so nothing player-facing can log or serialize it.
type FailureOracle struct {
	failLevel int // 0 means no attempt fails within the round
}

// CheckContinuation reports whether the attempt to advance from
// currentLevel survives.
func (o *FailureOracle) CheckContinuation(currentLevel int) bool {
	return o.failLevel == 0 || currentLevel < o.failLevel
}

// SampleFailurePoint walks levels 1..MaxLevel-1 drawing one boolean per
// level and returns an oracle for the first failed draw. Sampling the whole
// walk up front is statistically identical to drawing at each continuation
// decision: every attempt still fails with exactly 1-survival[k], and the
// strategy cannot observe the difference.
func (m *LadderModel) SampleFailurePoint(r *engine.Rand) *FailureOracle {
	for i, p := range m.survival {
		if !r.Bool(p) {
			return &FailureOracle{failLevel: i + 1}
		}
	}
	return &FailureOracle{}
}

// PlayRound implements Model. The round enters at level 1; the strategy is
// consulted before every climb and a declined climb cashes out the current
// level's multiplier.
func (m *LadderModel) PlayRound(r *engine.Rand, led *economy.Ledger, w *economy.Wallet, wager decimal.Decimal, strat Strategy) (RoundResult, error) {
	oracle := m.SampleFailurePoint(r)

	if err := led.StartRound(w, wager); err != nil {
		return RoundResult{}, err
	}

	level := 1
	for level < len(m.multipliers) {
		state := StepState{Step: level, Level: level, Multiplier: m.multipliers[level-1]}
		if !strat.Continue(state) {
			break
		}
		if !oracle.CheckContinuation(level) {
			if err := led.ForfeitOnLoss(); err != nil {
				return RoundResult{}, err
			}
			return RoundResult{Outcome: engine.OutcomeDanger}, nil
		}
		if err := led.ApplyFavorableStepWith(m.multipliers[level] / m.multipliers[level-1]); err != nil {
			return RoundResult{}, err
		}
		level++
	}

	steps := led.Steps()
	payout, err := led.CashOut(w)
	if err != nil {
		return RoundResult{}, err
	}
	mult, _ := payout.Div(wager).Float64()
	return RoundResult{Payout: payout, Multiplier: mult, Steps: steps, Won: true, Outcome: engine.OutcomeNormal}, nil
}
