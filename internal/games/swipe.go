package games

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/glitchplay/chance-engine-go/internal/economy"
	"github.com/glitchplay/chance-engine-go/internal/engine"
)

// SwipeModel implements the card-draw danger model behind the
// swipe-to-survive variant. Each step draws danger with a fixed
// probability; surviving draws pay either a bonus or a normal multiplier.
//
// The normal multiplier is never configured directly. It is derived so that
//
//	(1 - P(danger)) * (P(bonus)*bonusMult + (1-P(bonus))*normalMult) = 1
//
// which makes every step a fair coin in expectation: the only edge the
// house has is the one-time factor applied when the round starts. Changing
// any of the three configured constants re-derives the fourth.
type SwipeModel struct {
	dangerProb float64
	bonusProb  float64 // conditional on a safe draw
	bonusMult  float64
	normalMult float64
	econ       economy.Config
}

// Default swipe calibration: the 1.96% bonus variant.
const (
	SwipeDangerProb      = 0.15
	SwipeBonusProb       = 0.0196
	SwipeBonusMultiplier = 3.0

	swipeHouseEdgeFactor = 0.98
	swipeMaxMultiplier   = 10000

	// swipeStepGuard bounds a round against strategies that never stop.
	// The value cap is reached long before this; the guard only prevents a
	// runaway loop from a misbehaving script.
	swipeStepGuard = 100000
)

// identityTolerance bounds the numeric drift allowed in the depth-invariance
// and normalization identities.
const identityTolerance = 1e-9

// NewSwipeModel returns the swipe model with the default calibration.
func NewSwipeModel() *SwipeModel {
	m, err := NewSwipeModelParams(SwipeDangerProb, SwipeBonusProb, SwipeBonusMultiplier)
	if err != nil {
		panic(fmt.Sprintf("games: default swipe calibration invalid: %v", err))
	}
	return m
}

// NewSwipeModelParams builds a swipe model from a calibration, deriving the
// normal multiplier from the depth-invariance identity. Calibrations that
// produce a normal multiplier below 1 are rejected: a favorable step must
// never shrink the round value.
func NewSwipeModelParams(dangerProb, bonusProb, bonusMultiplier float64) (*SwipeModel, error) {
	if dangerProb <= 0 || dangerProb >= 1 {
		return nil, fmt.Errorf("games: swipe danger probability must be in (0, 1), got %v", dangerProb)
	}
	if bonusProb < 0 || bonusProb >= 1 {
		return nil, fmt.Errorf("games: swipe bonus probability must be in [0, 1), got %v", bonusProb)
	}
	if bonusMultiplier < 1 {
		return nil, fmt.Errorf("games: swipe bonus multiplier must be >= 1, got %v", bonusMultiplier)
	}

	normalMult := (1/(1-dangerProb) - bonusProb*bonusMultiplier) / (1 - bonusProb)
	if normalMult < 1 {
		return nil, fmt.Errorf("games: swipe calibration yields normal multiplier %v < 1", normalMult)
	}

	m := &SwipeModel{
		dangerProb: dangerProb,
		bonusProb:  bonusProb,
		bonusMult:  bonusMultiplier,
		normalMult: normalMult,
		econ: economy.Config{
			HouseEdgeFactor:       swipeHouseEdgeFactor,
			MaxMultiplier:         swipeMaxMultiplier,
			DefaultStepMultiplier: normalMult,
		},
	}
	if diff := math.Abs(m.ExpectedStepValue() - 1); diff > identityTolerance {
		return nil, fmt.Errorf("games: swipe depth-invariance identity off by %v", diff)
	}
	return m, nil
}

// Spec implements Model.
func (m *SwipeModel) Spec() ModelSpec {
	return ModelSpec{ID: "swipe", Name: "Swipe To Survive", OutcomeLabel: "draw"}
}

// EconomyConfig implements Model.
func (m *SwipeModel) EconomyConfig() economy.Config { return m.econ }

// NormalMultiplier returns the derived safe-draw multiplier.
func (m *SwipeModel) NormalMultiplier() float64 { return m.normalMult }

// ExpectedStepValue returns the expected multiplier of one step. By
// construction this is 1: each step neither favors nor penalizes the player.
func (m *SwipeModel) ExpectedStepValue() float64 {
	return (1 - m.dangerProb) * (m.bonusProb*m.bonusMult + (1-m.bonusProb)*m.normalMult)
}

// Decide draws exactly one outcome: danger, bonus, or normal. It consumes
// one random draw for danger and, on a safe draw, one more for the bonus
// split.
func (m *SwipeModel) Decide(r *engine.Rand) engine.OutcomeDraw {
	if r.Bool(m.dangerProb) {
		return engine.OutcomeDraw{Kind: engine.OutcomeDanger, Symbol: -1}
	}
	if r.Bool(m.bonusProb) {
		return engine.OutcomeDraw{Kind: engine.OutcomeBonus, Multiplier: m.bonusMult, Symbol: -1}
	}
	return engine.OutcomeDraw{Kind: engine.OutcomeNormal, Multiplier: m.normalMult, Symbol: -1}
}

// PlayRound implements Model. The strategy is consulted before every draw;
// declining the first draw cashes out the seeded value.
func (m *SwipeModel) PlayRound(r *engine.Rand, led *economy.Ledger, w *economy.Wallet, wager decimal.Decimal, strat Strategy) (RoundResult, error) {
	if err := led.StartRound(w, wager); err != nil {
		return RoundResult{}, err
	}

	last := engine.OutcomeNormal
	for step := 1; step <= swipeStepGuard; step++ {
		mult, _ := led.Value().Div(wager).Float64()
		if !strat.Continue(StepState{Step: step, Multiplier: mult}) {
			break
		}

		draw := m.Decide(r)
		if draw.Terminal() {
			if err := led.ForfeitOnLoss(); err != nil {
				return RoundResult{}, err
			}
			return RoundResult{Outcome: engine.OutcomeDanger}, nil
		}
		if err := led.ApplyFavorableStepWith(draw.Multiplier); err != nil {
			return RoundResult{}, err
		}
		last = draw.Kind
	}

	steps := led.Steps()
	payout, err := led.CashOut(w)
	if err != nil {
		return RoundResult{}, err
	}
	mult, _ := payout.Div(wager).Float64()
	return RoundResult{Payout: payout, Multiplier: mult, Steps: steps, Won: true, Outcome: last}, nil
}
