package games

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/glitchplay/chance-engine-go/internal/economy"
	"github.com/glitchplay/chance-engine-go/internal/engine"
)

// Volatility selects one of the precomputed reel probability profiles.
type Volatility string

const (
	VolatilityLow    Volatility = "low"
	VolatilityMedium Volatility = "medium"
	VolatilityHigh   Volatility = "high"
)

// ReelsConfig describes one slot configuration.
type ReelsConfig struct {
	Rows       int        `json:"rows" yaml:"rows"`
	Cols       int        `json:"cols" yaml:"cols"`
	Symbols    int        `json:"symbols" yaml:"symbols"`
	PaylineRow int        `json:"payline_row" yaml:"payline_row"`
	Volatility Volatility `json:"volatility" yaml:"volatility"`
	TargetRTP  float64    `json:"target_rtp" yaml:"target_rtp"`

	// FourKindShare is the probability, conditioned on a win, that the win
	// is a four-of-a-kind. Only meaningful with four columns.
	FourKindShare float64 `json:"four_kind_share" yaml:"four_kind_share"`
}

// DefaultReelsConfig returns the stock 3x4 medium-volatility machine.
func DefaultReelsConfig() ReelsConfig {
	return ReelsConfig{
		Rows:          3,
		Cols:          4,
		Symbols:       8,
		PaylineRow:    1,
		Volatility:    VolatilityMedium,
		TargetRTP:     0.95,
		FourKindShare: 0.25,
	}
}

// reelBaseProfile is a volatility tier before RTP normalization: a base hit
// rate plus win-tier multipliers and their selection weights.
type reelBaseProfile struct {
	hitRate     float64
	multipliers []float64
	weights     []float64
}

var reelBaseProfiles = map[Volatility]reelBaseProfile{
	VolatilityLow: {
		hitRate:     0.30,
		multipliers: []float64{1.0, 1.3, 1.8, 2.5, 6.0},
		weights:     []float64{50, 30, 14, 5, 1},
	},
	VolatilityMedium: {
		hitRate:     0.20,
		multipliers: []float64{1.5, 2, 3, 5, 10, 25},
		weights:     []float64{50, 25, 15, 7, 2.5, 0.5},
	},
	VolatilityHigh: {
		hitRate:     0.12,
		multipliers: []float64{2, 4, 8, 16, 40, 80},
		weights:     []float64{40, 32, 18, 7, 2.6, 0.4},
	},
}

// ReelsModel implements the slot variant. The decided outcome fully
// determines payout and payline structure before any grid is built; grid
// construction only realizes it visually.
type ReelsModel struct {
	cfg ReelsConfig

	hitRate     float64
	multipliers []float64 // scaled so hitRate * E[multiplier] == TargetRTP
	cumWeights  []float64
	totalWeight float64

	econ economy.Config
}

// NewReelsModel builds and normalizes a reels model. All table problems —
// unknown volatility, weights that do not sum positive, scaled multipliers
// below 1 — are rejected here, never discovered mid-spin.
func NewReelsModel(cfg ReelsConfig) (*ReelsModel, error) {
	if cfg.Rows < 1 {
		return nil, fmt.Errorf("games: reels rows must be >= 1, got %d", cfg.Rows)
	}
	if cfg.Cols != 3 && cfg.Cols != 4 {
		return nil, fmt.Errorf("games: reels cols must be 3 or 4, got %d", cfg.Cols)
	}
	if cfg.Symbols < 2 {
		return nil, fmt.Errorf("games: reels need at least 2 symbols, got %d", cfg.Symbols)
	}
	if cfg.PaylineRow < 0 || cfg.PaylineRow >= cfg.Rows {
		return nil, fmt.Errorf("games: payline row %d outside grid of %d rows", cfg.PaylineRow, cfg.Rows)
	}
	if cfg.TargetRTP <= 0 || cfg.TargetRTP > 1 {
		return nil, fmt.Errorf("games: reels target RTP must be in (0, 1], got %v", cfg.TargetRTP)
	}
	if cfg.FourKindShare < 0 || cfg.FourKindShare >= 1 {
		return nil, fmt.Errorf("games: four-kind share must be in [0, 1), got %v", cfg.FourKindShare)
	}
	if cfg.Cols == 3 && cfg.FourKindShare != 0 {
		return nil, fmt.Errorf("games: four-kind share requires 4 columns")
	}

	base, ok := reelBaseProfiles[cfg.Volatility]
	if !ok {
		return nil, fmt.Errorf("games: unknown volatility %q", cfg.Volatility)
	}
	if len(base.multipliers) != len(base.weights) || len(base.multipliers) == 0 {
		return nil, fmt.Errorf("games: volatility %q profile is malformed", cfg.Volatility)
	}

	var total, weighted float64
	for i, w := range base.weights {
		if w <= 0 {
			return nil, fmt.Errorf("games: volatility %q has non-positive weight %v", cfg.Volatility, w)
		}
		if base.multipliers[i] <= 0 {
			return nil, fmt.Errorf("games: volatility %q has non-positive multiplier %v", cfg.Volatility, base.multipliers[i])
		}
		total += w
		weighted += w * base.multipliers[i]
	}

	// One scale factor makes hitRate * E[multiplier] hit the target exactly.
	scale := cfg.TargetRTP / (base.hitRate * (weighted / total))

	scaled := make([]float64, len(base.multipliers))
	cum := make([]float64, len(base.weights))
	running := 0.0
	scaledWeighted := 0.0
	for i, m := range base.multipliers {
		scaled[i] = m * scale
		if scaled[i] < 1 {
			return nil, fmt.Errorf("games: volatility %q scaled multiplier %v below 1 at target RTP %v",
				cfg.Volatility, scaled[i], cfg.TargetRTP)
		}
		running += base.weights[i]
		cum[i] = running
		scaledWeighted += base.weights[i] * scaled[i]
	}

	if diff := math.Abs(base.hitRate*(scaledWeighted/total) - cfg.TargetRTP); diff > identityTolerance {
		return nil, fmt.Errorf("games: reels normalization identity off by %v", diff)
	}

	return &ReelsModel{
		cfg:         cfg,
		hitRate:     base.hitRate,
		multipliers: scaled,
		cumWeights:  cum,
		totalWeight: total,
		econ: economy.Config{
			HouseEdgeFactor:       1.0, // edge is inside the normalized tables
			MaxMultiplier:         ladderMaxMultiplier,
			DefaultStepMultiplier: 1.0,
		},
	}, nil
}

// Spec implements Model.
func (m *ReelsModel) Spec() ModelSpec {
	return ModelSpec{ID: "reels", Name: "Reels", OutcomeLabel: "payline"}
}

// EconomyConfig implements Model.
func (m *ReelsModel) EconomyConfig() economy.Config { return m.econ }

// Config returns the model's configuration.
func (m *ReelsModel) Config() ReelsConfig { return m.cfg }

// HitRate returns the per-spin win probability.
func (m *ReelsModel) HitRate() float64 { return m.hitRate }

// TierMultipliers returns a copy of the scaled win-tier multipliers.
func (m *ReelsModel) TierMultipliers() []float64 {
	return append([]float64(nil), m.multipliers...)
}

// Decide decides one spin outcome. Draw order is fixed: hit, tier, kind
// split (4-column grids only), winning symbol.
func (m *ReelsModel) Decide(r *engine.Rand) engine.OutcomeDraw {
	if !r.Bool(m.hitRate) {
		return engine.OutcomeDraw{Kind: engine.OutcomeNoWin, Symbol: -1}
	}

	// Cumulative-weight scan against one draw scaled to the total weight.
	f := r.Float64() * m.totalWeight
	tier := len(m.multipliers) - 1
	for i, c := range m.cumWeights {
		if f < c {
			tier = i
			break
		}
	}

	kind := engine.OutcomeThreeKind
	if m.cfg.Cols == 4 && r.Bool(m.cfg.FourKindShare) {
		kind = engine.OutcomeFourKind
	}

	// Symbol identity is uniform and independent of the tier.
	symbol := r.IntN(m.cfg.Symbols)

	return engine.OutcomeDraw{Kind: kind, Multiplier: m.multipliers[tier], Symbol: symbol}
}

// SpinResult is one decided and visually realized spin.
type SpinResult struct {
	Outcome engine.OutcomeDraw `json:"outcome"`
	Grid    Grid               `json:"grid"`
}

// Spin decides an outcome and builds a grid that realizes it. A grid that
// disagrees with its outcome is an engine bug and surfaces as an error.
func (m *ReelsModel) Spin(r *engine.Rand) (SpinResult, error) {
	outcome := m.Decide(r)
	grid, err := BuildGrid(m.cfg, r, outcome)
	if err != nil {
		return SpinResult{}, err
	}
	return SpinResult{Outcome: outcome, Grid: grid}, nil
}

// PlayRound implements Model. A reels round is a single spin: the wager is
// settled immediately from the decided outcome. The strategy is not
// consulted — there is no stopping decision to make.
func (m *ReelsModel) PlayRound(r *engine.Rand, led *economy.Ledger, w *economy.Wallet, wager decimal.Decimal, strat Strategy) (RoundResult, error) {
	spin, err := m.Spin(r)
	if err != nil {
		return RoundResult{}, err
	}

	if err := led.StartRound(w, wager); err != nil {
		return RoundResult{}, err
	}

	if !spin.Outcome.Favorable() {
		if err := led.ForfeitOnLoss(); err != nil {
			return RoundResult{}, err
		}
		return RoundResult{Outcome: spin.Outcome.Kind}, nil
	}

	if err := led.ApplyFavorableStepWith(spin.Outcome.Multiplier); err != nil {
		return RoundResult{}, err
	}
	payout, err := led.CashOut(w)
	if err != nil {
		return RoundResult{}, err
	}
	mult, _ := payout.Div(wager).Float64()
	return RoundResult{Payout: payout, Multiplier: mult, Steps: 1, Won: true, Outcome: spin.Outcome.Kind}, nil
}
