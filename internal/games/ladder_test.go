package games

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/glitchplay/chance-engine-go/internal/economy"
	"github.com/glitchplay/chance-engine-go/internal/engine"
)

func TestLadderStrategyInvarianceIdentity(t *testing.T) {
	m := NewLadderModel()
	mult := m.Multipliers()
	surv := m.Survival()

	// survival[1] prices the first climb at exactly the target RTP.
	if diff := math.Abs(surv[0]*mult[1] - 0.95); diff > 1e-12 {
		t.Errorf("first-level EV off target RTP by %v", diff)
	}
	// For every later level, climbing once more is EV-neutral:
	// survival[k] * multiplier[k+1] == multiplier[k].
	for i := 1; i < len(surv); i++ {
		if diff := math.Abs(surv[i]*mult[i+1] - mult[i]); diff > 1e-9 {
			t.Errorf("level %d: survival*next = %v, want %v (off by %v)",
				i+1, surv[i]*mult[i+1], mult[i], diff)
		}
	}
}

func TestLadderTableValidation(t *testing.T) {
	cases := []struct {
		name  string
		rtp   float64
		table []float64
	}{
		{"rtp zero", 0, []float64{1.0, 1.5}},
		{"rtp above one", 1.5, []float64{1.0, 1.5}},
		{"too short", 0.95, []float64{1.0}},
		{"entry not one", 0.95, []float64{1.1, 1.5, 2.0}},
		{"not increasing", 0.95, []float64{1.0, 2.0, 1.5}},
		{"duplicate level", 0.95, []float64{1.0, 1.5, 1.5}},
		{"decreasing two-level", 0.95, []float64{1.0, 0.9}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewLadderModelParams(tc.rtp, tc.table); err == nil {
				t.Error("expected construction error, got nil")
			}
		})
	}
}

func TestLadderDefaultTable(t *testing.T) {
	m := NewLadderModel()
	if m.MaxLevel() != LadderMaxLevel {
		t.Errorf("MaxLevel = %d, want %d", m.MaxLevel(), LadderMaxLevel)
	}
	for _, p := range m.Survival() {
		if p <= 0 || p >= 1 {
			t.Errorf("survival probability %v outside (0, 1)", p)
		}
	}
}

func TestSampleFailurePointSeed42(t *testing.T) {
	m := NewLadderModel()
	oracle := m.SampleFailurePoint(engine.NewRand(42))

	if oracle.failLevel < 0 || oracle.failLevel > LadderMaxLevel-1 {
		t.Fatalf("failure level %d outside [0, %d]", oracle.failLevel, LadderMaxLevel-1)
	}

	// The oracle must agree with itself: every level below the failure
	// point survives, the failure point and everything above it does not
	// survive once reached.
	if oracle.failLevel == 0 {
		for lvl := 1; lvl < LadderMaxLevel; lvl++ {
			if !oracle.CheckContinuation(lvl) {
				t.Errorf("never-fails oracle rejected level %d", lvl)
			}
		}
	} else {
		for lvl := 1; lvl < oracle.failLevel; lvl++ {
			if !oracle.CheckContinuation(lvl) {
				t.Errorf("level %d below failure point %d did not survive", lvl, oracle.failLevel)
			}
		}
		if oracle.CheckContinuation(oracle.failLevel) {
			t.Errorf("continuation at failure level %d survived", oracle.failLevel)
		}
	}
}

func TestFailurePointDistribution(t *testing.T) {
	m := NewLadderModel()
	surv := m.Survival()
	r := engine.NewRand(99)

	const n = 300000
	counts := make(map[int]int)
	for i := 0; i < n; i++ {
		counts[m.SampleFailurePoint(r).failLevel]++
	}

	// P(fail at k) = survival[1]*...*survival[k-1] * (1 - survival[k]).
	reach := 1.0
	for k := 1; k <= 5; k++ {
		want := reach * (1 - surv[k-1])
		got := float64(counts[k]) / n
		if math.Abs(got-want) > 0.006 {
			t.Errorf("P(failure at level %d) = %v, want %v", k, got, want)
		}
		reach *= surv[k-1]
	}

	wantNever := reach
	for k := 6; k <= len(surv); k++ {
		wantNever *= surv[k-1]
	}
	gotNever := float64(counts[0]) / n
	if math.Abs(gotNever-wantNever) > 0.003 {
		t.Errorf("P(never fails) = %v, want %v", gotNever, wantNever)
	}
}

func TestLadderPlayRoundPayouts(t *testing.T) {
	m := NewLadderModel()
	led, err := economy.NewLedger(m.EconomyConfig())
	if err != nil {
		t.Fatalf("NewLedger: %v", err)
	}
	w := economy.NewWallet(decimal.NewFromInt(10000))
	mult := m.Multipliers()

	for seed := uint32(1); seed <= 300; seed++ {
		res, err := m.PlayRound(engine.NewRand(seed), led, w, decimal.NewFromInt(1), StopAfter(5))
		if err != nil {
			t.Fatalf("seed %d: %v", seed, err)
		}
		if !res.Won {
			if res.Payout.Sign() != 0 {
				t.Fatalf("seed %d: lost with payout %s", seed, res.Payout)
			}
			continue
		}
		// Surviving all 5 climbs holds level 6 and pays its multiplier.
		want := mult[res.Steps]
		if math.Abs(res.Multiplier-want) > 1e-9 {
			t.Fatalf("seed %d: payout multiplier %v at level %d, want %v",
				seed, res.Multiplier, res.Steps+1, want)
		}
	}
}

func TestLadderImmediateCashOutRefundsWager(t *testing.T) {
	m := NewLadderModel()
	led, err := economy.NewLedger(m.EconomyConfig())
	if err != nil {
		t.Fatalf("NewLedger: %v", err)
	}
	w := economy.NewWallet(decimal.NewFromInt(10))

	res, err := m.PlayRound(engine.NewRand(3), led, w, decimal.NewFromInt(10), StopAfter(0))
	if err != nil {
		t.Fatalf("PlayRound: %v", err)
	}
	// The entry level pays 1.0 and the ladder ledger carries no separate
	// edge factor, so declining every climb refunds the wager.
	if !res.Payout.Equal(decimal.NewFromInt(10)) {
		t.Errorf("payout = %s, want 10", res.Payout)
	}
}

func TestLadderTopLevelStops(t *testing.T) {
	m := NewLadderModel()
	led, err := economy.NewLedger(m.EconomyConfig())
	if err != nil {
		t.Fatalf("NewLedger: %v", err)
	}
	w := economy.NewWallet(decimal.NewFromInt(1))
	mult := m.Multipliers()

	// An always-continue strategy climbs until it dies or tops out; a
	// winning round can never pay more than the top multiplier.
	always := StrategyFunc(func(StepState) bool { return true })
	for seed := uint32(1); seed <= 500; seed++ {
		w.Credit(decimal.NewFromInt(1))
		res, err := m.PlayRound(engine.NewRand(seed), led, w, decimal.NewFromInt(1), always)
		if err != nil {
			t.Fatalf("seed %d: %v", seed, err)
		}
		if res.Won && math.Abs(res.Multiplier-mult[len(mult)-1]) > 1e-9 {
			t.Fatalf("seed %d: won %vx, top-out should pay %vx", seed, res.Multiplier, mult[len(mult)-1])
		}
	}
}
