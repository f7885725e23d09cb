package economy

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func testConfig() Config {
	return Config{HouseEdgeFactor: 0.98, MaxMultiplier: 10000, DefaultStepMultiplier: 1.15}
}

func mustLedger(t *testing.T, cfg Config) *Ledger {
	t.Helper()
	led, err := NewLedger(cfg)
	if err != nil {
		t.Fatalf("NewLedger: %v", err)
	}
	return led
}

func TestConfigValidate(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
		ok   bool
	}{
		{"valid", testConfig(), true},
		{"no edge", Config{HouseEdgeFactor: 1.0, MaxMultiplier: 100, DefaultStepMultiplier: 1}, true},
		{"zero edge factor", Config{HouseEdgeFactor: 0, MaxMultiplier: 100, DefaultStepMultiplier: 1.15}, false},
		{"edge above one", Config{HouseEdgeFactor: 1.01, MaxMultiplier: 100, DefaultStepMultiplier: 1.15}, false},
		{"cap below one", Config{HouseEdgeFactor: 0.98, MaxMultiplier: 0.5, DefaultStepMultiplier: 1.15}, false},
		{"shrinking default step", Config{HouseEdgeFactor: 0.98, MaxMultiplier: 100, DefaultStepMultiplier: 0.9}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.ok && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tc.ok && err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestRoundValueSequence(t *testing.T) {
	led := mustLedger(t, testConfig())
	w := NewWallet(decimal.NewFromInt(1000))

	if err := led.StartRound(w, decimal.NewFromInt(100)); err != nil {
		t.Fatalf("StartRound: %v", err)
	}
	if got := w.Balance(); !got.Equal(decimal.NewFromInt(900)) {
		t.Errorf("balance after wager = %s, want 900", got)
	}
	// Edge applied exactly once at round start.
	if got := led.Value(); !got.Equal(decimal.NewFromInt(98)) {
		t.Errorf("seeded value = %s, want 98", got)
	}

	for i := 0; i < 3; i++ {
		if err := led.ApplyFavorableStep(); err != nil {
			t.Fatalf("step %d: %v", i+1, err)
		}
	}

	payout, err := led.CashOut(w)
	if err != nil {
		t.Fatalf("CashOut: %v", err)
	}
	// 100 * 0.98 * 1.15^3, exact in decimal arithmetic.
	want := decimal.RequireFromString("149.04575")
	if !payout.Equal(want) {
		t.Errorf("payout = %s, want %s", payout, want)
	}
	if got := w.Balance(); !got.Equal(decimal.NewFromInt(900).Add(want)) {
		t.Errorf("balance after cash-out = %s", got)
	}
}

func TestZeroStepCashOut(t *testing.T) {
	led := mustLedger(t, testConfig())
	w := NewWallet(decimal.NewFromInt(100))

	if err := led.StartRound(w, decimal.NewFromInt(100)); err != nil {
		t.Fatalf("StartRound: %v", err)
	}
	payout, err := led.CashOut(w)
	if err != nil {
		t.Fatalf("CashOut with zero steps: %v", err)
	}
	if !payout.Equal(decimal.NewFromInt(98)) {
		t.Errorf("zero-step payout = %s, want 98", payout)
	}
}

func TestDoubleCashOut(t *testing.T) {
	led := mustLedger(t, testConfig())
	w := NewWallet(decimal.NewFromInt(100))

	if err := led.StartRound(w, decimal.NewFromInt(100)); err != nil {
		t.Fatalf("StartRound: %v", err)
	}
	if _, err := led.CashOut(w); err != nil {
		t.Fatalf("first CashOut: %v", err)
	}
	balance := w.Balance()

	if _, err := led.CashOut(w); !errors.Is(err, ErrNoActiveRound) {
		t.Errorf("second CashOut error = %v, want ErrNoActiveRound", err)
	}
	if !w.Balance().Equal(balance) {
		t.Error("second CashOut changed the balance")
	}
}

func TestForfeitOnLoss(t *testing.T) {
	led := mustLedger(t, testConfig())
	w := NewWallet(decimal.NewFromInt(100))

	if err := led.StartRound(w, decimal.NewFromInt(100)); err != nil {
		t.Fatalf("StartRound: %v", err)
	}
	if err := led.ApplyFavorableStep(); err != nil {
		t.Fatalf("step: %v", err)
	}
	if err := led.ForfeitOnLoss(); err != nil {
		t.Fatalf("ForfeitOnLoss: %v", err)
	}
	if !w.Balance().Equal(decimal.Zero) {
		t.Errorf("forfeit credited money: balance = %s", w.Balance())
	}
	if led.Active() {
		t.Error("ledger still active after forfeit")
	}
	if err := led.ForfeitOnLoss(); !errors.Is(err, ErrNoActiveRound) {
		t.Errorf("second forfeit error = %v, want ErrNoActiveRound", err)
	}
}

func TestValueClampedAtCap(t *testing.T) {
	cfg := testConfig()
	cfg.MaxMultiplier = 2
	led := mustLedger(t, cfg)
	w := NewWallet(decimal.NewFromInt(100))

	if err := led.StartRound(w, decimal.NewFromInt(100)); err != nil {
		t.Fatalf("StartRound: %v", err)
	}
	if err := led.ApplyFavorableStepWith(3); err != nil {
		t.Fatalf("step: %v", err)
	}
	if got := led.Value(); !got.Equal(decimal.NewFromInt(200)) {
		t.Errorf("value = %s, want clamped 200", got)
	}
}

func TestStartRoundErrors(t *testing.T) {
	led := mustLedger(t, testConfig())
	w := NewWallet(decimal.NewFromInt(50))

	if err := led.StartRound(w, decimal.Zero); !errors.Is(err, ErrInvalidWager) {
		t.Errorf("zero wager error = %v, want ErrInvalidWager", err)
	}
	if err := led.StartRound(w, decimal.NewFromInt(100)); !errors.Is(err, ErrInsufficientBalance) {
		t.Errorf("overdraft error = %v, want ErrInsufficientBalance", err)
	}
	if !w.Balance().Equal(decimal.NewFromInt(50)) {
		t.Error("failed StartRound moved money")
	}

	if err := led.StartRound(w, decimal.NewFromInt(10)); err != nil {
		t.Fatalf("StartRound: %v", err)
	}
	if err := led.StartRound(w, decimal.NewFromInt(10)); !errors.Is(err, ErrRoundActive) {
		t.Errorf("nested StartRound error = %v, want ErrRoundActive", err)
	}
}

func TestStepErrors(t *testing.T) {
	led := mustLedger(t, testConfig())
	w := NewWallet(decimal.NewFromInt(100))

	if err := led.ApplyFavorableStep(); !errors.Is(err, ErrNoActiveRound) {
		t.Errorf("step without round error = %v, want ErrNoActiveRound", err)
	}
	if err := led.StartRound(w, decimal.NewFromInt(10)); err != nil {
		t.Fatalf("StartRound: %v", err)
	}
	if err := led.ApplyFavorableStepWith(0.5); err == nil {
		t.Error("shrinking multiplier accepted")
	}
}
