// Package economy tracks wagered money and the running round value.
//
// The house edge is applied exactly once, when a round starts. Every later
// favorable step multiplies the accumulated value without any further
// discount, which is what makes the expected return independent of how many
// steps a player takes before stopping.
package economy

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// ErrRoundActive is returned when a round is started over a live one.
	ErrRoundActive = errors.New("economy: round already active")

	// ErrNoActiveRound is returned by step, cash-out, and forfeit calls on an
	// empty ledger. A repeated cash-out is an explicit error, never a silent
	// double payout.
	ErrNoActiveRound = errors.New("economy: no active round")

	// ErrInvalidWager is returned for zero or negative wagers.
	ErrInvalidWager = errors.New("economy: wager must be positive")

	// ErrInsufficientBalance is returned when the wallet cannot cover a wager.
	ErrInsufficientBalance = errors.New("economy: insufficient balance")
)

// Config holds the economy constants for one game variant.
type Config struct {
	// HouseEdgeFactor discounts the seeded round value once per round.
	// 0.98 means a 2% edge. Variants that bake their edge into the
	// probability tables use 1.0 here.
	HouseEdgeFactor float64

	// MaxMultiplier caps the accumulated value at wager * MaxMultiplier.
	MaxMultiplier float64

	// DefaultStepMultiplier is used by favorable steps that do not carry
	// their own multiplier.
	DefaultStepMultiplier float64
}

// Validate rejects configurations that would corrupt round accounting.
func (c Config) Validate() error {
	if c.HouseEdgeFactor <= 0 || c.HouseEdgeFactor > 1 {
		return fmt.Errorf("economy: house edge factor must be in (0, 1], got %v", c.HouseEdgeFactor)
	}
	if c.MaxMultiplier < 1 {
		return fmt.Errorf("economy: max multiplier must be >= 1, got %v", c.MaxMultiplier)
	}
	if c.DefaultStepMultiplier < 1 {
		return fmt.Errorf("economy: default step multiplier must be >= 1, got %v", c.DefaultStepMultiplier)
	}
	return nil
}

// Wallet is a player balance. It only moves money in and out; round
// bookkeeping lives in the Ledger.
type Wallet struct {
	balance decimal.Decimal
}

// NewWallet creates a wallet with the given starting balance.
func NewWallet(balance decimal.Decimal) *Wallet {
	return &Wallet{balance: balance}
}

// Balance returns the current balance.
func (w *Wallet) Balance() decimal.Decimal { return w.balance }

// Credit adds amount to the balance.
func (w *Wallet) Credit(amount decimal.Decimal) {
	w.balance = w.balance.Add(amount)
}

func (w *Wallet) debit(amount decimal.Decimal) error {
	if w.balance.LessThan(amount) {
		return ErrInsufficientBalance
	}
	w.balance = w.balance.Sub(amount)
	return nil
}

// Ledger is the per-round value accumulator. One ledger serves one logical
// round at a time and is never shared across concurrent rounds.
type Ledger struct {
	cfg    Config
	wager  decimal.Decimal
	value  decimal.Decimal
	steps  int
	active bool
}

// NewLedger creates a ledger for the given economy configuration.
func NewLedger(cfg Config) (*Ledger, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Ledger{cfg: cfg}, nil
}

// StartRound deducts wager from the wallet and seeds the accumulated value
// with wager * HouseEdgeFactor. The edge is applied here and nowhere else.
func (l *Ledger) StartRound(w *Wallet, wager decimal.Decimal) error {
	if l.active {
		return ErrRoundActive
	}
	if wager.Sign() <= 0 {
		return ErrInvalidWager
	}
	if err := w.debit(wager); err != nil {
		return err
	}
	l.wager = wager
	l.value = wager.Mul(decimal.NewFromFloat(l.cfg.HouseEdgeFactor))
	l.steps = 0
	l.active = true
	return nil
}

// ApplyFavorableStep multiplies the accumulated value by the default step
// multiplier and clamps at the configured cap.
func (l *Ledger) ApplyFavorableStep() error {
	return l.ApplyFavorableStepWith(l.cfg.DefaultStepMultiplier)
}

// ApplyFavorableStepWith multiplies the accumulated value by the given
// multiplier. Multipliers below 1 are rejected: the accumulated value is
// monotonically non-decreasing within a round.
func (l *Ledger) ApplyFavorableStepWith(multiplier float64) error {
	if !l.active {
		return ErrNoActiveRound
	}
	if multiplier < 1 {
		return fmt.Errorf("economy: step multiplier must be >= 1, got %v", multiplier)
	}
	l.value = l.value.Mul(decimal.NewFromFloat(multiplier))
	cap := l.wager.Mul(decimal.NewFromFloat(l.cfg.MaxMultiplier))
	if l.value.GreaterThan(cap) {
		l.value = cap
	}
	l.steps++
	return nil
}

// CashOut credits the accumulated value to the wallet, returns the credited
// amount, and empties the ledger. Cashing out with zero steps taken returns
// the seeded value.
func (l *Ledger) CashOut(w *Wallet) (decimal.Decimal, error) {
	if !l.active {
		return decimal.Zero, ErrNoActiveRound
	}
	credited := l.value
	w.Credit(credited)
	l.reset()
	return credited, nil
}

// ForfeitOnLoss discards the accumulated value and empties the ledger.
func (l *Ledger) ForfeitOnLoss() error {
	if !l.active {
		return ErrNoActiveRound
	}
	l.reset()
	return nil
}

func (l *Ledger) reset() {
	l.wager = decimal.Zero
	l.value = decimal.Zero
	l.steps = 0
	l.active = false
}

// Active reports whether a round is in progress.
func (l *Ledger) Active() bool { return l.active }

// Value returns the current accumulated value.
func (l *Ledger) Value() decimal.Decimal { return l.value }

// Wager returns the wager fixed at round start.
func (l *Ledger) Wager() decimal.Decimal { return l.wager }

// Steps returns the number of favorable steps applied this round.
func (l *Ledger) Steps() int { return l.steps }
