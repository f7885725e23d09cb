// Package games holds the probability models for the three chance game
// variants: swipe (card-draw danger model), ladder (pre-sampled failure
// level), and reels (payline slot). Each model decides outcomes from a
// deterministic random source and drives the round economy; none of them
// touch money directly beyond the ledger API.
package games

import (
	"fmt"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/glitchplay/chance-engine-go/internal/economy"
	"github.com/glitchplay/chance-engine-go/internal/engine"
)

// ModelSpec describes a registered model.
type ModelSpec struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	OutcomeLabel string `json:"outcome_label"`
}

// StepState is the information a strategy may observe before each
// continuation decision. It deliberately contains nothing about future
// outcomes: a pre-sampled failure point is never reachable from here.
type StepState struct {
	// Step is the 1-based index of the decision being made.
	Step int `json:"step"`

	// Level is the ladder level currently held; zero for other variants.
	Level int `json:"level"`

	// Multiplier is the accumulated round value in wager units.
	Multiplier float64 `json:"multiplier"`
}

// Strategy decides whether the player keeps going before each step.
type Strategy interface {
	Continue(s StepState) bool
}

// StrategyFunc adapts a plain function to the Strategy interface.
type StrategyFunc func(s StepState) bool

// Continue implements Strategy.
func (f StrategyFunc) Continue(s StepState) bool { return f(s) }

// StopAfter returns a strategy that takes exactly n steps and then stops.
func StopAfter(n int) Strategy {
	return StrategyFunc(func(s StepState) bool { return s.Step <= n })
}

// RoundResult summarizes one completed round.
type RoundResult struct {
	// Payout is the amount credited on cash-out, zero on a terminal loss.
	Payout decimal.Decimal

	// Multiplier is Payout expressed in wager units.
	Multiplier float64

	// Steps is the number of favorable steps applied.
	Steps int

	// Won reports whether the round ended in a cash-out.
	Won bool

	// Outcome is the terminal outcome kind of the round.
	Outcome engine.OutcomeKind
}

// Model is one playable game variant. Implementations are stateless and
// safe to share; all per-round state lives in the caller-supplied random
// source and ledger.
type Model interface {
	Spec() ModelSpec

	// EconomyConfig returns the economy constants the variant plays under.
	EconomyConfig() economy.Config

	// PlayRound plays one complete round: it deducts the wager, drives
	// steps against the strategy, and settles the ledger. The ledger must
	// be built from EconomyConfig and must not have an active round.
	PlayRound(r *engine.Rand, led *economy.Ledger, w *economy.Wallet, wager decimal.Decimal, strat Strategy) (RoundResult, error)
}

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Model)
)

// Register adds a model to the registry, replacing any previous entry with
// the same ID.
func Register(m Model) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[m.Spec().ID] = m
}

// Get retrieves a model by ID.
func Get(id string) (Model, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	m, ok := registry[id]
	return m, ok
}

// List returns the registered model IDs in sorted order.
func List() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	ids := make([]string, 0, len(registry))
	for id := range registry {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// init registers the default-configured variants.
func init() {
	Register(NewSwipeModel())
	Register(NewLadderModel())

	reels, err := NewReelsModel(DefaultReelsConfig())
	if err != nil {
		panic(fmt.Sprintf("games: default reels config invalid: %v", err))
	}
	Register(reels)
}
