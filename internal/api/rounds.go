package api

import (
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/glitchplay/chance-engine-go/internal/economy"
	"github.com/glitchplay/chance-engine-go/internal/engine"
	"github.com/glitchplay/chance-engine-go/internal/games"
)

var (
	errLadderTopReached = errors.New("api: top level reached, cash out to settle")
	errRoundModel       = errors.New("api: model does not support live rounds")
)

// roundSession is one live round. Each session owns its random source,
// ledger, and wallet; the ladder oracle stays private to the session so the
// pre-sampled failure level can never leak into a response.
type roundSession struct {
	mu sync.Mutex

	id     uuid.UUID
	model  games.Model
	rand   *engine.Rand
	ledger *economy.Ledger
	wallet *economy.Wallet
	wager  decimal.Decimal

	// ladder state
	oracle *games.FailureOracle
	level  int

	step int
	done bool
	last engine.OutcomeKind
}

// roundTable is the in-memory session registry. Sessions live until cash
// out, loss, or process exit; round history is never persisted.
type roundTable struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*roundSession
}

func newRoundTable() *roundTable {
	return &roundTable{sessions: make(map[uuid.UUID]*roundSession)}
}

func (t *roundTable) get(id uuid.UUID) (*roundSession, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	sess, ok := t.sessions[id]
	return sess, ok
}

func (t *roundTable) remove(id uuid.UUID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.sessions, id)
}

// start opens a session and its round. The wallet is seeded with exactly
// the wager: the API models a single-round deposit.
func (t *roundTable) start(model games.Model, seed uint32, wager decimal.Decimal) (*roundSession, error) {
	led, err := economy.NewLedger(model.EconomyConfig())
	if err != nil {
		return nil, err
	}

	sess := &roundSession{
		id:     uuid.New(),
		model:  model,
		rand:   engine.NewRand(seed),
		ledger: led,
		wallet: economy.NewWallet(wager),
		wager:  wager,
	}

	if ladder, ok := model.(*games.LadderModel); ok {
		sess.oracle = ladder.SampleFailurePoint(sess.rand)
		sess.level = 1
	}

	if err := sess.ledger.StartRound(sess.wallet, wager); err != nil {
		return nil, err
	}

	t.mu.Lock()
	t.sessions[sess.id] = sess
	t.mu.Unlock()
	return sess, nil
}

// advance applies one continuation attempt and reports whether the round
// survived it. The caller must hold sess.mu.
func (sess *roundSession) advance() (engine.OutcomeKind, error) {
	switch m := sess.model.(type) {
	case *games.SwipeModel:
		draw := m.Decide(sess.rand)
		if draw.Terminal() {
			if err := sess.ledger.ForfeitOnLoss(); err != nil {
				return "", err
			}
			sess.done = true
			return draw.Kind, nil
		}
		if err := sess.ledger.ApplyFavorableStepWith(draw.Multiplier); err != nil {
			return "", err
		}
		sess.step++
		return draw.Kind, nil

	case *games.LadderModel:
		if sess.level >= m.MaxLevel() {
			return "", errLadderTopReached
		}
		if !sess.oracle.CheckContinuation(sess.level) {
			if err := sess.ledger.ForfeitOnLoss(); err != nil {
				return "", err
			}
			sess.done = true
			return engine.OutcomeDanger, nil
		}
		mults := m.Multipliers()
		if err := sess.ledger.ApplyFavorableStepWith(mults[sess.level] / mults[sess.level-1]); err != nil {
			return "", err
		}
		sess.level++
		sess.step++
		return engine.OutcomeNormal, nil
	}
	return "", errRoundModel
}

func (sess *roundSession) response() RoundResponse {
	wager, _ := sess.wager.Float64()
	return RoundResponse{
		ID:      sess.id.String(),
		Model:   sess.model.Spec().ID,
		Active:  sess.ledger.Active(),
		Step:    sess.step,
		Level:   sess.level,
		Value:   sess.ledger.Value().String(),
		Outcome: string(sess.last),
		Balance: sess.wallet.Balance().String(),
		Wager:   wager,
	}
}
