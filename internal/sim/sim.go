// Package sim is the Monte-Carlo harness that proves the probability models
// are self-consistent: it plays large numbers of rounds under fixed
// strategies and fixed seeds, aggregates realized RTP and distribution
// statistics, and re-checks every constructed reel grid against the outcome
// that was decided before the grid existed.
package sim

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/glitchplay/chance-engine-go/internal/economy"
	"github.com/glitchplay/chance-engine-go/internal/engine"
	"github.com/glitchplay/chance-engine-go/internal/games"
	"github.com/glitchplay/chance-engine-go/internal/scripting"
)

// Options configures one simulation run.
type Options struct {
	// Model is the registered model ID: swipe, ladder, or reels.
	Model string `json:"model"`

	// Seed is the base seed; batch generators are derived from it, so a
	// fixed seed and batch count reproduce the run exactly.
	Seed uint32 `json:"seed"`

	// Spins is the number of rounds to play.
	Spins int `json:"spins"`

	// Wager is the per-round wager; defaults to 1.
	Wager float64 `json:"wager"`

	// StopAt is the fixed strategy: take this many steps, then cash out.
	// Ignored by the reels model. Defaults to 3.
	StopAt int `json:"stop_at"`

	// Script, when set, replaces StopAt with a decide(state) JavaScript
	// strategy. Each batch gets its own VM.
	Script string `json:"script,omitempty"`

	// Batches fixes how the work is split. It is part of the reproducibility
	// contract; defaults to 64 (or Spins when smaller).
	Batches int `json:"batches"`

	// Workers bounds concurrency and has no effect on results. Defaults to
	// GOMAXPROCS.
	Workers int `json:"workers"`
}

func (o *Options) applyDefaults() {
	if o.Wager <= 0 {
		o.Wager = 1
	}
	if o.StopAt <= 0 {
		o.StopAt = 3
	}
	if o.Batches <= 0 {
		o.Batches = 64
	}
	if o.Batches > o.Spins {
		o.Batches = o.Spins
	}
	if o.Workers <= 0 {
		o.Workers = runtime.GOMAXPROCS(0)
	}
}

// Report is the aggregate result of a run.
type Report struct {
	Model string `json:"model"`
	Seed  uint32 `json:"seed"`
	Spins int    `json:"spins"`

	TotalWagered  float64 `json:"total_wagered"`
	TotalReturned float64 `json:"total_returned"`
	RealizedRTP   float64 `json:"realized_rtp"`

	Wins    uint64  `json:"wins"`
	Losses  uint64  `json:"losses"`
	HitRate float64 `json:"hit_rate"`

	MaxMultiplier  float64 `json:"max_multiplier"`
	MeanMultiplier float64 `json:"mean_multiplier"`
	StdDev         float64 `json:"std_dev"`

	// StdErr is the standard error of the realized RTP estimate, for
	// convergence assertions.
	StdErr float64 `json:"std_err"`

	Buckets []Bucket      `json:"buckets"`
	Elapsed time.Duration `json:"elapsed"`
}

// MismatchError reports a spin whose grid disagreed with its pre-decided
// outcome. It aborts the run: this is an engine defect, not noise.
type MismatchError struct {
	SpinIndex uint64
	Expected  engine.OutcomeKind
	Actual    engine.OutcomeKind
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("sim: spin %d grid mismatch: expected %q, payline evaluated to %q",
		e.SpinIndex, e.Expected, e.Actual)
}

type batchJob struct {
	index int
	start uint64 // global index of the batch's first spin
	spins int
}

// Run executes a simulation and returns its aggregate report.
func Run(ctx context.Context, opts Options) (*Report, error) {
	opts.applyDefaults()
	if opts.Spins <= 0 {
		return nil, fmt.Errorf("sim: spins must be positive, got %d", opts.Spins)
	}
	model, ok := games.Get(opts.Model)
	if !ok {
		return nil, fmt.Errorf("sim: unknown model %q", opts.Model)
	}
	if opts.Script != "" {
		// Compile once up front so a broken script fails before any work.
		if _, err := scripting.NewStrategy(opts.Script); err != nil {
			return nil, err
		}
	}

	start := time.Now()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan batchJob)
	results := make([]*batchStats, opts.Batches)
	errCh := make(chan error, opts.Workers)

	var wg sync.WaitGroup
	for w := 0; w < opts.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				stats, err := runBatch(ctx, model, opts, job)
				if err != nil {
					select {
					case errCh <- err:
					default:
					}
					cancel()
					return
				}
				results[job.index] = stats
			}
		}()
	}

	base, rem := opts.Spins/opts.Batches, opts.Spins%opts.Batches
	var offset uint64
dispatch:
	for i := 0; i < opts.Batches; i++ {
		n := base
		if i < rem {
			n++
		}
		select {
		case jobs <- batchJob{index: i, start: offset, spins: n}:
			offset += uint64(n)
		case <-ctx.Done():
			break dispatch
		}
	}
	close(jobs)
	wg.Wait()

	select {
	case err := <-errCh:
		return nil, err
	default:
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	total := newBatchStats()
	for _, stats := range results {
		total.merge(stats)
	}

	n := float64(total.rounds)
	rep := &Report{
		Model:          opts.Model,
		Seed:           opts.Seed,
		Spins:          opts.Spins,
		TotalWagered:   n * opts.Wager,
		TotalReturned:  total.sumMult * opts.Wager,
		RealizedRTP:    total.mean(),
		Wins:           total.wins,
		Losses:         total.rounds - total.wins,
		HitRate:        float64(total.wins) / n,
		MaxMultiplier:  total.maxMult,
		MeanMultiplier: total.mean(),
		StdDev:         total.stdDev(),
		StdErr:         total.stdDev() / math.Sqrt(n),
		Buckets:        total.buckets,
		Elapsed:        time.Since(start),
	}
	return rep, nil
}

// runBatch plays one batch with its own derived-seed generator, ledger, and
// wallet. Nothing is shared with other batches.
func runBatch(ctx context.Context, model games.Model, opts Options, job batchJob) (*batchStats, error) {
	r := engine.NewRand(engine.DeriveSeed(opts.Seed, uint32(job.index)))

	strat, err := batchStrategy(opts)
	if err != nil {
		return nil, err
	}

	led, err := economy.NewLedger(model.EconomyConfig())
	if err != nil {
		return nil, err
	}
	wager := decimal.NewFromFloat(opts.Wager)
	wallet := economy.NewWallet(decimal.Zero)

	stats := newBatchStats()
	reels, isReels := model.(*games.ReelsModel)

	for i := 0; i < job.spins; i++ {
		if i%4096 == 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			default:
			}
		}

		// The wallet only ever holds this round's stake; aggregate money
		// accounting lives in the stats, not the wallet.
		wallet.Credit(wager)

		if isReels {
			if err := playVerifiedSpin(reels, r, led, wallet, wager, stats, job.start+uint64(i)); err != nil {
				return nil, err
			}
			continue
		}

		res, err := model.PlayRound(r, led, wallet, wager, strat)
		if err != nil {
			return nil, fmt.Errorf("sim: spin %d: %w", job.start+uint64(i), err)
		}
		stats.record(res.Multiplier, res.Won)
	}
	return stats, nil
}

// playVerifiedSpin plays one reels round and independently re-evaluates the
// constructed grid's payline against the decided outcome. Any disagreement
// aborts the run with the spin index and both kinds.
func playVerifiedSpin(m *games.ReelsModel, r *engine.Rand, led *economy.Ledger, w *economy.Wallet, wager decimal.Decimal, stats *batchStats, spinIndex uint64) error {
	spin, err := m.Spin(r)
	if err != nil {
		return fmt.Errorf("sim: spin %d: %w", spinIndex, err)
	}

	cfg := m.Config()
	got := games.EvaluatePayline(spin.Grid.Row(cfg.PaylineRow), cfg.Cols)
	if got != spin.Outcome.Kind {
		return &MismatchError{SpinIndex: spinIndex, Expected: spin.Outcome.Kind, Actual: got}
	}

	if err := led.StartRound(w, wager); err != nil {
		return fmt.Errorf("sim: spin %d: %w", spinIndex, err)
	}
	if !spin.Outcome.Favorable() {
		if err := led.ForfeitOnLoss(); err != nil {
			return fmt.Errorf("sim: spin %d: %w", spinIndex, err)
		}
		stats.record(0, false)
		return nil
	}
	if err := led.ApplyFavorableStepWith(spin.Outcome.Multiplier); err != nil {
		return fmt.Errorf("sim: spin %d: %w", spinIndex, err)
	}
	payout, err := led.CashOut(w)
	if err != nil {
		return fmt.Errorf("sim: spin %d: %w", spinIndex, err)
	}
	mult, _ := payout.Div(wager).Float64()
	stats.record(mult, true)
	return nil
}

func batchStrategy(opts Options) (games.Strategy, error) {
	if opts.Script != "" {
		return scripting.NewStrategy(opts.Script)
	}
	return games.StopAfter(opts.StopAt), nil
}
