// Command simulate runs Monte-Carlo simulations against the outcome engine
// and prints the aggregate report.
//
// Examples:
//
//	simulate -model swipe -seed 42 -spins 1000000 -stop-at 3
//	simulate -model ladder -seed 42 -spins 1000000 -stop-at 10
//	simulate -model reels -seed 7 -spins 1000000
//	simulate -model swipe -spins 100000 -script strategy.js
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/glitchplay/chance-engine-go/internal/config"
	"github.com/glitchplay/chance-engine-go/internal/games"
	"github.com/glitchplay/chance-engine-go/internal/sim"
)

func main() {
	var (
		model      = flag.String("model", "reels", "model to simulate: "+strings.Join(games.List(), ", "))
		seed       = flag.Uint("seed", 1, "base seed (32-bit)")
		spins      = flag.Int("spins", 1_000_000, "number of rounds to simulate")
		wager      = flag.Float64("wager", 1, "per-round wager")
		stopAt     = flag.Int("stop-at", 3, "fixed strategy: steps to take before cashing out")
		scriptPath = flag.String("script", "", "path to a decide(state) JavaScript strategy")
		configPath = flag.String("config", "", "optional YAML game configuration")
	)
	flag.Parse()

	logger := log.New(os.Stderr, "[SIM] ", log.LstdFlags)

	if *configPath != "" {
		cfg, err := config.Load(*configPath)
		if err != nil {
			logger.Fatalf("load config: %v", err)
		}
		if err := cfg.Apply(); err != nil {
			logger.Fatalf("apply config: %v", err)
		}
	}

	opts := sim.Options{
		Model:  *model,
		Seed:   uint32(*seed),
		Spins:  *spins,
		Wager:  *wager,
		StopAt: *stopAt,
	}
	if *scriptPath != "" {
		src, err := os.ReadFile(*scriptPath)
		if err != nil {
			logger.Fatalf("read script: %v", err)
		}
		opts.Script = string(src)
	}

	report, err := sim.Run(context.Background(), opts)
	if err != nil {
		logger.Fatalf("simulation failed: %v", err)
	}

	printReport(report)
}

func printReport(r *sim.Report) {
	fmt.Printf("model          %s\n", r.Model)
	fmt.Printf("seed           %d\n", r.Seed)
	fmt.Printf("spins          %d\n", r.Spins)
	fmt.Printf("total wagered  %.2f\n", r.TotalWagered)
	fmt.Printf("total returned %.2f\n", r.TotalReturned)
	fmt.Printf("realized RTP   %.4f%% (+/- %.4f%%)\n", r.RealizedRTP*100, r.StdErr*100)
	fmt.Printf("hit rate       %.4f%%\n", r.HitRate*100)
	fmt.Printf("max multiplier %.2fx\n", r.MaxMultiplier)
	fmt.Printf("std dev        %.4f\n", r.StdDev)
	fmt.Printf("elapsed        %s\n", r.Elapsed)
	fmt.Println("payout distribution:")
	for _, b := range r.Buckets {
		fmt.Printf("  %-10s %d\n", b.Label, b.Count)
	}
}
