// Package config loads the engine's game configuration from YAML and
// rejects malformed tables before any round can observe them.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/glitchplay/chance-engine-go/internal/games"
)

// SwipeConfig calibrates the card-draw danger model. The normal multiplier
// is always derived, never configured.
type SwipeConfig struct {
	DangerProb      float64 `yaml:"danger_prob"`
	BonusProb       float64 `yaml:"bonus_prob"`
	BonusMultiplier float64 `yaml:"bonus_multiplier"`
}

// LadderConfig calibrates the level-ladder model.
type LadderConfig struct {
	TargetRTP   float64   `yaml:"target_rtp"`
	Multipliers []float64 `yaml:"multipliers"`
}

// Config is the full engine configuration.
type Config struct {
	Swipe  SwipeConfig       `yaml:"swipe"`
	Ladder LadderConfig      `yaml:"ladder"`
	Reels  games.ReelsConfig `yaml:"reels"`
}

// Default returns the compiled-in configuration: the same calibrations the
// models register under their default constructors.
func Default() Config {
	ladder := games.NewLadderModel()
	return Config{
		Swipe: SwipeConfig{
			DangerProb:      games.SwipeDangerProb,
			BonusProb:       games.SwipeBonusProb,
			BonusMultiplier: games.SwipeBonusMultiplier,
		},
		Ladder: LadderConfig{
			TargetRTP:   0.95,
			Multipliers: ladder.Multipliers(),
		},
		Reels: games.DefaultReelsConfig(),
	}
}

// Load reads a YAML file over the defaults and validates the result by
// constructing every model. A table that does not normalize, a multiplier
// ladder that is not increasing, or an unknown volatility all fail here.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate constructs each model from the configuration and returns the
// first construction error.
func (c Config) Validate() error {
	if _, err := c.BuildModels(); err != nil {
		return err
	}
	return nil
}

// BuildModels constructs the three models from the configuration.
func (c Config) BuildModels() ([]games.Model, error) {
	swipe, err := games.NewSwipeModelParams(c.Swipe.DangerProb, c.Swipe.BonusProb, c.Swipe.BonusMultiplier)
	if err != nil {
		return nil, fmt.Errorf("config: swipe: %w", err)
	}
	ladder, err := games.NewLadderModelParams(c.Ladder.TargetRTP, c.Ladder.Multipliers)
	if err != nil {
		return nil, fmt.Errorf("config: ladder: %w", err)
	}
	reels, err := games.NewReelsModel(c.Reels)
	if err != nil {
		return nil, fmt.Errorf("config: reels: %w", err)
	}
	return []games.Model{swipe, ladder, reels}, nil
}

// Apply registers the configured models, replacing the defaults.
func (c Config) Apply() error {
	models, err := c.BuildModels()
	if err != nil {
		return err
	}
	for _, m := range models {
		games.Register(m)
	}
	return nil
}
