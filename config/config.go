// Package config holds the bot's tuning parameters. None of these numbers
// has a principled derivation; they only need to keep the relative ordering
// the planners depend on, so they are exposed rather than hard-coded.
package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to every tuning environment variable.
const EnvPrefix = "DEADEYE_"

// Config is the complete tuning set for one bot.
type Config struct {
	Scoring    Scoring    `yaml:"scoring" envPrefix:"SCORING_"`
	Search     Search     `yaml:"search" envPrefix:"SEARCH_"`
	Squad      Squad      `yaml:"squad" envPrefix:"SQUAD_"`
	Scout      Scout      `yaml:"scout" envPrefix:"SCOUT_"`
	Production Production `yaml:"production" envPrefix:"PRODUCTION_"`
	Strategy   Strategy   `yaml:"strategy" envPrefix:"STRATEGY_"`
}

// Scoring weights feed the combat score heuristic.
type Scoring struct {
	Worker           int `yaml:"worker" env:"WORKER"`
	Baseline         int `yaml:"baseline" env:"BASELINE"`
	HeavyMultiplier  int `yaml:"heavy_multiplier" env:"HEAVY_MULTIPLIER"`
	Utility          int `yaml:"utility" env:"UTILITY"`
	GarrisonOccupant int `yaml:"garrison_occupant" env:"GARRISON_OCCUPANT"`
}

// Search bounds the spatial searches.
type Search struct {
	PathBudget      int `yaml:"path_budget" env:"PATH_BUDGET"`
	PlacementRadius int `yaml:"placement_radius" env:"PLACEMENT_RADIUS"`
	FloodLimit      int `yaml:"flood_limit" env:"FLOOD_LIMIT"`
}

// Squad tunes tactical control.
type Squad struct {
	GatherRadius  int `yaml:"gather_radius" env:"GATHER_RADIUS"`
	RetreatMargin int `yaml:"retreat_margin" env:"RETREAT_MARGIN"`
	InitialLead   int `yaml:"initial_lead" env:"INITIAL_LEAD"`
	MinesPerBase  int `yaml:"mines_per_base" env:"MINES_PER_BASE"`
	MineSpacing   int `yaml:"mine_spacing" env:"MINE_SPACING"`
	MineDistance  int `yaml:"mine_distance" env:"MINE_DISTANCE"`
}

// Scout tunes the roaming scout.
type Scout struct {
	Cooldown         int `yaml:"cooldown" env:"COOLDOWN"`
	ThrottleInterval int `yaml:"throttle_interval" env:"THROTTLE_INTERVAL"`
	Jitter           int `yaml:"jitter" env:"JITTER"`
	DangerRadius     int `yaml:"danger_radius" env:"DANGER_RADIUS"`
	DangerLifetime   int `yaml:"danger_lifetime" env:"DANGER_LIFETIME"`
}

// Production tunes the economy.
type Production struct {
	MinersPerMine    int `yaml:"miners_per_mine" env:"MINERS_PER_MINE"`
	HallMineRadius   int `yaml:"hall_mine_radius" env:"HALL_MINE_RADIUS"`
	PopulationMargin int `yaml:"population_margin" env:"POPULATION_MARGIN"`
	RepairThreshold  int `yaml:"repair_threshold" env:"REPAIR_THRESHOLD"` // percent health
}

// Strategy tunes goal selection and base defense.
type Strategy struct {
	BaseRadius       int `yaml:"base_radius" env:"BASE_RADIUS"`
	IntelLifetime    int `yaml:"intel_lifetime" env:"INTEL_LIFETIME"`         // ticks an enemy unit sighting is remembered
	CounterAttackPct int `yaml:"counter_attack_pct" env:"COUNTER_ATTACK_PCT"` // spare force needed vs. the weakest enemy base
	SurrenderRatio   int `yaml:"surrender_ratio" env:"SURRENDER_RATIO"`       // attacker score per point of defense before giving up
}

// Default returns the baseline tuning.
func Default() Config {
	return Config{
		Scoring: Scoring{
			Worker:           1,
			Baseline:         4,
			HeavyMultiplier:  2,
			Utility:          1,
			GarrisonOccupant: 4,
		},
		Search: Search{
			PathBudget:      2048,
			PlacementRadius: 14,
			FloodLimit:      512,
		},
		Squad: Squad{
			GatherRadius:  8,
			RetreatMargin: 8,
			InitialLead:   4,
			MinesPerBase:  4,
			MineSpacing:   3,
			MineDistance:  10,
		},
		Scout: Scout{
			Cooldown:         600,
			ThrottleInterval: 6000,
			Jitter:           120,
			DangerRadius:     6,
			DangerLifetime:   1200,
		},
		Production: Production{
			MinersPerMine:    8,
			HallMineRadius:   8,
			PopulationMargin: 4,
			RepairThreshold:  60,
		},
		Strategy: Strategy{
			BaseRadius:       12,
			IntelLifetime:    3000,
			CounterAttackPct: 150,
			SurrenderRatio:   2,
		},
	}
}

// Load builds a Config from the defaults, overlaid by the YAML file at path
// (skipped when path is empty) and then by DEADEYE_* environment variables.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read tuning file: %w", err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse tuning file %s: %w", path, err)
		}
	}
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return Config{}, fmt.Errorf("parse tuning env: %w", err)
	}
	cfg.Validate()
	return cfg, nil
}

// Validate clamps every parameter to a usable range.
func (c *Config) Validate() {
	c.Scoring.Worker = clampInt(c.Scoring.Worker, 0, 100)
	c.Scoring.Baseline = clampInt(c.Scoring.Baseline, 1, 100)
	c.Scoring.HeavyMultiplier = clampInt(c.Scoring.HeavyMultiplier, 1, 10)
	c.Scoring.Utility = clampInt(c.Scoring.Utility, 0, 100)
	c.Scoring.GarrisonOccupant = clampInt(c.Scoring.GarrisonOccupant, 1, 100)

	c.Search.PathBudget = clampInt(c.Search.PathBudget, 64, 16384)
	c.Search.PlacementRadius = clampInt(c.Search.PlacementRadius, 2, 64)
	c.Search.FloodLimit = clampInt(c.Search.FloodLimit, 16, 16384)

	c.Squad.GatherRadius = clampInt(c.Squad.GatherRadius, 2, 64)
	c.Squad.RetreatMargin = clampInt(c.Squad.RetreatMargin, 0, 1000)
	c.Squad.InitialLead = clampInt(c.Squad.InitialLead, 1, 1000)
	c.Squad.MinesPerBase = clampInt(c.Squad.MinesPerBase, 0, 32)
	c.Squad.MineSpacing = clampInt(c.Squad.MineSpacing, 1, 16)
	c.Squad.MineDistance = clampInt(c.Squad.MineDistance, 2, 64)

	c.Scout.Cooldown = clampInt(c.Scout.Cooldown, 0, 100000)
	c.Scout.ThrottleInterval = clampInt(c.Scout.ThrottleInterval, 1, 1000000)
	c.Scout.Jitter = clampInt(c.Scout.Jitter, 0, 10000)
	c.Scout.DangerRadius = clampInt(c.Scout.DangerRadius, 1, 64)
	c.Scout.DangerLifetime = clampInt(c.Scout.DangerLifetime, 1, 1000000)

	c.Production.MinersPerMine = clampInt(c.Production.MinersPerMine, 1, 32)
	c.Production.HallMineRadius = clampInt(c.Production.HallMineRadius, 2, 32)
	c.Production.PopulationMargin = clampInt(c.Production.PopulationMargin, 0, 50)
	c.Production.RepairThreshold = clampInt(c.Production.RepairThreshold, 0, 100)

	c.Strategy.BaseRadius = clampInt(c.Strategy.BaseRadius, 4, 64)
	c.Strategy.IntelLifetime = clampInt(c.Strategy.IntelLifetime, 1, 1000000)
	c.Strategy.CounterAttackPct = clampInt(c.Strategy.CounterAttackPct, 100, 1000)
	c.Strategy.SurrenderRatio = clampInt(c.Strategy.SurrenderRatio, 1, 100)
}

// clampInt restricts v to [min, max].
func clampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
