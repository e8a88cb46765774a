package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg != Default() {
		t.Errorf("Load(\"\") = %+v, want defaults", cfg)
	}
}

func TestLoadFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	doc := `
scoring:
  baseline: 6
  garrison_occupant: 5
scout:
  cooldown: 900
strategy:
  surrender_ratio: 3
`
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("DEADEYE_SCORING_BASELINE", "7")
	t.Setenv("DEADEYE_SEARCH_PATH_BUDGET", "4096")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name      string
		got, want int
	}{
		{"env overrides file", cfg.Scoring.Baseline, 7},
		{"file value kept", cfg.Scoring.GarrisonOccupant, 5},
		{"nested section", cfg.Scout.Cooldown, 900},
		{"env only", cfg.Search.PathBudget, 4096},
		{"strategy", cfg.Strategy.SurrenderRatio, 3},
		{"untouched default", cfg.Squad.InitialLead, Default().Squad.InitialLead},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s: got %d, want %d", tt.name, tt.got, tt.want)
		}
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("missing file: expected error")
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("scoring: [1, 2"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("malformed yaml: expected error")
	}

	t.Setenv("DEADEYE_SCOUT_JITTER", "lots")
	if _, err := Load(""); err == nil {
		t.Error("non-numeric env: expected error")
	}
}

func TestValidateClamps(t *testing.T) {
	cfg := Default()
	cfg.Scoring.Baseline = 0
	cfg.Search.PathBudget = 1
	cfg.Squad.InitialLead = -5
	cfg.Strategy.CounterAttackPct = 50
	cfg.Strategy.SurrenderRatio = 500
	cfg.Production.RepairThreshold = 150
	cfg.Validate()

	tests := []struct {
		name      string
		got, want int
	}{
		{"baseline", cfg.Scoring.Baseline, 1},
		{"path budget", cfg.Search.PathBudget, 64},
		{"initial lead", cfg.Squad.InitialLead, 1},
		{"counter-attack pct", cfg.Strategy.CounterAttackPct, 100},
		{"surrender ratio", cfg.Strategy.SurrenderRatio, 100},
		{"repair threshold", cfg.Production.RepairThreshold, 100},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %d, want %d", tt.name, tt.got, tt.want)
		}
	}

	d := Default()
	d.Validate()
	if d != Default() {
		t.Error("defaults should survive Validate unchanged")
	}
}
