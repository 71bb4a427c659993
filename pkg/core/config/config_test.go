package config

import (
	"os"
	"path/filepath"
	"testing"

	"financial_analyst/pkg/models"
)

func TestApplyOverrides(t *testing.T) {
	a := DefaultAssumptions()

	wacc := 0.12
	unit := models.UnitMillions
	b := a.Apply(Overrides{WACC: &wacc, TargetUnit: &unit})

	if b.WACC != 0.12 || b.TargetUnit != models.UnitMillions {
		t.Errorf("overrides not applied: %+v", b)
	}
	if b.TerminalGrowth != DefaultTerminalGrowth {
		t.Errorf("untouched fields must keep defaults, got %f", b.TerminalGrowth)
	}
	// Apply is value semantics; the base is untouched.
	if a.WACC != DefaultWACC {
		t.Errorf("base assumptions mutated: %f", a.WACC)
	}
}

func TestLoadPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "assumptions:\n  wacc: 0.08\nrates:\n  PLN: 1.0\n  CHF: 4.6\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Assumptions.WACC != 0.08 {
		t.Errorf("expected wacc 0.08, got %f", cfg.Assumptions.WACC)
	}
	if cfg.Assumptions.ForecastHorizon != DefaultForecastHorizon {
		t.Errorf("missing keys must fall back to defaults, got %d", cfg.Assumptions.ForecastHorizon)
	}
	if cfg.Rates["CHF"] != 4.6 {
		t.Errorf("rates not loaded: %v", cfg.Rates)
	}
	if len(cfg.Filter.Keywords) == 0 {
		t.Error("filter must fall back to the default keyword set")
	}
}

func TestLoadMissingFileKeepsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Error("expected error for missing file")
	}
	if cfg.Assumptions.WACC != DefaultWACC {
		t.Errorf("defaults must survive a load failure, got %f", cfg.Assumptions.WACC)
	}
}

func TestDefaultTablesAreFresh(t *testing.T) {
	a := DefaultRateTable()
	a["EUR"] = 99
	if DefaultRateTable()["EUR"] == 99 {
		t.Error("DefaultRateTable must return a fresh map each call")
	}
}
