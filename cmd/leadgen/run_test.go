package main

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/octobees/leadscout/internal/config"
	"github.com/octobees/leadscout/internal/entity"
	"github.com/octobees/leadscout/internal/source"
)

func TestRunConfigAppliesOverrides(t *testing.T) {
	cfg = &config.Config{SettingsPath: filepath.Join(t.TempDir(), "settings.json")}
	t.Cleanup(func() {
		runCity, runLimit = "", 0
	})
	runCity, runLimit = "Durham", 25

	static := source.NewStatic([]entity.Fragment{{Name: "Acme Plumbing", Source: entity.SourceYelp}})
	runCfg, err := runConfig(static)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if runCfg.City != "Durham" || runCfg.MaxLeads != 25 {
		t.Fatalf("expected overrides applied, got %+v", runCfg)
	}
	if runCfg.Niche != entity.DefaultNiche {
		t.Fatalf("expected saved niche, got %s", runCfg.Niche)
	}
	if len(runCfg.Sources) != 1 || runCfg.Sources[0] != entity.SourceYelp {
		t.Fatalf("expected sources from the file, got %v", runCfg.Sources)
	}
}

func TestRunConfigRejectsInvalidLimit(t *testing.T) {
	cfg = &config.Config{SettingsPath: filepath.Join(t.TempDir(), "settings.json")}
	t.Cleanup(func() { runLimit = 0 })
	runLimit = entity.MaxLeadsLimit + 1

	_, err := runConfig(source.NewStatic(nil))
	if !errors.Is(err, entity.ErrInvalidRunConfig) {
		t.Fatalf("expected ErrInvalidRunConfig, got %v", err)
	}
}
