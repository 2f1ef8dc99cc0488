package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/viper"

	"github.com/octobees/leadscout/internal/entity"
)

const settingsEnvPrefix = "LEADSCOUT"

// SettingsStore persists the run settings edited from the control panel.
type SettingsStore struct {
	path string
	mu   sync.Mutex
}

// NewSettingsStore binds a store to a JSON file path.
func NewSettingsStore(path string) *SettingsStore {
	return &SettingsStore{path: path}
}

// Path returns the backing file.
func (s *SettingsStore) Path() string {
	return s.path
}

// Load reads the settings file, falling back to defaults when it does not exist.
// LEADSCOUT_* environment variables override individual keys (e.g. LEADSCOUT_CITY).
func (s *SettingsStore) Load() (entity.RunConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	def := entity.DefaultRunConfig()
	v := viper.New()
	v.SetConfigFile(s.path)
	v.SetConfigType("json")
	v.SetEnvPrefix(settingsEnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("city", def.City)
	v.SetDefault("state", def.State)
	v.SetDefault("niche", def.Niche)
	v.SetDefault("maxLeads", def.MaxLeads)
	v.SetDefault("sources", sourceStrings(def.Sources))
	v.SetDefault("filters.requireNoWebsite", false)
	v.SetDefault("filters.requireWebsite", false)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.Is(err, fs.ErrNotExist) && !errors.As(err, &notFound) {
			return entity.RunConfig{}, fmt.Errorf("read settings: %w", err)
		}
	}

	var cfg entity.RunConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return entity.RunConfig{}, fmt.Errorf("decode settings: %w", err)
	}
	return cfg.WithDefaults(), nil
}

// Save validates cfg and writes it as indented JSON.
func (s *SettingsStore) Save(cfg entity.RunConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create settings dir: %w", err)
		}
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}

func sourceStrings(sources []entity.Source) []string {
	out := make([]string, len(sources))
	for i, s := range sources {
		out[i] = string(s)
	}
	return out
}
