package entity

import (
	"errors"
	"testing"
)

func TestSortSourcesPriority(t *testing.T) {
	got := SortSources([]Source{"zeta", SourceYelp, "alpha", SourceGoogleMaps})
	want := []Source{SourceGoogleMaps, SourceYelp, "alpha", "zeta"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("position %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

func TestParseSource(t *testing.T) {
	for _, raw := range []string{"google_maps", "Google Maps", " YELP "} {
		if _, err := ParseSource(raw); err != nil {
			t.Fatalf("expected %q to parse, got %v", raw, err)
		}
	}
	if _, err := ParseSource("bing"); err == nil {
		t.Fatalf("expected unknown source error")
	}
}

func TestFragmentValidAndKey(t *testing.T) {
	if (Fragment{Name: " A "}).Valid() {
		t.Fatalf("single character name must be invalid")
	}
	if !(Fragment{Name: "Jo"}).Valid() {
		t.Fatalf("two character name must be valid")
	}
	if key := (Fragment{Name: "  Joe's DINER "}).Key(); key != "joe's diner" {
		t.Fatalf("unexpected key %q", key)
	}
}

func TestLabels(t *testing.T) {
	if WebsitePlaceholder.Label() != "Placeholder" || HotnessPremium.Label() != "Premium" {
		t.Fatalf("unexpected labels")
	}
	if SourceGoogleMaps.Label() != "Google Maps" || Source("bing").Label() != "bing" {
		t.Fatalf("unexpected source labels")
	}
}

func TestRunConfigValidate(t *testing.T) {
	rating := 6.0
	tests := []struct {
		name   string
		mutate func(*RunConfig)
		ok     bool
	}{
		{name: "defaults", mutate: func(*RunConfig) {}, ok: true},
		{name: "missing city", mutate: func(c *RunConfig) { c.City = " " }},
		{name: "zero max leads", mutate: func(c *RunConfig) { c.MaxLeads = 0 }},
		{name: "too many leads", mutate: func(c *RunConfig) { c.MaxLeads = MaxLeadsLimit + 1 }},
		{name: "unknown source", mutate: func(c *RunConfig) { c.Sources = []Source{"bing"} }},
		{name: "conflicting website filters", mutate: func(c *RunConfig) {
			c.Filters.RequireNoWebsite = true
			c.Filters.RequireWebsite = true
		}},
		{name: "rating out of range", mutate: func(c *RunConfig) { c.Filters.MinRating = &rating }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultRunConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.ok && err != nil {
				t.Fatalf("expected valid, got %v", err)
			}
			if !tc.ok && !errors.Is(err, ErrInvalidRunConfig) {
				t.Fatalf("expected ErrInvalidRunConfig, got %v", err)
			}
		})
	}
}

func TestWithDefaultsFillsBlanks(t *testing.T) {
	cfg := RunConfig{City: "Durham"}.WithDefaults()
	if cfg.City != "Durham" || cfg.State != DefaultState || cfg.MaxLeads != DefaultMaxLeads || len(cfg.Sources) != 2 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}
