// Package source supplies raw fragments to the pipeline. Scraping itself happens
// elsewhere (a remote scraper worker, an exported file, an uploaded CSV).
package source

import (
	"context"

	"go.uber.org/zap"

	"github.com/octobees/leadscout/internal/entity"
	"github.com/octobees/leadscout/internal/metrics"
)

// Query is the search a source is asked to answer.
type Query struct {
	City     string `json:"city"`
	State    string `json:"state"`
	Niche    string `json:"niche"`
	MaxLeads int    `json:"limit"`
}

// QueryFor derives a Query from run settings.
func QueryFor(cfg entity.RunConfig) Query {
	return Query{City: cfg.City, State: cfg.State, Niche: cfg.Niche, MaxLeads: cfg.MaxLeads}
}

// FragmentSource returns the fragments one source knows about for a query.
type FragmentSource interface {
	Fetch(ctx context.Context, src entity.Source, q Query) ([]entity.Fragment, error)
}

// Collect asks fs for every source in cfg. A failing source is logged and skipped so
// the run continues with the others. Invalid fragments are dropped and the rest are
// tagged with the source they came from.
func Collect(ctx context.Context, fs FragmentSource, cfg entity.RunConfig, logger *zap.Logger) map[entity.Source][]entity.Fragment {
	if logger == nil {
		logger = zap.NewNop()
	}
	q := QueryFor(cfg)
	out := make(map[entity.Source][]entity.Fragment, len(cfg.Sources))

	for _, src := range entity.SortSources(cfg.Sources) {
		if ctx.Err() != nil {
			break
		}
		fragments, err := fs.Fetch(ctx, src, q)
		if err != nil {
			metrics.SourceFailures.WithLabelValues(string(src)).Inc()
			logger.Warn("source failed, skipping",
				zap.String("source", string(src)),
				zap.Error(err),
			)
			continue
		}

		valid := make([]entity.Fragment, 0, len(fragments))
		for _, f := range fragments {
			if !f.Valid() {
				continue
			}
			f.Source = src
			valid = append(valid, f)
		}
		metrics.SourceFragments.WithLabelValues(string(src)).Add(float64(len(valid)))
		logger.Info("source fetched",
			zap.String("source", string(src)),
			zap.Int("fragments", len(valid)),
			zap.Int("invalid", len(fragments)-len(valid)),
		)
		out[src] = valid
	}
	return out
}

// Static serves a fixed set of fragments, e.g. from a file or an upload.
type Static struct {
	fragments     []entity.Fragment
	defaultSource entity.Source
}

// NewStatic wraps fragments. Untagged fragments are attributed to Google Maps.
func NewStatic(fragments []entity.Fragment) *Static {
	return &Static{fragments: fragments, defaultSource: entity.SourceGoogleMaps}
}

// Sources lists the distinct sources present, in priority order.
func (s *Static) Sources() []entity.Source {
	seen := make(map[entity.Source]struct{})
	var out []entity.Source
	for _, f := range s.fragments {
		src := s.sourceOf(f)
		if _, ok := seen[src]; ok {
			continue
		}
		seen[src] = struct{}{}
		out = append(out, src)
	}
	return entity.SortSources(out)
}

// Len reports how many fragments are held.
func (s *Static) Len() int {
	return len(s.fragments)
}

// Fetch implements FragmentSource. The query is ignored.
func (s *Static) Fetch(_ context.Context, src entity.Source, _ Query) ([]entity.Fragment, error) {
	var out []entity.Fragment
	for _, f := range s.fragments {
		if s.sourceOf(f) == src {
			out = append(out, f)
		}
	}
	return out, nil
}

func (s *Static) sourceOf(f entity.Fragment) entity.Source {
	if f.Source == "" {
		return s.defaultSource
	}
	return f.Source
}
