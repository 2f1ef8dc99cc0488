package pipeline

import (
	"context"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/octobees/leadscout/internal/entity"
	"github.com/octobees/leadscout/internal/metrics"
	"github.com/octobees/leadscout/internal/service/contact"
	"github.com/octobees/leadscout/internal/service/scoring"
)

// DefaultConcurrency bounds how many websites are classified at once.
const DefaultConcurrency = 4

// Classifier produces a verdict for a website URL and never fails.
type Classifier interface {
	Classify(ctx context.Context, url string) entity.WebsiteVerdict
}

// Input is everything one assembly needs.
type Input struct {
	FragmentsBySource map[entity.Source][]entity.Fragment
	Filters           entity.Filters
	// MaxLeads caps the output; zero or negative means no cap.
	MaxLeads int
}

// Stats records how many fragments each stage removed.
type Stats struct {
	Received          int `json:"received"`
	DroppedRating     int `json:"droppedRating"`
	DroppedReviews    int `json:"droppedReviews"`
	DroppedWebsite    int `json:"droppedWebsite"`
	DroppedNoContact  int `json:"droppedNoContact"`
	DroppedDuplicates int `json:"droppedDuplicates"`
	Truncated         int `json:"truncated"`
	Leads             int `json:"leads"`
}

// Result is the ranked lead list plus stage counters.
type Result struct {
	Leads []entity.Lead `json:"leads"`
	Stats Stats         `json:"stats"`
}

// Assembler turns raw fragments into ranked leads.
type Assembler struct {
	classifier  Classifier
	concurrency int
	logger      *zap.Logger
}

// AssemblerOption configures optional assembler settings.
type AssemblerOption func(*Assembler)

// WithConcurrency overrides DefaultConcurrency.
func WithConcurrency(n int) AssemblerOption {
	return func(a *Assembler) {
		if n > 0 {
			a.concurrency = n
		}
	}
}

// WithLogger overrides the no-op logger.
func WithLogger(logger *zap.Logger) AssemblerOption {
	return func(a *Assembler) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// NewAssembler builds an assembler around the given classifier.
func NewAssembler(classifier Classifier, opts ...AssemblerOption) *Assembler {
	a := &Assembler{
		classifier:  classifier,
		concurrency: DefaultConcurrency,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

type candidate struct {
	fragment entity.Fragment
	verdict  entity.WebsiteVerdict
}

// Assemble runs the fragments through classification, filtering, normalisation,
// the contact guard, deduplication, scoring and truncation. An empty result is valid.
func (a *Assembler) Assemble(ctx context.Context, in Input) Result {
	fragments := concatBySource(in.FragmentsBySource)
	stats := Stats{Received: len(fragments)}

	verdicts := a.classifyAll(ctx, fragments)

	candidates := make([]candidate, 0, len(fragments))
	for i, f := range fragments {
		candidates = append(candidates, candidate{fragment: f, verdict: verdicts[i]})
	}

	candidates = filterCandidates(candidates, in.Filters, &stats)

	for i := range candidates {
		candidates[i].fragment.Phone = contact.NormalizePhone(candidates[i].fragment.Phone)
		candidates[i].fragment.Email = contact.NormalizeEmail(candidates[i].fragment.Email)
	}

	kept := candidates[:0]
	for _, c := range candidates {
		if hasContactPath(c.fragment) {
			kept = append(kept, c)
		} else {
			stats.DroppedNoContact++
		}
	}
	candidates = kept

	candidates = dedupCandidates(candidates, &stats)

	leads := make([]entity.Lead, 0, len(candidates))
	for _, c := range candidates {
		lead := entity.Lead{Fragment: c.fragment, Verdict: c.verdict}
		if lead.Phone != nil {
			lead.PhoneE164 = contact.CanonicalPhone(*lead.Phone)
		}
		scoring.Apply(&lead)
		leads = append(leads, lead)
	}
	sort.SliceStable(leads, func(i, j int) bool {
		return leads[i].Score > leads[j].Score
	})

	if in.MaxLeads > 0 && len(leads) > in.MaxLeads {
		stats.Truncated = len(leads) - in.MaxLeads
		leads = leads[:in.MaxLeads]
	}
	stats.Leads = len(leads)

	recordStats(stats, leads)
	a.logger.Info("leads assembled",
		zap.Int("received", stats.Received),
		zap.Int("dropped_filters", stats.DroppedRating+stats.DroppedReviews+stats.DroppedWebsite),
		zap.Int("dropped_no_contact", stats.DroppedNoContact),
		zap.Int("dropped_duplicates", stats.DroppedDuplicates),
		zap.Int("truncated", stats.Truncated),
		zap.Int("leads", stats.Leads),
	)

	return Result{Leads: leads, Stats: stats}
}

func concatBySource(bySource map[entity.Source][]entity.Fragment) []entity.Fragment {
	sources := make([]entity.Source, 0, len(bySource))
	total := 0
	for s, frags := range bySource {
		sources = append(sources, s)
		total += len(frags)
	}
	out := make([]entity.Fragment, 0, total)
	for _, s := range entity.SortSources(sources) {
		for _, f := range bySource[s] {
			if f.Source == "" {
				f.Source = s
			}
			out = append(out, f)
		}
	}
	return out
}

// classifyAll fans out over fragments with a website. Each worker writes only its own
// slot so the output does not depend on scheduling.
func (a *Assembler) classifyAll(ctx context.Context, fragments []entity.Fragment) []entity.WebsiteVerdict {
	verdicts := make([]entity.WebsiteVerdict, len(fragments))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)

	for i, f := range fragments {
		url := f.WebsiteURL()
		if url == "" || a.classifier == nil {
			verdicts[i] = entity.NoWebsite()
			continue
		}
		g.Go(func() error {
			verdicts[i] = a.classifier.Classify(gCtx, url)
			return nil
		})
	}
	_ = g.Wait()
	return verdicts
}

func filterCandidates(in []candidate, filters entity.Filters, stats *Stats) []candidate {
	out := make([]candidate, 0, len(in))
	for _, c := range in {
		if filters.MinRating != nil && c.fragment.RatingValue() < *filters.MinRating {
			stats.DroppedRating++
			continue
		}
		if filters.MinReviews != nil && c.fragment.ReviewCountValue() < *filters.MinReviews {
			stats.DroppedReviews++
			continue
		}
		if filters.RequireNoWebsite && c.verdict.Status == entity.WebsiteActive {
			stats.DroppedWebsite++
			continue
		}
		if filters.RequireWebsite && c.verdict.Status == entity.WebsiteNone {
			stats.DroppedWebsite++
			continue
		}
		out = append(out, c)
	}
	return out
}

func hasContactPath(f entity.Fragment) bool {
	return f.Phone != nil || f.Email != nil || f.WebsiteURL() != ""
}

func dedupCandidates(in []candidate, stats *Stats) []candidate {
	fragments := make([]entity.Fragment, len(in))
	for i, c := range in {
		fragments[i] = c.fragment
	}
	unique := Deduplicate(fragments)
	stats.DroppedDuplicates = len(in) - len(unique)

	// Deduplicate keeps first occurrences in order, so walk both lists together.
	out := make([]candidate, 0, len(unique))
	j := 0
	for _, c := range in {
		if j < len(unique) && c.fragment.Key() == unique[j].Key() {
			out = append(out, c)
			j++
		}
	}
	return out
}

func recordStats(stats Stats, leads []entity.Lead) {
	metrics.FragmentsDropped.WithLabelValues("rating").Add(float64(stats.DroppedRating))
	metrics.FragmentsDropped.WithLabelValues("reviews").Add(float64(stats.DroppedReviews))
	metrics.FragmentsDropped.WithLabelValues("website").Add(float64(stats.DroppedWebsite))
	metrics.FragmentsDropped.WithLabelValues("no_contact").Add(float64(stats.DroppedNoContact))
	metrics.FragmentsDropped.WithLabelValues("duplicate").Add(float64(stats.DroppedDuplicates))
	metrics.FragmentsDropped.WithLabelValues("truncated").Add(float64(stats.Truncated))
	for _, lead := range leads {
		metrics.LeadsProduced.WithLabelValues(string(lead.Hotness)).Inc()
	}
}
