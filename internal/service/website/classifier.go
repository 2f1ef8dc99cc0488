package website

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/octobees/leadscout/internal/entity"
	"github.com/octobees/leadscout/internal/metrics"
)

const (
	// DefaultTimeout bounds a single fetch.
	DefaultTimeout = 15 * time.Second

	mobileViewportMaxWidth = 400
	minVisibleTextLength   = 100
	minOutdatedSignals     = 2
	staleCopyrightYears    = 3
)

// Page is what a Fetcher returns for a reachable URL.
type Page struct {
	StatusCode int
	HTML       string
	Text       string
}

// Fetcher loads a URL once. A nil page with a nil error means the server gave no response.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*Page, error)
}

// ViewportProbe renders a URL at a mobile viewport and reports the body width.
type ViewportProbe interface {
	BodyWidth(ctx context.Context, url string) (float64, error)
}

// Cache stores verdicts by normalized URL.
type Cache interface {
	Get(ctx context.Context, url string) (entity.WebsiteVerdict, bool, error)
	Set(ctx context.Context, url string, verdict entity.WebsiteVerdict) error
}

var placeholderIndicators = []string{
	"domain is for sale",
	"this domain is parked",
	"buy this domain",
	"domain expired",
	"coming soon",
	"under construction",
	"website coming soon",
	"godaddy",
	"squarespace.com/templates",
	"wix.com/website",
	"this site can't be reached",
	"page not found",
	"default web page",
}

var (
	jqueryVersion = regexp.MustCompile(`jquery[.-](\d+)\.(\d+)`)
	copyrightYear = regexp.MustCompile(`(?:©|&copy;|&#169;)\s*(\d{4})|copyright\s*(\d{4})`)
)

// Classifier turns a website URL into a verdict. It never returns an error;
// every failure resolves to a broken verdict.
type Classifier struct {
	fetcher Fetcher
	probe   ViewportProbe
	cache   Cache
	logger  *zap.Logger
	timeout time.Duration
	now     func() time.Time
}

// Option configures optional classifier dependencies.
type Option func(*Classifier)

// WithProbe enables the mobile viewport check for active sites.
func WithProbe(probe ViewportProbe) Option {
	return func(c *Classifier) {
		c.probe = probe
	}
}

// WithCache enables verdict caching.
func WithCache(cache Cache) Option {
	return func(c *Classifier) {
		c.cache = cache
	}
}

// WithLogger overrides the no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Classifier) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithTimeout overrides DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Classifier) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithClock overrides the clock used for copyright staleness.
func WithClock(now func() time.Time) Option {
	return func(c *Classifier) {
		if now != nil {
			c.now = now
		}
	}
}

// NewClassifier builds a classifier around the given fetcher.
func NewClassifier(fetcher Fetcher, opts ...Option) *Classifier {
	c := &Classifier{
		fetcher: fetcher,
		logger:  zap.NewNop(),
		timeout: DefaultTimeout,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NormalizeURL trims the URL and prefixes https:// when no scheme is present.
// Bare hosts such as "httpcoffee.com" get the prefix too.
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	lower := strings.ToLower(raw)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return raw
	}
	return "https://" + raw
}

// Classify runs the waterfall: none, broken, placeholder, outdated, active.
func (c *Classifier) Classify(ctx context.Context, rawURL string) entity.WebsiteVerdict {
	target := NormalizeURL(rawURL)
	if target == "" {
		return entity.NoWebsite()
	}

	if c.cache != nil {
		cached, ok, err := c.cache.Get(ctx, target)
		if err != nil {
			c.logger.Warn("verdict cache read failed", zap.String("url", target), zap.Error(err))
		} else if ok {
			return cached
		}
	}

	start := time.Now()
	verdict := c.classify(ctx, target)
	metrics.WebsiteVerdicts.WithLabelValues(string(verdict.Status)).Inc()
	metrics.ClassifyDuration.Observe(time.Since(start).Seconds())

	if c.cache != nil && cacheable(verdict) {
		if err := c.cache.Set(ctx, target, verdict); err != nil {
			c.logger.Warn("verdict cache write failed", zap.String("url", target), zap.Error(err))
		}
	}
	return verdict
}

func (c *Classifier) classify(ctx context.Context, target string) entity.WebsiteVerdict {
	verdict := entity.WebsiteVerdict{URL: target}

	if c.fetcher == nil {
		verdict.Status = entity.WebsiteBroken
		verdict.Reason = "no fetcher configured"
		return verdict
	}

	fetchCtx, cancel := context.WithTimeout(ctx, c.timeout)
	page, err := c.fetcher.Fetch(fetchCtx, target)
	cancel()
	if err != nil {
		verdict.Status = entity.WebsiteBroken
		verdict.Reason = err.Error()
		c.logger.Debug("website fetch failed", zap.String("url", target), zap.Error(err))
		return verdict
	}
	if page == nil {
		verdict.Status = entity.WebsiteBroken
		verdict.Reason = "HTTP timeout"
		return verdict
	}

	verdict.HTTPStatus = page.StatusCode
	if page.StatusCode == 0 || page.StatusCode >= 400 {
		verdict.Status = entity.WebsiteBroken
		if page.StatusCode == 0 {
			verdict.Reason = "HTTP timeout"
		} else {
			verdict.Reason = fmt.Sprintf("HTTP %d", page.StatusCode)
		}
		return verdict
	}

	if reason, ok := placeholderReason(page.HTML, page.Text); ok {
		verdict.Status = entity.WebsitePlaceholder
		verdict.Reason = reason
		return verdict
	}

	if signals := outdatedSignals(page.HTML, c.now().Year()); len(signals) >= minOutdatedSignals {
		verdict.Status = entity.WebsiteOutdated
		verdict.Reason = strings.Join(signals, ", ")
		return verdict
	}

	verdict.Status = entity.WebsiteActive
	if c.probe != nil {
		probeCtx, cancel := context.WithTimeout(ctx, c.timeout)
		width, err := c.probe.BodyWidth(probeCtx, target)
		cancel()
		if err != nil {
			c.logger.Debug("mobile probe failed", zap.String("url", target), zap.Error(err))
		} else {
			responsive := width <= mobileViewportMaxWidth
			verdict.MobileResponsive = &responsive
		}
	}
	return verdict
}

// cacheable excludes transient failures so a flaky site gets another chance next run.
func cacheable(v entity.WebsiteVerdict) bool {
	return !(v.Status == entity.WebsiteBroken && v.HTTPStatus == 0)
}

func placeholderReason(html, text string) (string, bool) {
	lowerText := strings.ToLower(text)
	lowerHTML := strings.ToLower(html)
	for _, indicator := range placeholderIndicators {
		if strings.Contains(lowerText, indicator) || strings.Contains(lowerHTML, indicator) {
			return "Parked or placeholder domain detected: " + indicator, true
		}
	}
	if len([]rune(strings.TrimSpace(text))) < minVisibleTextLength {
		return "Parked or placeholder domain detected: too little content", true
	}
	return "", false
}

func outdatedSignals(html string, currentYear int) []string {
	markup := strings.ToLower(html)
	var signals []string

	if strings.Contains(markup, "<table") && strings.Contains(markup, "cellpadding") {
		signals = append(signals, "Table-based layout")
	}
	if strings.Contains(markup, "swfobject") || strings.Contains(markup, ".swf") {
		signals = append(signals, "Flash content")
	}
	if m := jqueryVersion.FindStringSubmatch(markup); m != nil {
		if major, err := strconv.Atoi(m[1]); err == nil && major < 2 {
			signals = append(signals, "Old jQuery version")
		}
	}
	if strings.Contains(markup, "<frameset") || strings.Contains(markup, "<frame ") {
		signals = append(signals, "Uses frames")
	}
	if !strings.Contains(markup, "viewport") {
		signals = append(signals, "No viewport meta tag")
	}
	if m := copyrightYear.FindStringSubmatch(markup); m != nil {
		raw := m[1]
		if raw == "" {
			raw = m[2]
		}
		if year, err := strconv.Atoi(raw); err == nil && currentYear-year > staleCopyrightYears {
			signals = append(signals, fmt.Sprintf("Copyright %d", year))
		}
	}
	return signals
}
