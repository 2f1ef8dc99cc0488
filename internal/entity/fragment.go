package entity

import (
	"fmt"
	"sort"
	"strings"
)

// Source identifies the directory a fragment was scraped from.
type Source string

const (
	SourceGoogleMaps Source = "google_maps"
	SourceYelp       Source = "yelp"
)

// sourcePriority fixes the order in which fragments from each source are considered.
var sourcePriority = map[Source]int{
	SourceGoogleMaps: 0,
	SourceYelp:       1,
}

// DefaultSources lists every supported source in priority order.
func DefaultSources() []Source {
	return []Source{SourceGoogleMaps, SourceYelp}
}

// ParseSource accepts both the config key ("google_maps") and the display label ("Google Maps").
func ParseSource(raw string) (Source, error) {
	key := strings.ToLower(strings.TrimSpace(raw))
	key = strings.ReplaceAll(key, " ", "_")
	switch Source(key) {
	case SourceGoogleMaps, SourceYelp:
		return Source(key), nil
	default:
		return "", fmt.Errorf("unknown source %q", raw)
	}
}

// Label returns the human readable source name stored alongside leads.
func (s Source) Label() string {
	switch s {
	case SourceGoogleMaps:
		return "Google Maps"
	case SourceYelp:
		return "Yelp"
	default:
		return string(s)
	}
}

// SortSources orders sources by priority; unknown sources follow, sorted by name.
func SortSources(sources []Source) []Source {
	out := append([]Source(nil), sources...)
	sort.SliceStable(out, func(i, j int) bool {
		pi, iKnown := sourcePriority[out[i]]
		pj, jKnown := sourcePriority[out[j]]
		switch {
		case iKnown && jKnown:
			return pi < pj
		case iKnown != jKnown:
			return iKnown
		default:
			return out[i] < out[j]
		}
	})
	return out
}

// MinNameLength is the shortest trimmed business name a source may emit.
const MinNameLength = 2

// Fragment is one raw scraped business record before validation and merging.
type Fragment struct {
	Name        string   `json:"name"`
	Phone       *string  `json:"phone,omitempty"`
	Email       *string  `json:"email,omitempty"`
	Address     *string  `json:"address,omitempty"`
	Website     *string  `json:"website,omitempty"`
	Rating      *float64 `json:"rating,omitempty"`
	ReviewCount *int     `json:"reviewCount,omitempty"`
	Source      Source   `json:"source"`
}

// Valid reports whether the fragment carries a usable business name.
func (f Fragment) Valid() bool {
	return len([]rune(strings.TrimSpace(f.Name))) >= MinNameLength
}

// Key is the identity used for deduplication: the trimmed, lower-cased name.
func (f Fragment) Key() string {
	return strings.ToLower(strings.TrimSpace(f.Name))
}

// WebsiteURL returns the trimmed website or "" when absent.
func (f Fragment) WebsiteURL() string {
	if f.Website == nil {
		return ""
	}
	return strings.TrimSpace(*f.Website)
}

// RatingValue treats a missing rating as zero.
func (f Fragment) RatingValue() float64 {
	if f.Rating == nil {
		return 0
	}
	return *f.Rating
}

// ReviewCountValue treats a missing review count as zero.
func (f Fragment) ReviewCountValue() int {
	if f.ReviewCount == nil {
		return 0
	}
	return *f.ReviewCount
}
