package intent

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/octobees/leadscout/internal/entity"
)

var (
	noWebsiteExpr = regexp.MustCompile(`(?i)\b(?:no|without(?:\s+an?)?|missing(?:\s+an?)?|lacking(?:\s+an?)?)\s+(?:websites?|web\s*sites?|site)\b`)
	websiteExpr   = regexp.MustCompile(`(?i)\b(?:with(?:\s+an?)?|that\s+ha(?:ve|s)(?:\s+an?)?|having(?:\s+an?)?)\s+(?:websites?|web\s*sites?)\b`)
	starsExpr     = regexp.MustCompile(`(?i)\b(?:rated\s+|rating\s+(?:of\s+)?)?(?:above\s+|over\s+|at\s+least\s+)?(\d(?:\.\d+)?)\s*\+?\s*stars?\b`)
	ratingExpr    = regexp.MustCompile(`(?i)\brat(?:ed|ing)\s+(?:of\s+)?(?:above\s+|over\s+|at\s+least\s+)?(\d(?:\.\d+)?)\+?`)
	reviewsExpr   = regexp.MustCompile(`(?i)\b(?:at\s+least\s+|over\s+|more\s+than\s+)?(\d+)\s*\+?\s*reviews?\b`)
	limitExpr     = regexp.MustCompile(`(?i)\b(?:top|first)\s+(\d+)\b|\b(\d+)\s+(?:leads|results)\b`)
	countExpr     = regexp.MustCompile(`(?i)^\s*(?:(?:find|get|show|give)(?:\s+me)?\s+)?(\d+)\s+`)
	locationExpr  = regexp.MustCompile(`(?i)\b(?:in|near|around)\s+([a-z][a-z .,'-]*)$`)
	stopwordExpr  = regexp.MustCompile(`(?i)\b(?:find|get|show|give|search|looking|look|want|need|for|me|us|i|some|any|all|please|list|of|leads?|results?|the|a|an|that|which|who|are|with|and)\b`)
	spaceExpr     = regexp.MustCompile(`\s+`)
	letterExpr    = regexp.MustCompile(`[a-zA-Z]`)
)

// chatter is text that parses into a "niche" but is not a business search.
var chatter = map[string]struct{}{
	"hello": {}, "hi": {}, "hey": {}, "thanks": {}, "thank you": {},
	"test": {}, "weather": {}, "help": {}, "yo": {},
}

// RuleParser parses requests with regular expressions. It needs no network access
// and serves as the fallback for LLMParser.
type RuleParser struct{}

// NewRuleParser builds a RuleParser.
func NewRuleParser() *RuleParser {
	return &RuleParser{}
}

// Parse implements Parser.
func (*RuleParser) Parse(_ context.Context, text string, base entity.RunConfig) (entity.RunConfig, error) {
	prompt := strings.TrimSpace(text)
	if prompt == "" {
		return entity.RunConfig{}, fmt.Errorf("%w: empty request", ErrUnparseable)
	}

	cfg := base.WithDefaults()
	cfg.Filters = entity.Filters{}

	rest := prompt
	if noWebsiteExpr.MatchString(rest) {
		cfg.Filters.RequireNoWebsite = true
		rest = noWebsiteExpr.ReplaceAllString(rest, " ")
	} else if websiteExpr.MatchString(rest) {
		cfg.Filters.RequireWebsite = true
		rest = websiteExpr.ReplaceAllString(rest, " ")
	}

	for _, expr := range []*regexp.Regexp{starsExpr, ratingExpr} {
		if m := expr.FindStringSubmatch(rest); m != nil {
			if v, err := strconv.ParseFloat(m[1], 64); err == nil && v >= 0 && v <= 5 {
				cfg.Filters.MinRating = &v
			}
			rest = strings.Replace(rest, m[0], " ", 1)
			break
		}
	}

	if m := reviewsExpr.FindStringSubmatch(rest); m != nil {
		if v, err := strconv.Atoi(m[1]); err == nil {
			cfg.Filters.MinReviews = &v
		}
		rest = strings.Replace(rest, m[0], " ", 1)
	}

	if m := limitExpr.FindStringSubmatch(rest); m != nil {
		raw := m[1]
		if raw == "" {
			raw = m[2]
		}
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			cfg.MaxLeads = min(v, entity.MaxLeadsLimit)
		}
		rest = strings.Replace(rest, m[0], " ", 1)
	} else if m := countExpr.FindStringSubmatch(rest); m != nil {
		if v, err := strconv.Atoi(m[1]); err == nil && v > 0 {
			cfg.MaxLeads = min(v, entity.MaxLeadsLimit)
		}
		rest = strings.Replace(rest, m[0], " ", 1)
	}

	rest = strings.TrimRight(strings.TrimSpace(rest), ".!?")
	if m := locationExpr.FindStringSubmatch(rest); m != nil {
		city, state := splitLocation(m[1])
		if city != "" {
			cfg.City = cases.Title(language.English).String(city)
			if state != "" {
				cfg.State = state
			}
		}
		rest = rest[:len(rest)-len(m[0])]
	}

	niche := stopwordExpr.ReplaceAllString(rest, " ")
	niche = strings.Trim(spaceExpr.ReplaceAllString(niche, " "), " ,.;:-")
	niche = strings.ToLower(niche)
	if niche == "" || !letterExpr.MatchString(niche) {
		return entity.RunConfig{}, fmt.Errorf("%w: no business type in %q", ErrUnparseable, prompt)
	}
	if _, ok := chatter[niche]; ok {
		return entity.RunConfig{}, fmt.Errorf("%w: %q", ErrUnparseable, prompt)
	}
	cfg.Niche = niche

	if err := cfg.Validate(); err != nil {
		return entity.RunConfig{}, err
	}
	return cfg, nil
}

// splitLocation separates "Durham, NC", "Durham NC" and "Durham North Carolina"
// into city and two-letter state. The state is empty when none is recognised.
func splitLocation(raw string) (string, string) {
	loc := strings.Trim(spaceExpr.ReplaceAllString(raw, " "), " ,.")
	if loc == "" {
		return "", ""
	}
	if i := strings.LastIndex(loc, ","); i >= 0 {
		city := strings.TrimSpace(loc[:i])
		if state := stateCode(loc[i+1:]); state != "" {
			return city, state
		}
		return city, ""
	}

	words := strings.Fields(loc)
	// Longest suffix first so "new york" wins over "york".
	for n := min(2, len(words)-1); n >= 1; n-- {
		suffix := strings.Join(words[len(words)-n:], " ")
		if state := stateCode(suffix); state != "" {
			return strings.Join(words[:len(words)-n], " "), state
		}
	}
	return loc, ""
}

func stateCode(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	if code, ok := stateNames[s]; ok {
		return code
	}
	upper := strings.ToUpper(s)
	for _, code := range stateNames {
		if code == upper {
			return code
		}
	}
	return ""
}

var stateNames = map[string]string{
	"alabama": "AL", "alaska": "AK", "arizona": "AZ", "arkansas": "AR", "california": "CA",
	"colorado": "CO", "connecticut": "CT", "delaware": "DE", "florida": "FL", "georgia": "GA",
	"hawaii": "HI", "idaho": "ID", "illinois": "IL", "indiana": "IN", "iowa": "IA",
	"kansas": "KS", "kentucky": "KY", "louisiana": "LA", "maine": "ME", "maryland": "MD",
	"massachusetts": "MA", "michigan": "MI", "minnesota": "MN", "mississippi": "MS", "missouri": "MO",
	"montana": "MT", "nebraska": "NE", "nevada": "NV", "new hampshire": "NH", "new jersey": "NJ",
	"new mexico": "NM", "new york": "NY", "north carolina": "NC", "north dakota": "ND", "ohio": "OH",
	"oklahoma": "OK", "oregon": "OR", "pennsylvania": "PA", "rhode island": "RI", "south carolina": "SC",
	"south dakota": "SD", "tennessee": "TN", "texas": "TX", "utah": "UT", "vermont": "VT",
	"virginia": "VA", "washington": "WA", "west virginia": "WV", "wisconsin": "WI", "wyoming": "WY",
	"district of columbia": "DC",
}
