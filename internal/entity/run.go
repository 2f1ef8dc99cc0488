package entity

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrInvalidRunConfig wraps every RunConfig validation failure.
var ErrInvalidRunConfig = errors.New("invalid run config")

// MaxLeadsLimit caps how many leads a single run may request.
const MaxLeadsLimit = 500

// Filters narrows the fragments that may become leads.
type Filters struct {
	MinRating        *float64 `json:"minRating,omitempty" mapstructure:"minRating"`
	MinReviews       *int     `json:"minReviews,omitempty" mapstructure:"minReviews"`
	RequireNoWebsite bool     `json:"requireNoWebsite" mapstructure:"requireNoWebsite"`
	RequireWebsite   bool     `json:"requireWebsite" mapstructure:"requireWebsite"`
}

// RunConfig is the read-only input of one pipeline invocation.
type RunConfig struct {
	City     string   `json:"city" mapstructure:"city"`
	State    string   `json:"state" mapstructure:"state"`
	Niche    string   `json:"niche" mapstructure:"niche"`
	MaxLeads int      `json:"maxLeads" mapstructure:"maxLeads"`
	Sources  []Source `json:"sources" mapstructure:"sources"`
	Filters  Filters  `json:"filters" mapstructure:"filters"`
}

// Default run settings.
const (
	DefaultCity     = "Raleigh"
	DefaultState    = "NC"
	DefaultNiche    = "restaurants"
	DefaultMaxLeads = 10
)

// DefaultRunConfig returns the settings used when nothing has been saved yet.
func DefaultRunConfig() RunConfig {
	return RunConfig{
		City:     DefaultCity,
		State:    DefaultState,
		Niche:    DefaultNiche,
		MaxLeads: DefaultMaxLeads,
		Sources:  DefaultSources(),
	}
}

// WithDefaults fills empty fields from DefaultRunConfig.
func (c RunConfig) WithDefaults() RunConfig {
	def := DefaultRunConfig()
	if c.City == "" {
		c.City = def.City
	}
	if c.State == "" {
		c.State = def.State
	}
	if c.Niche == "" {
		c.Niche = def.Niche
	}
	if c.MaxLeads <= 0 {
		c.MaxLeads = def.MaxLeads
	}
	if len(c.Sources) == 0 {
		c.Sources = def.Sources
	}
	return c
}

// Validate checks the fields an operator can edit.
func (c RunConfig) Validate() error {
	if strings.TrimSpace(c.City) == "" {
		return fmt.Errorf("%w: city is required", ErrInvalidRunConfig)
	}
	if strings.TrimSpace(c.State) == "" {
		return fmt.Errorf("%w: state is required", ErrInvalidRunConfig)
	}
	if strings.TrimSpace(c.Niche) == "" {
		return fmt.Errorf("%w: niche is required", ErrInvalidRunConfig)
	}
	if c.MaxLeads < 1 || c.MaxLeads > MaxLeadsLimit {
		return fmt.Errorf("%w: maxLeads must be between 1 and %d", ErrInvalidRunConfig, MaxLeadsLimit)
	}
	for _, s := range c.Sources {
		if _, err := ParseSource(string(s)); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidRunConfig, err)
		}
	}
	if c.Filters.RequireNoWebsite && c.Filters.RequireWebsite {
		return fmt.Errorf("%w: requireNoWebsite and requireWebsite are mutually exclusive", ErrInvalidRunConfig)
	}
	if c.Filters.MinRating != nil && (*c.Filters.MinRating < 0 || *c.Filters.MinRating > 5) {
		return fmt.Errorf("%w: minRating must be between 0 and 5", ErrInvalidRunConfig)
	}
	if c.Filters.MinReviews != nil && *c.Filters.MinReviews < 0 {
		return fmt.Errorf("%w: minReviews must not be negative", ErrInvalidRunConfig)
	}
	return nil
}

// RunStatus tracks a persisted run through its lifecycle.
type RunStatus string

const (
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed"
	RunFailed    RunStatus = "failed"
)

// Run is the metadata row stored for every pipeline invocation.
type Run struct {
	ID         uuid.UUID  `json:"id"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	City       string     `json:"city"`
	State      string     `json:"state"`
	Niche      string     `json:"niche"`
	MaxLeads   int        `json:"max_leads"`
	Status     RunStatus  `json:"status"`
	TotalLeads int        `json:"total_leads"`
}

// StoredLead is a lead row read back from the database.
type StoredLead struct {
	ID               int64     `json:"id"`
	RunID            uuid.UUID `json:"run_id"`
	Name             string    `json:"name"`
	Phone            *string   `json:"phone,omitempty"`
	PhoneE164        *string   `json:"phone_e164,omitempty"`
	Email            *string   `json:"email,omitempty"`
	Address          *string   `json:"address,omitempty"`
	Website          *string   `json:"website,omitempty"`
	WebsiteStatus    string    `json:"website_status"`
	WebsiteReason    *string   `json:"website_reason,omitempty"`
	MobileResponsive *bool     `json:"mobile_responsive,omitempty"`
	Rating           *float64  `json:"rating,omitempty"`
	ReviewCount      *int      `json:"review_count,omitempty"`
	Source           string    `json:"source"`
	Score            int       `json:"score"`
	Hotness          string    `json:"hotness"`
	CreatedAt        time.Time `json:"created_at"`
	City             *string   `json:"city,omitempty"`
	State            *string   `json:"state,omitempty"`
	Niche            *string   `json:"niche,omitempty"`
}
