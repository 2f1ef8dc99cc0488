package crm

import (
	"context"
	"fmt"

	"github.com/jomei/notionapi"
	"golang.org/x/time/rate"
)

// DefaultRateLimit is Notion's documented request budget per second.
const DefaultRateLimit = 3

// Client is the part of the Notion API the board uses.
type Client interface {
	CreatePage(ctx context.Context, req *notionapi.PageCreateRequest) (*notionapi.Page, error)
	GetDatabase(ctx context.Context, dbID string) (*notionapi.Database, error)
	UpdateDatabase(ctx context.Context, dbID string, req *notionapi.DatabaseUpdateRequest) (*notionapi.Database, error)
}

// ClientOption configures the Notion client.
type ClientOption func(*notionClient)

// WithRateLimit overrides DefaultRateLimit; zero or negative disables throttling.
func WithRateLimit(rps float64) ClientOption {
	return func(c *notionClient) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), max(int(rps), 1))
		} else {
			c.limiter = nil
		}
	}
}

type notionClient struct {
	inner   *notionapi.Client
	limiter *rate.Limiter
}

// NewClient creates a throttled Notion client for the given integration token.
func NewClient(token string, opts ...ClientOption) Client {
	c := &notionClient{
		inner:   notionapi.NewClient(notionapi.Token(token)),
		limiter: rate.NewLimiter(DefaultRateLimit, 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *notionClient) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	return c.limiter.Wait(ctx)
}

func (c *notionClient) CreatePage(ctx context.Context, req *notionapi.PageCreateRequest) (*notionapi.Page, error) {
	if err := c.wait(ctx); err != nil {
		return nil, fmt.Errorf("notion rate limit: %w", err)
	}
	page, err := c.inner.Page.Create(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("notion create page: %w", err)
	}
	return page, nil
}

func (c *notionClient) GetDatabase(ctx context.Context, dbID string) (*notionapi.Database, error) {
	if err := c.wait(ctx); err != nil {
		return nil, fmt.Errorf("notion rate limit: %w", err)
	}
	db, err := c.inner.Database.Get(ctx, notionapi.DatabaseID(dbID))
	if err != nil {
		return nil, fmt.Errorf("notion get database %s: %w", dbID, err)
	}
	return db, nil
}

func (c *notionClient) UpdateDatabase(ctx context.Context, dbID string, req *notionapi.DatabaseUpdateRequest) (*notionapi.Database, error) {
	if err := c.wait(ctx); err != nil {
		return nil, fmt.Errorf("notion rate limit: %w", err)
	}
	db, err := c.inner.Database.Update(ctx, notionapi.DatabaseID(dbID), req)
	if err != nil {
		return nil, fmt.Errorf("notion update database %s: %w", dbID, err)
	}
	return db, nil
}
