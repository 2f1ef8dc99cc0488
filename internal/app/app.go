// Package app wires the shared pipeline components used by the API server and the CLI.
package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/octobees/leadscout/internal/config"
	"github.com/octobees/leadscout/internal/crm"
	"github.com/octobees/leadscout/internal/database"
	"github.com/octobees/leadscout/internal/service/pipeline"
	"github.com/octobees/leadscout/internal/service/website"
)

// Pipeline holds the assembler and the resources it keeps open.
type Pipeline struct {
	Assembler *pipeline.Assembler
	closers   []func()
}

// NewPipeline builds the website classifier (with the optional Redis verdict cache
// and headless mobile probe) and the assembler around it.
func NewPipeline(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Pipeline, error) {
	p := &Pipeline{}
	opts := []website.Option{
		website.WithLogger(logger.Named("website")),
		website.WithTimeout(cfg.FetchTimeout),
	}

	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		p.closers = append(p.closers, func() { _ = client.Close() })
		opts = append(opts, website.WithCache(website.NewRedisCache(client, cfg.VerdictCacheTTL)))
	}

	if cfg.MobileProbe == config.MobileProbeChrome {
		probe := website.NewChromeProbe(context.WithoutCancel(ctx))
		p.closers = append(p.closers, probe.Close)
		opts = append(opts, website.WithProbe(probe))
	}

	fetcher := website.NewHTTPFetcher(&http.Client{Timeout: cfg.FetchTimeout})
	classifier := website.NewClassifier(fetcher, opts...)
	p.Assembler = pipeline.NewAssembler(classifier,
		pipeline.WithConcurrency(cfg.ClassifyConcurrency),
		pipeline.WithLogger(logger.Named("pipeline")),
	)
	return p, nil
}

// Close releases the cache connection and the browser.
func (p *Pipeline) Close() {
	for i := len(p.closers) - 1; i >= 0; i-- {
		p.closers[i]()
	}
}

// NewBoard returns the Notion lead board, or nil when no integration token is set.
func NewBoard(cfg *config.Config, logger *zap.Logger) *crm.Board {
	if cfg.NotionAPIKey == "" {
		return nil
	}
	return crm.NewBoard(crm.NewClient(cfg.NotionAPIKey), cfg.NotionDatabaseID, logger.Named("crm"))
}

// OpenDatabase connects to PostgreSQL and applies pending migrations.
func OpenDatabase(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*pgxpool.Pool, error) {
	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(ctx, pool, logger); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return pool, nil
}
