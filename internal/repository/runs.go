package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/octobees/leadscout/internal/database"
	"github.com/octobees/leadscout/internal/entity"
)

// ErrRunNotFound indicates no run row matches the given id.
var ErrRunNotFound = errors.New("run not found")

// DefaultRunsLimit is used when List is called with a non-positive limit.
const DefaultRunsLimit = 50

// RunsRepository persists run metadata.
type RunsRepository interface {
	Create(ctx context.Context, cfg entity.RunConfig) (uuid.UUID, error)
	Finish(ctx context.Context, id uuid.UUID, status entity.RunStatus, totalLeads int, logs *string) error
	Get(ctx context.Context, id uuid.UUID) (*entity.Run, error)
	List(ctx context.Context, limit int) ([]entity.Run, error)
	ClearAll(ctx context.Context) (int64, error)
}

// PGXRunsRepository implements RunsRepository using pgx.
type PGXRunsRepository struct {
	pool database.Pool
}

// NewPGXRunsRepository wires a pgx backed repository.
func NewPGXRunsRepository(pool database.Pool) *PGXRunsRepository {
	return &PGXRunsRepository{pool: pool}
}

// Create inserts a run in the running state and returns its id.
func (r *PGXRunsRepository) Create(ctx context.Context, cfg entity.RunConfig) (uuid.UUID, error) {
	id := uuid.New()
	query := `
        INSERT INTO runs (id, city, state, niche, max_leads, status, started_at)
        VALUES ($1, $2, $3, $4, $5, $6, NOW())
    `
	if _, err := r.pool.Exec(ctx, query, id, cfg.City, cfg.State, cfg.Niche, cfg.MaxLeads, string(entity.RunRunning)); err != nil {
		return uuid.Nil, fmt.Errorf("insert run: %w", err)
	}
	return id, nil
}

// Finish records the final status, lead count and optional captured logs.
func (r *PGXRunsRepository) Finish(ctx context.Context, id uuid.UUID, status entity.RunStatus, totalLeads int, logs *string) error {
	query := `
        UPDATE runs SET
            status = $2,
            total_leads = $3,
            logs = COALESCE($4, logs),
            finished_at = CASE WHEN $2 IN ('completed', 'failed') THEN NOW() ELSE finished_at END
        WHERE id = $1
    `
	tag, err := r.pool.Exec(ctx, query, id, string(status), totalLeads, logs)
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrRunNotFound
	}
	return nil
}

// Get loads one run by id.
func (r *PGXRunsRepository) Get(ctx context.Context, id uuid.UUID) (*entity.Run, error) {
	query := `
        SELECT id, started_at, finished_at, city, state, niche, max_leads, status, total_leads
        FROM runs
        WHERE id = $1
    `
	var (
		run    entity.Run
		status string
	)
	err := r.pool.QueryRow(ctx, query, id).Scan(&run.ID, &run.StartedAt, &run.FinishedAt, &run.City,
		&run.State, &run.Niche, &run.MaxLeads, &status, &run.TotalLeads)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRunNotFound
		}
		return nil, fmt.Errorf("get run: %w", err)
	}
	run.Status = entity.RunStatus(status)
	return &run, nil
}

// List returns the most recent runs first.
func (r *PGXRunsRepository) List(ctx context.Context, limit int) ([]entity.Run, error) {
	if limit <= 0 {
		limit = DefaultRunsLimit
	}
	query := `
        SELECT id, started_at, finished_at, city, state, niche, max_leads, status, total_leads
        FROM runs
        ORDER BY started_at DESC
        LIMIT $1
    `
	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	runs := make([]entity.Run, 0)
	for rows.Next() {
		var (
			run    entity.Run
			status string
		)
		if err := rows.Scan(&run.ID, &run.StartedAt, &run.FinishedAt, &run.City, &run.State,
			&run.Niche, &run.MaxLeads, &status, &run.TotalLeads); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.Status = entity.RunStatus(status)
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// ClearAll deletes every run; leads go with them through the cascade.
func (r *PGXRunsRepository) ClearAll(ctx context.Context) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM runs`)
	if err != nil {
		return 0, fmt.Errorf("clear runs: %w", err)
	}
	return tag.RowsAffected(), nil
}
