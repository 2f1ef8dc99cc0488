package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/octobees/leadscout/internal/database"
	"github.com/octobees/leadscout/internal/entity"
)

// DefaultRecentLeadsLimit is used when ListRecent is called with a non-positive limit.
const DefaultRecentLeadsLimit = 100

// LeadsRepository persists scored leads.
type LeadsRepository interface {
	Insert(ctx context.Context, runID uuid.UUID, leads []entity.Lead) error
	ListByRun(ctx context.Context, runID uuid.UUID) ([]entity.StoredLead, error)
	ListRecent(ctx context.Context, limit int) ([]entity.StoredLead, error)
}

// PGXLeadsRepository implements LeadsRepository using pgx.
type PGXLeadsRepository struct {
	pool database.Pool
}

// NewPGXLeadsRepository wires a pgx backed repository.
func NewPGXLeadsRepository(pool database.Pool) *PGXLeadsRepository {
	return &PGXLeadsRepository{pool: pool}
}

const insertLeadQuery = `
    INSERT INTO leads (
        run_id, name, phone, phone_e164, email, address, website,
        website_status, website_reason, mobile_responsive,
        rating, review_count, source, score, hotness, created_at
    ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, NOW())
`

// Insert writes all leads of a run in one transaction.
func (r *PGXLeadsRepository) Insert(ctx context.Context, runID uuid.UUID, leads []entity.Lead) error {
	if len(leads) == 0 {
		return nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, lead := range leads {
		status := string(lead.Verdict.Status)
		if status == "" {
			status = string(entity.WebsiteNone)
		}
		if _, err := tx.Exec(ctx, insertLeadQuery,
			runID,
			lead.Name,
			lead.Phone,
			nullIfEmpty(lead.PhoneE164),
			lead.Email,
			lead.Address,
			lead.Website,
			status,
			nullIfEmpty(lead.Verdict.Reason),
			lead.Verdict.MobileResponsive,
			lead.Rating,
			lead.ReviewCount,
			lead.Source.Label(),
			lead.Score,
			string(lead.Hotness),
		); err != nil {
			return fmt.Errorf("insert lead %q: %w", lead.Name, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit leads: %w", err)
	}
	return nil
}

const leadColumns = `l.id, l.run_id, l.name, l.phone, l.phone_e164, l.email, l.address, l.website,
        l.website_status, l.website_reason, l.mobile_responsive, l.rating, l.review_count,
        l.source, l.score, l.hotness, l.created_at`

// ListByRun returns a run's leads, highest score first.
func (r *PGXLeadsRepository) ListByRun(ctx context.Context, runID uuid.UUID) ([]entity.StoredLead, error) {
	query := `SELECT ` + leadColumns + `
        FROM leads l
        WHERE l.run_id = $1
        ORDER BY l.score DESC, l.id ASC`
	rows, err := r.pool.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("list leads for run: %w", err)
	}
	defer rows.Close()
	return scanLeads(rows, false)
}

// ListRecent returns the newest leads across runs with their run's location.
func (r *PGXLeadsRepository) ListRecent(ctx context.Context, limit int) ([]entity.StoredLead, error) {
	if limit <= 0 {
		limit = DefaultRecentLeadsLimit
	}
	query := `SELECT ` + leadColumns + `, r.city, r.state, r.niche
        FROM leads l
        JOIN runs r ON l.run_id = r.id
        ORDER BY l.created_at DESC
        LIMIT $1`
	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent leads: %w", err)
	}
	defer rows.Close()
	return scanLeads(rows, true)
}

func scanLeads(rows pgx.Rows, withRun bool) ([]entity.StoredLead, error) {
	leads := make([]entity.StoredLead, 0)
	for rows.Next() {
		var l entity.StoredLead
		dest := []any{
			&l.ID, &l.RunID, &l.Name, &l.Phone, &l.PhoneE164, &l.Email, &l.Address, &l.Website,
			&l.WebsiteStatus, &l.WebsiteReason, &l.MobileResponsive, &l.Rating, &l.ReviewCount,
			&l.Source, &l.Score, &l.Hotness, &l.CreatedAt,
		}
		if withRun {
			dest = append(dest, &l.City, &l.State, &l.Niche)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan lead: %w", err)
		}
		leads = append(leads, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate leads: %w", err)
	}
	return leads, nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
