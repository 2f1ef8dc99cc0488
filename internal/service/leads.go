package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/octobees/leadscout/internal/entity"
	"github.com/octobees/leadscout/internal/repository"
)

// Page size bounds for the query endpoints.
const (
	MaxRunsPage  = 200
	MaxLeadsPage = 500
)

// LeadsService reads stored runs and leads.
type LeadsService struct {
	runs  repository.RunsRepository
	leads repository.LeadsRepository
}

// NewLeadsService creates a new LeadsService.
func NewLeadsService(runs repository.RunsRepository, leads repository.LeadsRepository) *LeadsService {
	return &LeadsService{runs: runs, leads: leads}
}

// ListRuns returns recent runs, newest first.
func (s *LeadsService) ListRuns(ctx context.Context, limit int) ([]entity.Run, error) {
	return s.runs.List(ctx, clampLimit(limit, repository.DefaultRunsLimit, MaxRunsPage))
}

// LeadsForRun returns the leads of one run ranked by score. Unknown ids yield
// repository.ErrRunNotFound.
func (s *LeadsService) LeadsForRun(ctx context.Context, id uuid.UUID) ([]entity.StoredLead, error) {
	if _, err := s.runs.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.leads.ListByRun(ctx, id)
}

// RecentLeads returns the newest leads across runs.
func (s *LeadsService) RecentLeads(ctx context.Context, limit int) ([]entity.StoredLead, error) {
	return s.leads.ListRecent(ctx, clampLimit(limit, repository.DefaultRecentLeadsLimit, MaxLeadsPage))
}

// ClearAll deletes every run and its leads.
func (s *LeadsService) ClearAll(ctx context.Context) (int64, error) {
	return s.runs.ClearAll(ctx)
}

func clampLimit(limit, def, max int) int {
	if limit <= 0 {
		return def
	}
	return min(limit, max)
}
