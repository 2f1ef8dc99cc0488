package service

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/octobees/leadscout/internal/crm"
	"github.com/octobees/leadscout/internal/entity"
	"github.com/octobees/leadscout/internal/repository"
	"github.com/octobees/leadscout/internal/service/pipeline"
	"github.com/octobees/leadscout/internal/source"
)

type fakeSource struct {
	fragments []entity.Fragment
	block     chan struct{}
}

func (f *fakeSource) Fetch(ctx context.Context, src entity.Source, _ source.Query) ([]entity.Fragment, error) {
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if src != entity.SourceGoogleMaps {
		return nil, errors.New("blocked")
	}
	return f.fragments, nil
}

type fakeAssembler struct {
	mu    sync.Mutex
	calls int
	leads []entity.Lead
}

func (f *fakeAssembler) Assemble(_ context.Context, in pipeline.Input) pipeline.Result {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	received := 0
	for _, frags := range in.FragmentsBySource {
		received += len(frags)
	}
	return pipeline.Result{Leads: f.leads, Stats: pipeline.Stats{Received: received, Leads: len(f.leads)}}
}

func (f *fakeAssembler) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeRunsRepo struct {
	mu        sync.Mutex
	createErr error
	created   []entity.RunConfig
	finished  []entity.RunStatus
	totals    []int
	logs      []string
	runs      map[uuid.UUID]entity.Run
	cleared   bool
}

func (f *fakeRunsRepo) Create(_ context.Context, cfg entity.RunConfig) (uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return uuid.Nil, f.createErr
	}
	f.created = append(f.created, cfg)
	return uuid.New(), nil
}

func (f *fakeRunsRepo) createdCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.created)
}

func (f *fakeRunsRepo) Finish(_ context.Context, _ uuid.UUID, status entity.RunStatus, total int, logs *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.finished = append(f.finished, status)
	f.totals = append(f.totals, total)
	if logs != nil {
		f.logs = append(f.logs, *logs)
	}
	return nil
}

func (f *fakeRunsRepo) Get(_ context.Context, id uuid.UUID) (*entity.Run, error) {
	run, ok := f.runs[id]
	if !ok {
		return nil, repository.ErrRunNotFound
	}
	return &run, nil
}

func (f *fakeRunsRepo) List(_ context.Context, limit int) ([]entity.Run, error) {
	out := make([]entity.Run, 0, len(f.runs))
	for _, r := range f.runs {
		out = append(out, r)
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeRunsRepo) ClearAll(context.Context) (int64, error) {
	f.cleared = true
	return int64(len(f.runs)), nil
}

type fakeLeadsRepo struct {
	insertErr error
	inserted  int
	byRun     map[uuid.UUID][]entity.StoredLead
	lastLimit int
}

func (f *fakeLeadsRepo) Insert(_ context.Context, _ uuid.UUID, leads []entity.Lead) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.inserted += len(leads)
	return nil
}

func (f *fakeLeadsRepo) ListByRun(_ context.Context, id uuid.UUID) ([]entity.StoredLead, error) {
	return f.byRun[id], nil
}

func (f *fakeLeadsRepo) ListRecent(_ context.Context, limit int) ([]entity.StoredLead, error) {
	f.lastLimit = limit
	return nil, nil
}

type fakePusher struct {
	err   error
	city  string
	count int
}

func (f *fakePusher) Push(_ context.Context, city string, leads []entity.Lead) (crm.PushResult, error) {
	if f.err != nil {
		return crm.PushResult{}, f.err
	}
	f.city = city
	f.count = len(leads)
	return crm.PushResult{Created: len(leads)}, nil
}
