package handler

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/octobees/leadscout/internal/entity"
	"github.com/octobees/leadscout/internal/repository"
	"github.com/octobees/leadscout/internal/service"
	"github.com/octobees/leadscout/internal/source"
)

type stubSettings struct {
	mu      sync.Mutex
	cfg     entity.RunConfig
	loadErr error
	saved   []entity.RunConfig
}

func newStubSettings() *stubSettings {
	return &stubSettings{cfg: entity.DefaultRunConfig()}
}

func (s *stubSettings) Load() (entity.RunConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadErr != nil {
		return entity.RunConfig{}, s.loadErr
	}
	return s.cfg, nil
}

func (s *stubSettings) Save(cfg entity.RunConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = cfg
	s.saved = append(s.saved, cfg)
	return nil
}

type stubRunner struct {
	startErr   error
	started    []entity.RunConfig
	cycles     int
	stopResult bool
	logs       []string
}

func (s *stubRunner) StartSingle(cfg entity.RunConfig) error {
	if s.startErr != nil {
		return s.startErr
	}
	s.started = append(s.started, cfg)
	return nil
}

func (s *stubRunner) StartAuto(cfg entity.RunConfig, cycles int) error {
	if s.startErr != nil {
		return s.startErr
	}
	s.started = append(s.started, cfg)
	s.cycles = cycles
	return nil
}

func (s *stubRunner) Stop() bool { return s.stopResult }

func (s *stubRunner) Status() service.Status {
	return service.Status{Running: len(s.started) > 0, Logs: s.logs}
}

func (s *stubRunner) Logs(n int) []string {
	if len(s.logs) > n {
		return s.logs[len(s.logs)-n:]
	}
	return s.logs
}

type stubLeads struct {
	runs      []entity.Run
	leads     map[uuid.UUID][]entity.StoredLead
	err       error
	lastLimit int
	cleared   int64
}

func (s *stubLeads) ListRuns(_ context.Context, limit int) ([]entity.Run, error) {
	s.lastLimit = limit
	return s.runs, s.err
}

func (s *stubLeads) LeadsForRun(_ context.Context, id uuid.UUID) ([]entity.StoredLead, error) {
	if s.err != nil {
		return nil, s.err
	}
	leads, ok := s.leads[id]
	if !ok {
		return nil, repository.ErrRunNotFound
	}
	return leads, nil
}

func (s *stubLeads) RecentLeads(_ context.Context, limit int) ([]entity.StoredLead, error) {
	s.lastLimit = limit
	return nil, s.err
}

func (s *stubLeads) ClearAll(context.Context) (int64, error) {
	return s.cleared, s.err
}

type stubExecutor struct {
	err       error
	cfg       entity.RunConfig
	fragments int
}

func (s *stubExecutor) RunSource(ctx context.Context, src source.FragmentSource, cfg entity.RunConfig) (service.RunReport, error) {
	if s.err != nil {
		return service.RunReport{}, s.err
	}
	s.cfg = cfg
	for _, name := range cfg.Sources {
		frags, _ := src.Fetch(ctx, name, source.QueryFor(cfg))
		s.fragments += len(frags)
	}
	return service.RunReport{Status: entity.RunCompleted, Config: cfg}, nil
}

var errBoom = errors.New("boom")
