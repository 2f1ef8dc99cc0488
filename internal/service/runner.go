package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/octobees/leadscout/internal/crm"
	"github.com/octobees/leadscout/internal/entity"
	"github.com/octobees/leadscout/internal/export"
	"github.com/octobees/leadscout/internal/metrics"
	"github.com/octobees/leadscout/internal/repository"
	"github.com/octobees/leadscout/internal/service/pipeline"
	"github.com/octobees/leadscout/internal/service/scoring"
	"github.com/octobees/leadscout/internal/source"
)

// ErrAlreadyRunning is returned when a scan is requested while another is active.
var ErrAlreadyRunning = errors.New("a scan is already running")

// Auto mode bounds.
const (
	DefaultAutoCycles = 5
	MaxAutoCycles     = 30
	DefaultAutoPause  = 24 * time.Hour
)

// StatusLogLines is how many log lines Status includes.
const StatusLogLines = 30

// Mode is how the active scan was started.
type Mode string

const (
	ModeSingle Mode = "single"
	ModeAuto   Mode = "auto"
	ModeUpload Mode = "upload"
)

// Assembler is the pipeline entry point the runner drives.
type Assembler interface {
	Assemble(ctx context.Context, in pipeline.Input) pipeline.Result
}

// LeadPusher delivers finished leads to the CRM board.
type LeadPusher interface {
	Push(ctx context.Context, city string, leads []entity.Lead) (crm.PushResult, error)
}

// RunReport describes one finished pipeline run.
type RunReport struct {
	RunID      *uuid.UUID       `json:"runId,omitempty"`
	Status     entity.RunStatus `json:"status"`
	Config     entity.RunConfig `json:"config"`
	StartedAt  time.Time        `json:"startedAt"`
	FinishedAt time.Time        `json:"finishedAt"`
	Stats      pipeline.Stats   `json:"stats"`
	Summary    scoring.Summary  `json:"summary"`
	Snapshot   *export.Paths    `json:"snapshot,omitempty"`
	CRM        *crm.PushResult  `json:"crm,omitempty"`
	Error      string           `json:"error,omitempty"`
	Leads      []entity.Lead    `json:"-"`
}

// Status is the control panel view of the runner.
type Status struct {
	Running   bool       `json:"isRunning"`
	Mode      Mode       `json:"mode,omitempty"`
	Cycle     int        `json:"cycle,omitempty"`
	Cycles    int        `json:"cycles,omitempty"`
	StartedAt *time.Time `json:"startedAt,omitempty"`
	LastRun   *RunReport `json:"lastRun,omitempty"`
	Logs      []string   `json:"logs"`
}

// Runner executes pipeline runs and owns the state of the background scan:
// the running flag, its cancel func and the log buffer.
type Runner struct {
	source    source.FragmentSource
	assembler Assembler
	runs      repository.RunsRepository
	leads     repository.LeadsRepository
	crm       LeadPusher
	outputDir string
	logger    *zap.Logger
	logs      *LogBuffer
	clock     func() time.Time
	autoPause time.Duration

	mu        sync.Mutex
	wg        sync.WaitGroup
	running   bool
	mode      Mode
	cycle     int
	cycles    int
	startedAt time.Time
	cancel    context.CancelFunc
	last      *RunReport
}

// RunnerOption configures optional runner collaborators.
type RunnerOption func(*Runner)

// WithPersistence stores runs and leads in the database.
func WithPersistence(runs repository.RunsRepository, leads repository.LeadsRepository) RunnerOption {
	return func(r *Runner) {
		r.runs = runs
		r.leads = leads
	}
}

// WithCRM pushes every run's leads to a CRM board.
func WithCRM(pusher LeadPusher) RunnerOption {
	return func(r *Runner) { r.crm = pusher }
}

// WithOutputDir writes JSON/CSV/XLSX snapshots after each run.
func WithOutputDir(dir string) RunnerOption {
	return func(r *Runner) { r.outputDir = dir }
}

// WithRunnerLogger overrides the no-op logger.
func WithRunnerLogger(logger *zap.Logger) RunnerOption {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithLogBuffer replaces the default log buffer.
func WithLogBuffer(buf *LogBuffer) RunnerOption {
	return func(r *Runner) {
		if buf != nil {
			r.logs = buf
		}
	}
}

// WithAutoPause sets the wait between auto mode cycles.
func WithAutoPause(d time.Duration) RunnerOption {
	return func(r *Runner) {
		if d >= 0 {
			r.autoPause = d
		}
	}
}

// WithRunnerClock overrides time.Now.
func WithRunnerClock(clock func() time.Time) RunnerOption {
	return func(r *Runner) {
		if clock != nil {
			r.clock = clock
		}
	}
}

// NewRunner wires a runner around a fragment source and the assembler.
func NewRunner(src source.FragmentSource, assembler Assembler, opts ...RunnerOption) *Runner {
	r := &Runner{
		source:    src,
		assembler: assembler,
		logger:    zap.NewNop(),
		logs:      NewLogBuffer(DefaultLogLines),
		clock:     time.Now,
		autoPause: DefaultAutoPause,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Logs returns up to n of the newest log lines.
func (r *Runner) Logs(n int) []string {
	return r.logs.Tail(n)
}

// Status reports whether a scan is active plus the latest run and log lines.
func (r *Runner) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	st := Status{
		Running: r.running,
		LastRun: r.last,
		Logs:    r.logs.Tail(StatusLogLines),
	}
	if r.running {
		started := r.startedAt
		st.Mode = r.mode
		st.Cycle = r.cycle
		st.Cycles = r.cycles
		st.StartedAt = &started
	}
	return st
}

// StartSingle runs the pipeline once in the background.
func (r *Runner) StartSingle(cfg entity.RunConfig) error {
	return r.start(ModeSingle, cfg, 1)
}

// StartAuto runs the pipeline cycles times in the background, pausing between
// cycles. cycles <= 0 uses DefaultAutoCycles.
func (r *Runner) StartAuto(cfg entity.RunConfig, cycles int) error {
	if cycles <= 0 {
		cycles = DefaultAutoCycles
	}
	if cycles > MaxAutoCycles {
		return fmt.Errorf("%w: at most %d auto cycles", entity.ErrInvalidRunConfig, MaxAutoCycles)
	}
	return r.start(ModeAuto, cfg, cycles)
}

// Stop cancels the active scan. It reports whether anything was running.
func (r *Runner) Stop() bool {
	r.mu.Lock()
	cancel := r.cancel
	running := r.running
	r.mu.Unlock()

	if !running || cancel == nil {
		return false
	}
	cancel()
	r.logs.Tee(r.logger).Info("stop requested")
	return true
}

// RunSource runs the pipeline once over src in the caller's goroutine. It holds the
// same slot as background scans, so it fails with ErrAlreadyRunning while a scan is
// active and blocks scans from starting until it returns. Stop cancels it.
func (r *Runner) RunSource(ctx context.Context, src source.FragmentSource, cfg entity.RunConfig) (RunReport, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return RunReport{}, err
	}

	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return RunReport{}, ErrAlreadyRunning
	}
	ctx, cancel := context.WithCancel(ctx)
	r.running = true
	r.mode = ModeUpload
	r.cycle = 1
	r.cycles = 1
	r.startedAt = r.clock()
	r.cancel = cancel
	r.logs.Reset()
	r.mu.Unlock()
	defer r.finish(cancel)

	report, err := r.ExecuteSource(ctx, src, cfg)
	r.mu.Lock()
	r.last = &report
	r.mu.Unlock()
	return report, err
}

// Wait blocks until the background scan, if any, has finished.
func (r *Runner) Wait() {
	r.wg.Wait()
}

func (r *Runner) start(mode Mode, cfg entity.RunConfig, cycles int) error {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		return ErrAlreadyRunning
	}

	ctx, cancel := context.WithCancel(context.Background())
	r.running = true
	r.mode = mode
	r.cycle = 0
	r.cycles = cycles
	r.startedAt = r.clock()
	r.cancel = cancel
	r.logs.Reset()

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer r.finish(cancel)
		r.loop(ctx, mode, cfg, cycles)
	}()
	return nil
}

func (r *Runner) loop(ctx context.Context, mode Mode, cfg entity.RunConfig, cycles int) {
	logger := r.logs.Tee(r.logger)
	if mode == ModeAuto {
		logger.Info("auto mode started", zap.Int("cycles", cycles), zap.Duration("pause", r.autoPause))
	}

	for cycle := 1; cycle <= cycles; cycle++ {
		if ctx.Err() != nil {
			break
		}
		r.mu.Lock()
		r.cycle = cycle
		r.mu.Unlock()
		if mode == ModeAuto {
			logger.Info("auto cycle", zap.Int("cycle", cycle), zap.Int("of", cycles))
		}

		report, err := r.Execute(ctx, cfg)
		r.mu.Lock()
		r.last = &report
		r.mu.Unlock()
		if err != nil && ctx.Err() != nil {
			break
		}

		if cycle < cycles {
			logger.Info("waiting for next cycle", zap.Duration("pause", r.autoPause))
			select {
			case <-ctx.Done():
			case <-time.After(r.autoPause):
			}
		}
	}

	if ctx.Err() != nil {
		logger.Info("scan stopped")
		return
	}
	if mode == ModeAuto {
		logger.Info("auto mode complete")
	}
}

func (r *Runner) finish(cancel context.CancelFunc) {
	cancel()
	r.mu.Lock()
	r.running = false
	r.cancel = nil
	r.mu.Unlock()
}

// Execute performs one complete run synchronously: record the run, collect fragments
// from every source, assemble leads, persist them, write snapshots, push to the CRM
// and log a summary. Snapshot and CRM failures are logged but do not fail the run.
func (r *Runner) Execute(ctx context.Context, cfg entity.RunConfig) (RunReport, error) {
	return r.ExecuteSource(ctx, r.source, cfg)
}

// ExecuteSource is Execute over fragments from src instead of the configured source.
func (r *Runner) ExecuteSource(ctx context.Context, src source.FragmentSource, cfg entity.RunConfig) (RunReport, error) {
	cfg = cfg.WithDefaults()
	report := RunReport{Config: cfg, StartedAt: r.clock()}
	if err := cfg.Validate(); err != nil {
		return report, err
	}
	logger := r.logs.Tee(r.logger)

	if r.runs != nil {
		id, err := r.runs.Create(ctx, cfg)
		if err != nil {
			metrics.RunsTotal.WithLabelValues(string(entity.RunFailed)).Inc()
			report.Status = entity.RunFailed
			report.Error = err.Error()
			return report, fmt.Errorf("create run: %w", err)
		}
		report.RunID = &id
	}
	logger.Info("run started",
		zap.String("city", cfg.City),
		zap.String("state", cfg.State),
		zap.String("niche", cfg.Niche),
		zap.Int("max_leads", cfg.MaxLeads),
	)

	fragments := source.Collect(ctx, src, cfg, logger)
	result := r.assembler.Assemble(ctx, pipeline.Input{
		FragmentsBySource: fragments,
		Filters:           cfg.Filters,
		MaxLeads:          cfg.MaxLeads,
	})
	report.Stats = result.Stats
	report.Leads = result.Leads

	if err := ctx.Err(); err != nil {
		return r.fail(report, logger, fmt.Errorf("run stopped: %w", err))
	}

	if r.leads != nil && report.RunID != nil {
		if err := r.leads.Insert(ctx, *report.RunID, result.Leads); err != nil {
			return r.fail(report, logger, fmt.Errorf("save leads: %w", err))
		}
	}

	if r.outputDir != "" {
		paths, err := export.WriteSnapshot(r.outputDir, result.Leads, report.StartedAt)
		if err != nil {
			logger.Warn("snapshot write failed", zap.Error(err))
		} else {
			report.Snapshot = &paths
		}
	}

	if r.crm != nil && len(result.Leads) > 0 {
		pushed, err := r.crm.Push(ctx, cfg.City, result.Leads)
		switch {
		case errors.Is(err, crm.ErrNotConfigured):
			logger.Info("notion push skipped: no database configured")
		case err != nil:
			logger.Warn("notion push failed", zap.Error(err))
		default:
			report.CRM = &pushed
		}
	}

	report.Summary = scoring.Summarize(result.Leads)
	logSummary(logger, report.Summary)

	report.Status = entity.RunCompleted
	report.FinishedAt = r.clock()
	r.record(ctx, report, logger)
	return report, nil
}

func (r *Runner) fail(report RunReport, logger *zap.Logger, err error) (RunReport, error) {
	report.Status = entity.RunFailed
	report.Error = err.Error()
	report.FinishedAt = r.clock()
	logger.Error("run failed", zap.Error(err))
	r.record(context.Background(), report, logger)
	return report, err
}

// record closes the run row and updates run metrics. The row is written even when
// ctx was cancelled so stopped runs do not stay "running".
func (r *Runner) record(ctx context.Context, report RunReport, logger *zap.Logger) {
	metrics.RunsTotal.WithLabelValues(string(report.Status)).Inc()
	metrics.RunDuration.Observe(report.FinishedAt.Sub(report.StartedAt).Seconds())

	if r.runs == nil || report.RunID == nil {
		return
	}
	total := len(report.Leads)
	if report.Status == entity.RunFailed {
		total = 0
	}
	logs := r.logs.String()
	if err := r.runs.Finish(context.WithoutCancel(ctx), *report.RunID, report.Status, total, &logs); err != nil {
		logger.Warn("run finish not recorded", zap.String("run_id", report.RunID.String()), zap.Error(err))
	}
}

func logSummary(logger *zap.Logger, s scoring.Summary) {
	logger.Info("run complete",
		zap.Int("leads", s.Total),
		zap.Int("premium", s.ByHotness[string(entity.HotnessPremium)]),
		zap.Int("hot", s.ByHotness[string(entity.HotnessHot)]),
		zap.Int("warm", s.ByHotness[string(entity.HotnessWarm)]),
		zap.Int("cool", s.ByHotness[string(entity.HotnessCool)]),
	)
	for i, top := range s.TopLeads {
		logger.Info("top lead",
			zap.Int("rank", i+1),
			zap.String("name", top.Name),
			zap.Int("score", top.Score),
			zap.String("hotness", top.Hotness),
		)
	}
}
