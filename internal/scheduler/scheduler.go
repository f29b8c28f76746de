// Package scheduler triggers ingestion passes on a cron schedule.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/octobees/contact-finder/internal/dto"
	"github.com/octobees/contact-finder/internal/service"
)

// DefaultSpec runs at midnight on the first day of every month.
const DefaultSpec = "0 0 1 * *"

// Runner executes one ingestion pass from a source file.
type Runner interface {
	RunFromFile(ctx context.Context, path string) (dto.IngestSummary, error)
}

// Config selects what and when to ingest.
type Config struct {
	Spec        string
	SourcesPath string
	RunOnStart  bool
}

// Scheduler fires ingestion passes; overlapping triggers are skipped.
type Scheduler struct {
	cfg    Config
	runner Runner
	logger *zap.Logger
	cron   *cron.Cron
	wg     sync.WaitGroup
}

// New validates the cron spec and builds a stopped scheduler.
func New(runner Runner, cfg Config, logger *zap.Logger) (*Scheduler, error) {
	if cfg.Spec == "" {
		cfg.Spec = DefaultSpec
	}
	if _, err := cron.ParseStandard(cfg.Spec); err != nil {
		return nil, fmt.Errorf("parse ingest schedule %q: %w", cfg.Spec, err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	cl := cronLogger{logger.Sugar()}
	return &Scheduler{
		cfg:    cfg,
		runner: runner,
		logger: logger,
		cron:   cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl))),
	}, nil
}

// Start registers the job and starts the cron loop. Jobs run under ctx.
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.cfg.Spec, func() { s.trigger(ctx) }); err != nil {
		return fmt.Errorf("register ingest job: %w", err)
	}
	s.cron.Start()
	s.logger.Info("ingest scheduler started", zap.String("spec", s.cfg.Spec), zap.String("sources", s.cfg.SourcesPath))

	if s.cfg.RunOnStart {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.trigger(ctx)
		}()
	}
	return nil
}

// Stop halts the cron loop and waits for running passes to return.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.wg.Wait()
	s.logger.Info("ingest scheduler stopped")
}

func (s *Scheduler) trigger(ctx context.Context) {
	summary, err := s.runner.RunFromFile(ctx, s.cfg.SourcesPath)
	switch {
	case errors.Is(err, service.ErrPassInProgress):
		s.logger.Info("ingest trigger skipped, pass already running")
	case errors.Is(err, context.Canceled):
		s.logger.Info("ingest pass interrupted", zap.Int("stored", summary.Stored))
	case err != nil:
		s.logger.Error("ingest pass failed", zap.Error(err))
	default:
		s.logger.Info("ingest pass completed",
			zap.Int("total", summary.Total),
			zap.Int("stored", summary.Stored),
			zap.Int("skipped", summary.Skipped),
		)
	}
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	s *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}
