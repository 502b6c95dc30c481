package scheduler

import (
	"context"
	"fmt"
	"time"

	"kasbon-backend/internal/logger"

	"github.com/robfig/cron/v3"
)

// Job is a unit of scheduled work. The context is cancelled when the
// scheduler stops.
type Job func(ctx context.Context) error

// Scheduler runs named jobs on cron specs (UTC, seconds precision).
type Scheduler struct {
	cron   *cron.Cron
	ctx    context.Context
	cancel context.CancelFunc
}

func New() *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithSeconds(),
		),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Register adds job under a cron spec. A run that panics or fails is logged and the
// schedule continues.
func (s *Scheduler) Register(name, spec string, job Job) error {
	_, err := s.cron.AddFunc(spec, func() { s.run(name, job) })
	if err != nil {
		return fmt.Errorf("register %s: %w", name, err)
	}
	logger.Info("cron job registered", "job", name, "spec", spec)
	return nil
}

func (s *Scheduler) run(name string, job Job) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("cron job panicked", "job", name, "panic", r)
		}
	}()
	start := time.Now()
	if err := job(s.ctx); err != nil {
		logger.Error("cron job failed", "job", name, "error", err, "took", time.Since(start))
		return
	}
	logger.Debug("cron job finished", "job", name, "took", time.Since(start))
}

func (s *Scheduler) Start() {
	logger.Info("Starting cron scheduler...")
	s.cron.Start()
}

// Stop cancels running jobs and waits for them to return.
func (s *Scheduler) Stop() {
	logger.Info("Stopping cron scheduler...")
	s.cancel()
	<-s.cron.Stop().Done()
	logger.Info("Cron scheduler stopped")
}

func (s *Scheduler) Entries() int { return len(s.cron.Entries()) }
