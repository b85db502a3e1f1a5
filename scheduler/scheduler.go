package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Job is a unit of background work. Errors are logged, never propagated.
type Job func(ctx context.Context) error

type Scheduler struct {
	cron    *cron.Cron
	logger  *slog.Logger
	timeout time.Duration
	ctx     context.Context
	cancel  context.CancelFunc
}

// New creates a scheduler; each run gets a context bounded by timeout.
func New(logger *slog.Logger, timeout time.Duration) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = time.Minute
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:    cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger), cron.Recover(cron.DiscardLogger))),
		logger:  logger,
		timeout: timeout,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Add registers job under a cron spec such as "@every 5m" or "*/10 * * * *".
func (s *Scheduler) Add(name, spec string, job Job) error {
	_, err := s.cron.AddFunc(spec, func() { s.runJob(name, job) })
	if err != nil {
		return fmt.Errorf("invalid schedule %q for job %s: %w", spec, name, err)
	}
	s.logger.Info("job scheduled", "job", name, "schedule", spec)
	return nil
}

func (s *Scheduler) runJob(name string, job Job) {
	ctx, cancel := context.WithTimeout(s.ctx, s.timeout)
	defer cancel()

	start := time.Now()
	if err := job(ctx); err != nil {
		s.logger.Error("scheduled job failed", "job", name, "duration", time.Since(start), "error", err)
		return
	}
	s.logger.Debug("scheduled job finished", "job", name, "duration", time.Since(start))
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop cancels running jobs and waits for them to return or for ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) {
	s.cancel()
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.logger.Warn("scheduler stop timed out")
	}
}
