package watch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler runs a full validation on a cron schedule.
type Scheduler struct {
	schedule string
	cron     *cron.Cron
	logger   *slog.Logger
	mu       sync.Mutex
	running  bool
}

// NewScheduler creates a scheduler for a standard cron expression or a
// descriptor such as "@hourly" or "@every 30m".
func NewScheduler(schedule string, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Scheduler{
		schedule: schedule,
		cron:     cron.New(),
		logger:   logger,
	}
}

// Start schedules job until ctx is cancelled. An empty schedule does
// nothing.
func (s *Scheduler) Start(ctx context.Context, job func(context.Context)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.schedule == "" {
		return nil
	}
	if s.running {
		return fmt.Errorf("scheduler already running")
	}

	if _, err := cron.ParseStandard(s.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", s.schedule, err)
	}
	if _, err := s.cron.AddFunc(s.schedule, func() { job(ctx) }); err != nil {
		return fmt.Errorf("failed to schedule validation: %w", err)
	}

	s.cron.Start()
	s.running = true
	s.logger.Info("Scheduled validation enabled", "schedule", s.schedule)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()
	return nil
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	<-s.cron.Stop().Done()
	s.running = false
	s.logger.Debug("Scheduled validation stopped")
}

// IsRunning reports whether the scheduler is running.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// NextRun returns the next scheduled validation, or nil when none is
// scheduled.
func (s *Scheduler) NextRun() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return nil
	}
	next := entries[0].Next
	return &next
}
