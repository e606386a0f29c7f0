package loader

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"
)

// Scheduler periodically re-validates loaded modules against their stored
// contracts, so on-disk edits are noticed even without a reload.
type Scheduler struct {
	loader   *Loader
	schedule string
	cron     *cron.Cron
	mu       sync.Mutex
	logger   *slog.Logger
	running  bool
}

// NewScheduler creates a revalidation scheduler with a standard cron
// expression.
func NewScheduler(loader *Loader, schedule string) *Scheduler {
	return &Scheduler{
		loader:   loader,
		schedule: schedule,
		cron:     cron.New(),
		logger:   slog.Default().With("component", "loader.scheduler"),
	}
}

// Start begins scheduled revalidation. An empty schedule disables it.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.schedule == "" {
		s.logger.Info("revalidation schedule not configured, skipping scheduler")
		return nil
	}

	if _, err := cron.ParseStandard(s.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", s.schedule, err)
	}

	_, err := s.cron.AddFunc(s.schedule, func() {
		s.runRevalidation(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule revalidation: %w", err)
	}

	s.cron.Start()
	s.running = true
	s.logger.Info("revalidation scheduler started", "schedule", s.schedule)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()
	return nil
}

func (s *Scheduler) runRevalidation(ctx context.Context) {
	invalidated, err := s.loader.Revalidate(ctx)
	if err != nil {
		s.logger.Error("scheduled revalidation failed", "error", err)
		return
	}
	if invalidated > 0 {
		s.logger.Info("scheduled revalidation completed", "invalidated", invalidated)
	} else {
		s.logger.Debug("scheduled revalidation completed, no drift found")
	}
}

// Stop stops the scheduler and waits for a running job to complete.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron != nil && s.running {
		ctx := s.cron.Stop()
		<-ctx.Done()
		s.running = false
		s.logger.Info("revalidation scheduler stopped")
	}
}

// IsRunning reports whether the scheduler is active.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}
