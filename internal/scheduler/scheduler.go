package scheduler

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
)

// Scheduler owns the periodic maintenance jobs. It is constructed once at
// process start and passed explicitly to whatever triggers it; there is no
// package-level state. Each Run* entry point is independently invocable and
// safe to re-run: generation dedups on (template, day) and the scans are
// read-mostly.
type Scheduler struct {
	generator *Generator
	scanner   *Scanner
	interval  time.Duration
	logger    *log.Logger
	stopChan  chan struct{}
}

// New creates a scheduler that runs all jobs every interval.
func New(generator *Generator, scanner *Scanner, interval time.Duration, logger *log.Logger) *Scheduler {
	return &Scheduler{
		generator: generator,
		scanner:   scanner,
		interval:  interval,
		logger:    logger,
		stopChan:  make(chan struct{}),
	}
}

// RunRecurringGeneration spawns due occurrences from recurring templates.
func (s *Scheduler) RunRecurringGeneration(ctx context.Context, now time.Time) ([]string, error) {
	return s.generator.GenerateDueOccurrences(ctx, now)
}

// RunMaintenanceReminders notifies recipients of maintenance due soon.
func (s *Scheduler) RunMaintenanceReminders(ctx context.Context, now time.Time) (int, error) {
	return s.scanner.ScanMaintenanceReminders(ctx, now)
}

// RunLowStockAlerts notifies recipients of items below reorder threshold.
func (s *Scheduler) RunLowStockAlerts(ctx context.Context, now time.Time) (int, error) {
	return s.scanner.ScanLowStock(ctx, now)
}

// RunNotificationCleanup sweeps old read notifications.
func (s *Scheduler) RunNotificationCleanup(ctx context.Context, now time.Time) (int64, error) {
	return s.scanner.CleanupNotifications(ctx, now)
}

// Start begins the job loop: one full run immediately, then one per
// interval, until Stop is called or the context is canceled. Job failures
// are logged and never stop the loop.
func (s *Scheduler) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.WithField("interval", s.interval).Info("maintenance scheduler started")
	s.runAll(ctx)

	for {
		select {
		case <-ticker.C:
			s.runAll(ctx)
		case <-s.stopChan:
			s.logger.Info("maintenance scheduler stopped")
			return
		case <-ctx.Done():
			s.logger.Info("maintenance scheduler context canceled")
			return
		}
	}
}

// Stop stops the scheduler loop.
func (s *Scheduler) Stop() {
	close(s.stopChan)
}

func (s *Scheduler) runAll(ctx context.Context) {
	now := time.Now()

	if _, err := s.RunRecurringGeneration(ctx, now); err != nil {
		s.logger.WithError(err).Error("recurring generation run failed")
	}
	if _, err := s.RunMaintenanceReminders(ctx, now); err != nil {
		s.logger.WithError(err).Error("maintenance reminder run failed")
	}
	if _, err := s.RunLowStockAlerts(ctx, now); err != nil {
		s.logger.WithError(err).Error("low stock alert run failed")
	}
	if _, err := s.RunNotificationCleanup(ctx, now); err != nil {
		s.logger.WithError(err).Error("notification cleanup run failed")
	}
}
