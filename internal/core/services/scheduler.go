package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/notera-io/notera-cli/internal/core/domain"
	"github.com/notera-io/notera-cli/internal/core/ports/driving"
	"github.com/notera-io/notera-cli/internal/logger"
)

// SchedulerConfig holds scheduler tuning.
type SchedulerConfig struct {
	// Interval is how often a sync pass runs.
	Interval time.Duration

	// Debounce delays kick-triggered runs so bursts of source changes
	// collapse into one pass.
	Debounce time.Duration
}

// DefaultSchedulerConfig mirrors the original daemon cadence.
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		Interval: 10 * time.Minute,
		Debounce: 2 * time.Second,
	}
}

// SchedulerStatus is a snapshot of the scheduler's recent history.
type SchedulerStatus struct {
	// Running indicates the loop is active.
	Running bool

	// LastRun is when a pass last started, zero if never.
	LastRun time.Time

	// LastSuccess is when a pass last completed without error.
	LastSuccess time.Time

	// LastError holds the last failure message, empty after a success.
	LastError string

	// ConsecutiveFailures counts failed passes since the last success.
	ConsecutiveFailures int

	// NotesIndexed is the note count from the last successful report.
	NotesIndexed int
}

// Scheduler runs incremental sync passes on an interval. It can also be
// kicked externally (e.g. by a filesystem watcher on the export path) to
// run ahead of schedule; kicks are debounced.
type Scheduler struct {
	config SchedulerConfig
	runner driving.SyncRunner

	kickCh chan struct{}

	mu      sync.Mutex
	running bool
	status  SchedulerStatus
}

// NewScheduler creates a scheduler around a sync runner.
func NewScheduler(config SchedulerConfig, runner driving.SyncRunner) *Scheduler {
	if config.Interval <= 0 {
		config.Interval = DefaultSchedulerConfig().Interval
	}
	if config.Debounce <= 0 {
		config.Debounce = DefaultSchedulerConfig().Debounce
	}
	return &Scheduler{
		config: config,
		runner: runner,
		kickCh: make(chan struct{}, 1),
	}
}

// Start runs the scheduler loop until the context is cancelled.
// A pass runs immediately on startup, then on every interval tick and
// after every (debounced) kick.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	s.status.Running = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.status.Running = false
		s.mu.Unlock()
	}()

	logger.Info("Scheduler started (interval %s)", s.config.Interval)

	s.runOnce(ctx)

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Scheduler stopped")
			return ctx.Err()

		case <-ticker.C:
			s.runOnce(ctx)

		case <-s.kickCh:
			// Collapse change bursts into a single pass.
			timer := time.NewTimer(s.config.Debounce)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
			s.drainKicks()
			s.runOnce(ctx)
		}
	}
}

// Kick requests an out-of-schedule sync pass. Non-blocking; multiple kicks
// before the debounce window closes collapse into one pass.
func (s *Scheduler) Kick() {
	select {
	case s.kickCh <- struct{}{}:
	default:
	}
}

// Status returns a snapshot of the scheduler state.
func (s *Scheduler) Status() SchedulerStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// runOnce executes a single incremental pass and records the outcome.
func (s *Scheduler) runOnce(ctx context.Context) {
	started := time.Now()

	report, err := s.runner.Sync(ctx, domain.SyncModeIncremental)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.status.LastRun = started

	switch {
	case errors.Is(err, domain.ErrSyncInProgress):
		// Another pass is active; not a failure.
		logger.Debug("Scheduled pass skipped: sync already running")

	case err != nil:
		s.status.LastError = err.Error()
		s.status.ConsecutiveFailures++
		logger.Warn("Scheduled sync failed (%d consecutive): %v",
			s.status.ConsecutiveFailures, err)

	default:
		s.status.LastSuccess = time.Now()
		s.status.LastError = ""
		s.status.ConsecutiveFailures = 0
		s.status.NotesIndexed = report.Total - report.Failed
		logger.Info("Scheduled sync: %d added, %d updated, %d deleted",
			report.Added, report.Updated, report.Deleted)
	}
}

func (s *Scheduler) drainKicks() {
	for {
		select {
		case <-s.kickCh:
		default:
			return
		}
	}
}
