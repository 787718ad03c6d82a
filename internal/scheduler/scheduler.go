package scheduler

import (
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"contact-relay-go/internal/config"
	"contact-relay-go/internal/metrics"
)

// Sweeper evicts expired rate limit entries.
type Sweeper interface {
	Sweep(now time.Time) int
	Len() int
}

// Scheduler periodically sweeps the rate limiter
type Scheduler struct {
	cron      *cron.Cron
	entryID   cron.EntryID
	config    *config.SchedulerConfig
	sweeper   Sweeper
	metrics   *metrics.Metrics
	now       func() time.Time
	isRunning bool
	mu        sync.RWMutex

	// held for the whole sweep; Wait acquires it to drain an in-flight run
	sweepMu sync.Mutex

	// guards lastRun separately so a running job never waits on Stop
	lastMu  sync.Mutex
	lastRun time.Time
}

// NewScheduler creates a new scheduler
func NewScheduler(cfg *config.SchedulerConfig, sweeper Sweeper, metrics *metrics.Metrics) *Scheduler {
	return &Scheduler{
		cron:    cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		config:  cfg,
		sweeper: sweeper,
		metrics: metrics,
		now:     time.Now,
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("scheduler is already running")
	}

	schedule := fmt.Sprintf("0 */%d * * * *", s.config.SweepIntervalMinutes)

	entryID, err := s.cron.AddFunc(schedule, func() { s.runSweep() })
	if err != nil {
		return fmt.Errorf("failed to add cron job: %w", err)
	}

	s.entryID = entryID
	s.cron.Start()
	s.isRunning = true

	logrus.Infof("Sweeper started with interval: %d minutes", s.config.SweepIntervalMinutes)
	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return nil
	}

	ctx := s.cron.Stop()
	s.cron.Remove(s.entryID)

	select {
	case <-ctx.Done():
		logrus.Info("Sweeper stopped gracefully")
	case <-time.After(30 * time.Second):
		logrus.Warn("Sweeper stop timeout, forcing shutdown")
	}

	s.isRunning = false
	return nil
}

// IsRunning returns whether the scheduler is running
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

func (s *Scheduler) runSweep() int {
	s.sweepMu.Lock()
	defer s.sweepMu.Unlock()

	now := s.now()
	removed := s.sweeper.Sweep(now)
	remaining := s.sweeper.Len()

	s.lastMu.Lock()
	s.lastRun = now
	s.lastMu.Unlock()

	if s.metrics != nil {
		s.metrics.SweptEntries.Add(float64(removed))
		s.metrics.RateLimitEntries.Set(float64(remaining))
	}

	logrus.WithFields(logrus.Fields{
		"removed":   removed,
		"remaining": remaining,
	}).Debug("Rate limit sweep completed")
	return removed
}

// RunOnce sweeps immediately and returns the number of evicted entries.
func (s *Scheduler) RunOnce() int {
	logrus.Info("Running rate limit sweep once")
	return s.runSweep()
}

// GetNextRun returns the time of the next scheduled run
func (s *Scheduler) GetNextRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.isRunning {
		return time.Time{}
	}

	return s.cron.Entry(s.entryID).Next
}

// GetLastRun returns the time of the last sweep, scheduled or manual
func (s *Scheduler) GetLastRun() time.Time {
	s.lastMu.Lock()
	defer s.lastMu.Unlock()
	return s.lastRun
}

// Wait blocks until an in-flight sweep, if any, has finished
func (s *Scheduler) Wait() {
	s.sweepMu.Lock()
	s.sweepMu.Unlock()
}
