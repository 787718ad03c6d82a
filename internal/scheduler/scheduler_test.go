package scheduler

import (
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contact-relay-go/internal/config"
	"contact-relay-go/internal/metrics"
	"contact-relay-go/internal/ratelimit"
)

func TestSchedulerRestart(t *testing.T) {
	cfg := &config.SchedulerConfig{SweepIntervalMinutes: 60}
	sched := NewScheduler(cfg, ratelimit.New(), metrics.NewMetrics(prometheus.NewRegistry()))

	require.NoError(t, sched.Start())
	assert.True(t, sched.IsRunning())
	assert.False(t, sched.GetNextRun().IsZero())
	assert.Error(t, sched.Start())

	require.NoError(t, sched.Stop())
	assert.False(t, sched.IsRunning())
	assert.True(t, sched.GetNextRun().IsZero())

	require.NoError(t, sched.Start())
	assert.True(t, sched.IsRunning())
	assert.Len(t, sched.cron.Entries(), 1)

	require.NoError(t, sched.Stop())
}

func TestSchedulerInvalidInterval(t *testing.T) {
	sched := NewScheduler(&config.SchedulerConfig{SweepIntervalMinutes: 0}, ratelimit.New(), nil)

	assert.Error(t, sched.Start())
	assert.False(t, sched.IsRunning())
}

func TestRunOnceSweepsExpiredEntries(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	limiter := ratelimit.NewWithClock(func() time.Time { return now })
	limiter.Check("contact:minute:a", time.Minute, 5)
	limiter.Check("contact:hour:a", time.Hour, 20)

	m := metrics.NewMetrics(prometheus.NewRegistry())
	sched := NewScheduler(&config.SchedulerConfig{SweepIntervalMinutes: 10}, limiter, m)
	sched.now = func() time.Time { return now.Add(2 * time.Minute) }

	removed := sched.RunOnce()
	sched.Wait()

	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, limiter.Len())
	assert.Equal(t, float64(1), testutil.ToFloat64(m.SweptEntries))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.RateLimitEntries))
	assert.Equal(t, now.Add(2*time.Minute), sched.GetLastRun())
}

// blockingSweeper holds Sweep until release is closed.
type blockingSweeper struct {
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (b *blockingSweeper) Sweep(time.Time) int {
	b.once.Do(func() { close(b.entered) })
	<-b.release
	return 0
}

func (b *blockingSweeper) Len() int { return 0 }

func TestWaitDrainsInFlightSweep(t *testing.T) {
	sweeper := &blockingSweeper{entered: make(chan struct{}), release: make(chan struct{})}
	sched := NewScheduler(&config.SchedulerConfig{SweepIntervalMinutes: 10}, sweeper, nil)

	go sched.RunOnce()
	<-sweeper.entered

	waited := make(chan struct{})
	go func() {
		sched.Wait()
		close(waited)
	}()

	select {
	case <-waited:
		t.Fatal("Wait returned while a sweep was still running")
	case <-time.After(50 * time.Millisecond):
	}

	close(sweeper.release)

	select {
	case <-waited:
	case <-time.After(time.Second):
		t.Fatal("Wait did not return after the sweep finished")
	}
	assert.False(t, sched.GetLastRun().IsZero())
}

func TestWaitWithoutSweepReturns(t *testing.T) {
	sched := NewScheduler(&config.SchedulerConfig{SweepIntervalMinutes: 10}, ratelimit.New(), nil)

	done := make(chan struct{})
	go func() {
		sched.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Wait blocked with no sweep running")
	}
}
