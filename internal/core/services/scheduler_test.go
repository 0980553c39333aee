package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notera-io/notera-cli/internal/core/domain"
	"github.com/notera-io/notera-cli/internal/core/ports/driving"
)

// fakeRunner counts Sync calls and returns a scripted error.
type fakeRunner struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (f *fakeRunner) Sync(_ context.Context, _ domain.SyncMode) (*driving.SyncReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &driving.SyncReport{Total: 3}, nil
}

func (f *fakeRunner) Status() driving.SyncStatus { return driving.SyncStatus{} }

func (f *fakeRunner) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestSchedulerRunsImmediatelyOnStart(t *testing.T) {
	runner := &fakeRunner{}
	sched := NewScheduler(SchedulerConfig{
		Interval: time.Hour,
		Debounce: time.Millisecond,
	}, runner)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sched.Start(ctx) }()

	waitFor(t, func() bool { return runner.callCount() == 1 })

	status := sched.Status()
	assert.True(t, status.Running)
	assert.Equal(t, 3, status.NotesIndexed)
	assert.Empty(t, status.LastError)

	cancel()
	err := <-done
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, sched.Status().Running)
}

func TestSchedulerKickTriggersPass(t *testing.T) {
	runner := &fakeRunner{}
	sched := NewScheduler(SchedulerConfig{
		Interval: time.Hour,
		Debounce: 10 * time.Millisecond,
	}, runner)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = sched.Start(ctx) }()

	waitFor(t, func() bool { return runner.callCount() == 1 })

	// A burst of kicks collapses into one extra pass.
	sched.Kick()
	sched.Kick()
	sched.Kick()

	waitFor(t, func() bool { return runner.callCount() == 2 })

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 2, runner.callCount())
}

func TestSchedulerIntervalTriggersPass(t *testing.T) {
	runner := &fakeRunner{}
	sched := NewScheduler(SchedulerConfig{
		Interval: 20 * time.Millisecond,
		Debounce: time.Millisecond,
	}, runner)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = sched.Start(ctx) }()

	waitFor(t, func() bool { return runner.callCount() >= 3 })
}

func TestSchedulerCountsConsecutiveFailures(t *testing.T) {
	runner := &fakeRunner{err: errors.New("index offline")}
	sched := NewScheduler(SchedulerConfig{
		Interval: 20 * time.Millisecond,
		Debounce: time.Millisecond,
	}, runner)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = sched.Start(ctx) }()

	waitFor(t, func() bool { return sched.Status().ConsecutiveFailures >= 2 })
	assert.Contains(t, sched.Status().LastError, "index offline")

	// Recovery clears the failure streak.
	runner.mu.Lock()
	runner.err = nil
	runner.mu.Unlock()

	waitFor(t, func() bool { return sched.Status().ConsecutiveFailures == 0 })
	assert.Empty(t, sched.Status().LastError)
	assert.False(t, sched.Status().LastSuccess.IsZero())
}

func TestSchedulerSkipsWhenSyncBusy(t *testing.T) {
	runner := &fakeRunner{err: domain.ErrSyncInProgress}
	sched := NewScheduler(SchedulerConfig{
		Interval: time.Hour,
		Debounce: time.Millisecond,
	}, runner)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = sched.Start(ctx) }()

	waitFor(t, func() bool { return runner.callCount() == 1 })
	waitFor(t, func() bool { return !sched.Status().LastRun.IsZero() })

	status := sched.Status()
	assert.Zero(t, status.ConsecutiveFailures, "busy index is not a failure")
	assert.Empty(t, status.LastError)
}

func TestSchedulerDefaultsApplied(t *testing.T) {
	sched := NewScheduler(SchedulerConfig{}, &fakeRunner{})
	require.Equal(t, DefaultSchedulerConfig().Interval, sched.config.Interval)
	require.Equal(t, DefaultSchedulerConfig().Debounce, sched.config.Debounce)
}
