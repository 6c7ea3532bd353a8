package tasks

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type mockTask struct {
	Task
	calls    *atomic.Int32
	failures int32
	done     chan struct{}
}

func newMockTask(calls *atomic.Int32, failures int32, done chan struct{}) *mockTask {
	return &mockTask{
		Task:     NewTask(TaskTypeRefreshReleases),
		calls:    calls,
		failures: failures,
		done:     done,
	}
}

func (m *mockTask) Execute(ctx context.Context) error {
	n := m.calls.Add(1)
	if n <= m.failures {
		return errors.New("temporary failure")
	}
	if m.done != nil {
		close(m.done)
	}
	return nil
}

func waitFor(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Timed out waiting for task")
	}
}

func TestTask_Retries(t *testing.T) {
	task := NewTask(TaskTypeRefreshReleases)

	if task.ID == "" {
		t.Error("Expected task ID to be set")
	}
	if task.GetDuration() != 0 {
		t.Error("Expected zero duration before start")
	}

	for i := 0; i < DefaultMaxRetries; i++ {
		if !task.CanRetry() {
			t.Fatalf("Expected retry %d to be allowed", i+1)
		}
		task.IncrementRetryCount()
	}

	if task.CanRetry() {
		t.Error("Expected retries to be exhausted")
	}
}

func TestScheduler_RunsStartupRefresh(t *testing.T) {
	var calls atomic.Int32
	done := make(chan struct{})

	scheduler := NewScheduler(func() TaskInterface {
		return newMockTask(&calls, 0, done)
	}, time.Hour, 2)

	scheduler.Start()
	defer scheduler.Stop()

	waitFor(t, done)

	if got := calls.Load(); got != 1 {
		t.Errorf("Expected 1 execution, got %d", got)
	}
}

func TestScheduler_RetriesFailedTask(t *testing.T) {
	var calls atomic.Int32
	done := make(chan struct{})

	scheduler := NewScheduler(func() TaskInterface {
		return newMockTask(&calls, 2, done)
	}, time.Hour, 1)
	scheduler.retryDelay = time.Millisecond

	scheduler.Start()
	defer scheduler.Stop()

	waitFor(t, done)

	if got := calls.Load(); got != 3 {
		t.Errorf("Expected 3 executions, got %d", got)
	}
}

func TestScheduler_EnqueueQueueFull(t *testing.T) {
	var calls atomic.Int32
	scheduler := NewScheduler(func() TaskInterface {
		return newMockTask(&calls, 0, nil)
	}, time.Hour, 1)
	defer scheduler.Stop()

	// Not started, so nothing drains the queue.
	for i := 0; i < taskQueueSize; i++ {
		if err := scheduler.EnqueueRefresh(); err != nil {
			t.Fatalf("Enqueue %d failed: %v", i, err)
		}
	}

	if err := scheduler.EnqueueRefresh(); !errors.Is(err, ErrQueueFull) {
		t.Errorf("Expected ErrQueueFull, got: %v", err)
	}
}

func TestScheduler_EnqueueAfterStop(t *testing.T) {
	var calls atomic.Int32
	scheduler := NewScheduler(func() TaskInterface {
		return newMockTask(&calls, 0, nil)
	}, time.Hour, 1)
	scheduler.Start()
	scheduler.Stop()

	if err := scheduler.EnqueueRefresh(); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got: %v", err)
	}
}
