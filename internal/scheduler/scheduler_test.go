package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestNew_InvalidTimezone(t *testing.T) {
	_, err := New("sync", "0 3 * * *", "Invalid/Zone", func(context.Context) error { return nil }, quietLogger())
	if err == nil {
		t.Fatal("expected error for invalid timezone")
	}
}

func TestNew_InvalidSpec(t *testing.T) {
	for _, spec := range []string{"", "every day", "61 * * * *", "* * * *"} {
		if _, err := New("sync", spec, "UTC", func(context.Context) error { return nil }, quietLogger()); err == nil {
			t.Errorf("expected error for spec %q", spec)
		}
	}
}

func TestNew_Location(t *testing.T) {
	s, err := New("sync", "30 4 * * *", "UTC", func(context.Context) error { return nil }, quietLogger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if s.location != time.UTC {
		t.Errorf("location = %v", s.location)
	}
}

func TestRun_ExecutesJobAndStops(t *testing.T) {
	var runs atomic.Int32
	s, err := New("sync", "@every 1s", "UTC", func(context.Context) error {
		runs.Add(1)
		return errors.New("failures are logged, not fatal")
	}, quietLogger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	deadline := time.Now().Add(5 * time.Second)
	for runs.Load() < 2 && time.Now().Before(deadline) {
		time.Sleep(50 * time.Millisecond)
	}
	if runs.Load() < 2 {
		t.Fatalf("job ran %d times, want at least 2", runs.Load())
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRun_JobSeesCancellation(t *testing.T) {
	started := make(chan struct{})
	finished := make(chan struct{})
	var once sync.Once
	s, _ := New("sync", "@every 1s", "UTC", func(ctx context.Context) error {
		first := false
		once.Do(func() { first = true })
		if !first {
			return nil
		}
		close(started)
		<-ctx.Done()
		close(finished)
		return ctx.Err()
	}, quietLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	select {
	case <-started:
	case <-time.After(3 * time.Second):
		t.Fatal("job never started")
	}
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not wait for the job")
	}
	select {
	case <-finished:
	default:
		t.Error("Run returned before the running job finished")
	}
}
