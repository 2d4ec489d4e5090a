package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func noopLogger() zerolog.Logger {
	return zerolog.Nop()
}

func TestRunInvokesTickImmediately(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ticked := make(chan struct{})
	sched := New(Options{Interval: func() time.Duration { return time.Hour }}, noopLogger())

	go func() {
		_ = sched.Run(ctx, func(ctx context.Context, at time.Time) error {
			select {
			case ticked <- struct{}{}:
			default:
			}
			return nil
		})
	}()

	select {
	case <-ticked:
	case <-time.After(time.Second):
		t.Fatal("first tick did not run promptly")
	}
}

func TestStopDuringSleepIsPrompt(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	firstTick := make(chan struct{})
	var once atomic.Bool
	sched := New(Options{Interval: func() time.Duration { return time.Hour }}, noopLogger())

	done := make(chan error, 1)
	go func() {
		done <- sched.Run(ctx, func(ctx context.Context, at time.Time) error {
			if once.CompareAndSwap(false, true) {
				close(firstTick)
			}
			return nil
		})
	}()

	<-firstTick
	// scheduler is now sleeping for an hour; stop must be honoured fast
	start := time.Now()
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop within a second")
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("stop took %s, want well under a second", elapsed)
	}
}

func TestTickErrorDoesNotStopLoop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var ticks atomic.Int32
	sched := New(Options{Interval: func() time.Duration { return 10 * time.Millisecond }}, noopLogger())

	go func() {
		_ = sched.Run(ctx, func(ctx context.Context, at time.Time) error {
			ticks.Add(1)
			return errors.New("cycle failed")
		})
	}()

	deadline := time.After(2 * time.Second)
	for ticks.Load() < 3 {
		select {
		case <-deadline:
			t.Fatalf("loop stalled after a failing tick: %d ticks", ticks.Load())
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestStartupDelayCancellable(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	sched := New(Options{
		Interval:     func() time.Duration { return time.Hour },
		StartupDelay: time.Hour,
	}, noopLogger())

	done := make(chan error, 1)
	go func() {
		done <- sched.Run(ctx, func(ctx context.Context, at time.Time) error {
			t.Error("tick must not run during startup delay")
			return nil
		})
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("startup delay ignored cancellation")
	}
}
