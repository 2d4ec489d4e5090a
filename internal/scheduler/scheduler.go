package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// TickFunc is invoked on every cycle.
type TickFunc func(ctx context.Context, at time.Time) error

// Options tune scheduler behaviour. Interval is consulted before every
// sleep, so a settings change takes effect at the next cycle boundary.
type Options struct {
	Interval     func() time.Duration
	StartupDelay time.Duration
}

// Scheduler drives periodic execution of evaluation cycles.
type Scheduler struct {
	opts   Options
	logger zerolog.Logger
}

// New constructs a Scheduler instance.
func New(opts Options, logger zerolog.Logger) *Scheduler {
	if opts.Interval == nil {
		panic("scheduler interval provider must be set")
	}
	return &Scheduler{opts: opts, logger: logger.With().Str("component", "scheduler").Logger()}
}

// Run blocks, invoking the tick function each interval until ctx is
// cancelled. Cancellation is observed immediately, even mid-sleep; the
// first cycle runs right after the optional startup delay.
func (s *Scheduler) Run(ctx context.Context, tick TickFunc) error {
	if s.opts.StartupDelay > 0 {
		timer := time.NewTimer(s.opts.StartupDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	for {
		at := time.Now().UTC()
		s.logger.Debug().Time("cycle_start", at).Msg("executing scheduled cycle")

		if err := tick(ctx, at); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.logger.Error().Err(err).Time("cycle_start", at).Msg("cycle execution failed")
		}

		interval := s.opts.Interval()
		if interval <= 0 {
			interval = time.Minute
		}

		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}
