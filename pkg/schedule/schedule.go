// Package schedule runs a function once immediately and then on a fixed
// interval until stopped.
package schedule

import (
	"context"
	"runtime/debug"
	"time"

	"github.com/rs/zerolog/log"
)

// Func is invoked on every run with the wall clock reading of that run.
type Func func(ctx context.Context, now time.Time)

// Handle controls a running schedule.
type Handle struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Stop cancels the schedule and blocks until the current run, if any, has
// returned. Stop is safe to call more than once.
func (h *Handle) Stop() {
	h.cancel()
	<-h.done
}

// Done is closed once the schedule has exited.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

type options struct {
	now       func() time.Time
	name      string
	immediate bool
}

// Option configures Every.
type Option func(*options)

// WithClock overrides the clock passed to fn.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithName sets the name used in log lines.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// WithoutImmediate skips the initial run; the first run happens after one
// interval.
func WithoutImmediate() Option {
	return func(o *options) { o.immediate = false }
}

// Every starts fn in a background goroutine. fn runs once immediately and
// then every interval until ctx is cancelled or Stop is called. Runs never
// overlap. A panic in fn is logged and does not stop the schedule.
func Every(ctx context.Context, interval time.Duration, fn Func, opts ...Option) *Handle {
	o := options{now: time.Now, name: "schedule", immediate: true}
	for _, opt := range opts {
		opt(&o)
	}

	ctx, cancel := context.WithCancel(ctx)
	h := &Handle{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(h.done)

		if o.immediate {
			run(ctx, o, fn)
		}

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				run(ctx, o, fn)
			}
		}
	}()

	return h
}

func run(ctx context.Context, o options, fn Func) {
	if ctx.Err() != nil {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Str("schedule", o.name).
				Interface("panic", r).
				Str("stack", string(debug.Stack())).
				Msg("scheduled run panicked")
		}
	}()

	fn(ctx, o.now())
}
