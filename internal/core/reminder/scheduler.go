// Package reminder fires task reminders at their wall-clock minute.
package reminder

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/colonyops/zenflow/internal/core/alert"
	"github.com/colonyops/zenflow/internal/core/eventbus"
	"github.com/colonyops/zenflow/internal/core/logging"
	"github.com/colonyops/zenflow/internal/core/task"
	"github.com/colonyops/zenflow/pkg/schedule"
)

// Title is the desktop notification title of every reminder.
const Title = "ZenFlow reminder"

// Scheduler checks the store on a fixed interval and fires every reminder
// whose date and minute match the clock. A reminder fires at most once:
// tasks are marked notified before the sink is called. Minutes that pass
// while no tick runs are not caught up.
type Scheduler struct {
	store    *task.Store
	sink     alert.Sink
	bus      *eventbus.EventBus
	interval time.Duration
	now      func() time.Time
	log      zerolog.Logger
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithClock overrides the wall clock.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

// WithBus publishes reminder.fired for every fired task.
func WithBus(bus *eventbus.EventBus) Option {
	return func(s *Scheduler) { s.bus = bus }
}

// WithLogger sets the scheduler logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Scheduler) { s.log = l }
}

// New creates a scheduler that ticks every interval once started.
func New(store *task.Store, sink alert.Sink, interval time.Duration, opts ...Option) *Scheduler {
	s := &Scheduler{
		store:    store,
		sink:     sink,
		interval: interval,
		now:      time.Now,
		log:      logging.Component("reminders"),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.sink == nil {
		s.sink = alert.Discard
	}
	return s
}

// Start ticks once immediately and then every interval until ctx is
// cancelled or the handle is stopped.
func (s *Scheduler) Start(ctx context.Context) *schedule.Handle {
	s.log.Info().Dur("interval", s.interval).Msg("reminder scheduler started")

	return schedule.Every(ctx, s.interval, func(ctx context.Context, now time.Time) {
		s.Tick(ctx, now)
	}, schedule.WithClock(s.now), schedule.WithName("reminders"))
}

// Tick fires every reminder due at now and returns the tasks that fired.
func (s *Scheduler) Tick(ctx context.Context, now time.Time) []task.Task {
	day, minute := task.DateOf(now), task.ClockOf(now)

	var due []int64
	for _, t := range s.store.Snapshot() {
		if t.ReminderDue(day, minute) {
			due = append(due, t.ID)
		}
	}
	if len(due) == 0 {
		return nil
	}

	fired := s.store.MarkNotified(due...)
	for _, t := range fired {
		s.fire(logging.WithTaskID(ctx, t.ID), t, now)
	}
	return fired
}

func (s *Scheduler) fire(ctx context.Context, t task.Task, now time.Time) {
	s.log.Info().Ctx(ctx).Str("text", t.Text).Msg("reminder fired")

	s.safely(ctx, "notify", func() error { return s.sink.Notify(ctx, Title, t.Text) })
	s.safely(ctx, "cue", func() error { return s.sink.PlayCue(ctx, alert.CueReminder) })
	s.safely(ctx, "banner", func() error { return s.sink.ShowBanner(ctx, t.Text) })

	if s.bus != nil {
		s.bus.PublishReminderFired(eventbus.ReminderFiredPayload{Task: t, FiredAt: now})
	}
}

// safely runs one sink call. Errors and panics are logged and dropped.
func (s *Scheduler) safely(ctx context.Context, signal string, fn func() error) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error().Ctx(ctx).Str("signal", signal).Str("panic", fmt.Sprint(r)).Msg("alert sink panicked")
		}
	}()

	if err := fn(); err != nil {
		s.log.Debug().Ctx(ctx).Err(err).Str("signal", signal).Msg("alert not delivered")
	}
}
