package zen

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/colonyops/zenflow/internal/core/alert"
	"github.com/colonyops/zenflow/internal/core/eventbus"
	"github.com/colonyops/zenflow/internal/core/logging"
	"github.com/colonyops/zenflow/internal/core/task"
)

// TaskService performs user actions on the task store and fires the cues
// and events that go with them.
type TaskService struct {
	store *task.Store
	sink  alert.Sink
	bus   *eventbus.EventBus
	log   zerolog.Logger
}

// NewTaskService creates a new TaskService.
func NewTaskService(store *task.Store, sink alert.Sink, bus *eventbus.EventBus, log zerolog.Logger) *TaskService {
	if sink == nil {
		sink = alert.Discard
	}
	return &TaskService{store: store, sink: sink, bus: bus, log: log}
}

// Add creates a task and plays the added cue. It returns false when the text
// is blank.
func (s *TaskService) Add(ctx context.Context, in task.NewTask) (task.Task, bool) {
	t, ok := s.store.Add(in)
	if !ok {
		return task.Task{}, false
	}

	ctx = logging.WithTaskID(ctx, t.ID)
	s.log.Info().Ctx(ctx).Str("date", string(t.Date)).Msg("task added")

	_ = s.sink.PlayCue(ctx, alert.CueAdded)
	if s.bus != nil {
		s.bus.PublishTaskAdded(eventbus.TaskAddedPayload{Task: t})
	}
	return t, true
}

// Toggle flips the completion of a task. Completing a task plays the success
// cue; reopening one is silent.
func (s *TaskService) Toggle(ctx context.Context, id int64) (task.Task, error) {
	t, ok := s.store.ToggleComplete(id)
	if !ok {
		return task.Task{}, fmt.Errorf("toggle task %d: %w", id, task.ErrNotFound)
	}

	ctx = logging.WithTaskID(ctx, id)
	s.log.Info().Ctx(ctx).Bool("completed", t.Completed).Msg("task toggled")

	if t.Completed {
		_ = s.sink.PlayCue(ctx, alert.CueSuccess)
		if s.bus != nil {
			s.bus.PublishTaskCompleted(eventbus.TaskCompletedPayload{Task: t})
		}
	}
	return t, nil
}

// Remove deletes a task.
func (s *TaskService) Remove(ctx context.Context, id int64) error {
	if !s.store.Remove(id) {
		return fmt.Errorf("remove task %d: %w", id, task.ErrNotFound)
	}

	s.log.Info().Ctx(logging.WithTaskID(ctx, id)).Msg("task removed")
	if s.bus != nil {
		s.bus.PublishTaskRemoved(eventbus.TaskRemovedPayload{ID: id})
	}
	return nil
}

// List returns the tasks kept by f in display order.
func (s *TaskService) List(f task.Filter) ([]task.Task, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return f.Apply(s.store.Snapshot()), nil
}

// Calendar returns per-day counts for a month.
func (s *TaskService) Calendar(year int, month time.Month) []task.DayCount {
	return task.MonthCounts(s.store.Snapshot(), year, month)
}
