package zen

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/zenflow/internal/core/alert"
	"github.com/colonyops/zenflow/internal/core/alert/alerttest"
	"github.com/colonyops/zenflow/internal/core/eventbus"
	"github.com/colonyops/zenflow/internal/core/eventbus/testbus"
	"github.com/colonyops/zenflow/internal/core/task"
)

func newTestService(t *testing.T) (*TaskService, *alerttest.Recorder, *testbus.Bus) {
	t.Helper()
	rec := &alerttest.Recorder{}
	bus := testbus.New(t)
	store := task.NewStore()
	return NewTaskService(store, rec, bus.EventBus, zerolog.Nop()), rec, bus
}

func TestTaskService_Add(t *testing.T) {
	svc, rec, bus := newTestService(t)

	got, ok := svc.Add(context.Background(), task.NewTask{Text: "breathe", Urgency: task.UrgencyHigh})
	require.True(t, ok)
	assert.Equal(t, "breathe", got.Text)

	assert.Equal(t, []alert.Cue{alert.CueAdded}, rec.Cues())
	bus.AssertPublished(t, eventbus.EventTaskAdded)

	payloads := bus.Of(eventbus.EventTaskAdded)
	require.Len(t, payloads, 1)
	assert.Equal(t, got, payloads[0].(eventbus.TaskAddedPayload).Task)
}

func TestTaskService_AddBlank(t *testing.T) {
	svc, rec, bus := newTestService(t)

	_, ok := svc.Add(context.Background(), task.NewTask{Text: "   "})
	assert.False(t, ok)
	assert.Empty(t, rec.Calls())
	bus.AssertNotPublished(t, eventbus.EventTaskAdded, 50*time.Millisecond)
}

func TestTaskService_AddIgnoresSinkFailure(t *testing.T) {
	rec := &alerttest.Recorder{Err: alert.ErrUnavailable}
	svc := NewTaskService(task.NewStore(), rec, nil, zerolog.Nop())

	_, ok := svc.Add(context.Background(), task.NewTask{Text: "still added"})
	assert.True(t, ok)
	assert.Equal(t, 1, rec.Count("PlayCue"))
}

func TestTaskService_Toggle(t *testing.T) {
	ctx := context.Background()
	svc, rec, bus := newTestService(t)

	added, ok := svc.Add(ctx, task.NewTask{Text: "walk"})
	require.True(t, ok)
	rec.Reset()

	done, err := svc.Toggle(ctx, added.ID)
	require.NoError(t, err)
	assert.True(t, done.Completed)
	assert.Equal(t, []alert.Cue{alert.CueSuccess}, rec.Cues())
	bus.AssertPublished(t, eventbus.EventTaskCompleted)

	rec.Reset()
	bus.Reset()

	reopened, err := svc.Toggle(ctx, added.ID)
	require.NoError(t, err)
	assert.False(t, reopened.Completed)
	assert.Empty(t, rec.Cues(), "reopening is silent")
	bus.AssertNotPublished(t, eventbus.EventTaskCompleted, 50*time.Millisecond)
}

func TestTaskService_ToggleMissing(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Toggle(context.Background(), 42)
	assert.ErrorIs(t, err, task.ErrNotFound)
}

func TestTaskService_Remove(t *testing.T) {
	ctx := context.Background()
	svc, _, bus := newTestService(t)

	added, _ := svc.Add(ctx, task.NewTask{Text: "tea"})

	require.NoError(t, svc.Remove(ctx, added.ID))
	bus.AssertPublished(t, eventbus.EventTaskRemoved)

	assert.ErrorIs(t, svc.Remove(ctx, added.ID), task.ErrNotFound)
}

func TestTaskService_List(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	svc.Add(ctx, task.NewTask{Text: "buy groceries", Date: "2026-10-17"})
	svc.Add(ctx, task.NewTask{Text: "read", Date: "2026-10-17", Urgency: task.UrgencyHigh})
	svc.Add(ctx, task.NewTask{Text: "groceries again", Date: "2026-10-18"})

	day := task.Date("2026-10-17")
	got, err := svc.List(task.Filter{Date: &day})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "read", got[0].Text)

	got, err = svc.List(task.Filter{Match: "*GROCERIES*"})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	_, err = svc.List(task.Filter{Match: "[unclosed"})
	assert.Error(t, err)
}

func TestTaskService_Calendar(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	svc.Add(ctx, task.NewTask{Text: "a", Date: "2026-10-17"})
	b, _ := svc.Add(ctx, task.NewTask{Text: "b", Date: "2026-10-17"})
	_, err := svc.Toggle(ctx, b.ID)
	require.NoError(t, err)

	counts := svc.Calendar(2026, time.October)
	require.Len(t, counts, 31)
	assert.Equal(t, task.DayCount{Day: 17, Total: 2, Pending: 1}, counts[16])
}
