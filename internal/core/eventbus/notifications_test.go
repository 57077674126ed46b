package eventbus_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/zenflow/internal/core/eventbus"
	"github.com/colonyops/zenflow/internal/core/eventbus/testbus"
	"github.com/colonyops/zenflow/internal/core/notify"
	"github.com/colonyops/zenflow/internal/core/task"
	"github.com/colonyops/zenflow/internal/core/tasksync"
)

func latestNotificationPayload(tb *testbus.Bus, t *testing.T) eventbus.NotificationPublishedPayload {
	t.Helper()
	tb.AssertPublished(t, eventbus.EventNotificationPublished)

	payloads := tb.Of(eventbus.EventNotificationPublished)
	require.NotEmpty(t, payloads)
	p, ok := payloads[len(payloads)-1].(eventbus.NotificationPublishedPayload)
	require.True(t, ok)
	return p
}

func TestNotificationRouter_SyncFailed(t *testing.T) {
	tb := testbus.New(t)
	eventbus.NewNotificationRouter(tb.EventBus).Register()

	tb.PublishSyncStatusChanged(eventbus.SyncStatusChangedPayload{
		Old: tasksync.StatusSyncing,
		New: tasksync.StatusError,
		Err: "connection refused",
	})
	p := latestNotificationPayload(tb, t)

	assert.Equal(t, notify.LevelWarning, p.Level)
	assert.Contains(t, p.Message, "connection refused")
}

func TestNotificationRouter_SyncRestored(t *testing.T) {
	tb := testbus.New(t)
	eventbus.NewNotificationRouter(tb.EventBus).Register()

	tb.PublishSyncStatusChanged(eventbus.SyncStatusChangedPayload{
		Old: tasksync.StatusError,
		New: tasksync.StatusSynced,
	})
	p := latestNotificationPayload(tb, t)

	assert.Equal(t, notify.LevelInfo, p.Level)
	assert.Equal(t, "sync restored", p.Message)
}

func TestNotificationRouter_FirstSync_doesNotPublish(t *testing.T) {
	tb := testbus.New(t)
	eventbus.NewNotificationRouter(tb.EventBus).Register()

	tb.PublishSyncStatusChanged(eventbus.SyncStatusChangedPayload{
		Old: tasksync.StatusSyncing,
		New: tasksync.StatusSynced,
	})
	tb.AssertNotPublished(t, eventbus.EventNotificationPublished, 100*time.Millisecond)
}

func TestNotificationRouter_TaskWithReminder(t *testing.T) {
	tb := testbus.New(t)
	eventbus.NewNotificationRouter(tb.EventBus).Register()

	tb.PublishTaskAdded(eventbus.TaskAddedPayload{Task: task.Task{
		ID: 1, Text: "stretch", Date: "2026-10-17", ReminderTime: "09:30",
	}})
	p := latestNotificationPayload(tb, t)

	assert.Equal(t, notify.LevelInfo, p.Level)
	assert.Contains(t, p.Message, "09:30")
}

func TestNotificationRouter_TaskWithoutReminder_doesNotPublish(t *testing.T) {
	tb := testbus.New(t)
	eventbus.NewNotificationRouter(tb.EventBus).Register()

	tb.PublishTaskAdded(eventbus.TaskAddedPayload{Task: task.Task{ID: 1, Text: "read"}})
	tb.AssertNotPublished(t, eventbus.EventNotificationPublished, 100*time.Millisecond)
}
