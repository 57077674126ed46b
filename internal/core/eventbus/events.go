// Package eventbus provides a typed publish/subscribe event bus for
// cross-component communication within zen.
package eventbus

import (
	"time"

	"github.com/colonyops/zenflow/internal/core/notify"
	"github.com/colonyops/zenflow/internal/core/task"
	"github.com/colonyops/zenflow/internal/core/tasksync"
)

// Keep list sorted A-Z.
const (
	EventNotificationPublished Event = "notification.published"
	EventReminderFired         Event = "reminder.fired"
	EventSyncStatusChanged     Event = "sync.status-changed"
	EventTaskAdded             Event = "task.added"
	EventTaskCompleted         Event = "task.completed"
	EventTaskRemoved           Event = "task.removed"
)

// Events lists every event type.
var Events = []Event{
	EventNotificationPublished,
	EventReminderFired,
	EventSyncStatusChanged,
	EventTaskAdded,
	EventTaskCompleted,
	EventTaskRemoved,
}

// NotificationPublishedPayload is emitted when a component wants a banner
// shown to the user.
type NotificationPublishedPayload struct {
	Level   notify.Level
	Message string
}

// ReminderFiredPayload is emitted once per task when its reminder fires.
type ReminderFiredPayload struct {
	Task    task.Task
	FiredAt time.Time
}

// SyncStatusChangedPayload is emitted on every sync status transition.
type SyncStatusChangedPayload struct {
	Old tasksync.Status
	New tasksync.Status
	Err string
}

// TaskAddedPayload is emitted when a user adds a task.
type TaskAddedPayload struct {
	Task task.Task
}

// TaskCompletedPayload is emitted when a task transitions to completed.
type TaskCompletedPayload struct {
	Task task.Task
}

// TaskRemovedPayload is emitted when a user removes a task.
type TaskRemovedPayload struct {
	ID int64
}

func (bus *EventBus) PublishNotificationPublished(p NotificationPublishedPayload) {
	bus.send(EventNotificationPublished, p)
}

func (bus *EventBus) SubscribeNotificationPublished(fn func(NotificationPublishedPayload)) {
	subscribe(bus, EventNotificationPublished, fn)
}

func (bus *EventBus) PublishReminderFired(p ReminderFiredPayload) {
	bus.send(EventReminderFired, p)
}

func (bus *EventBus) SubscribeReminderFired(fn func(ReminderFiredPayload)) {
	subscribe(bus, EventReminderFired, fn)
}

func (bus *EventBus) PublishSyncStatusChanged(p SyncStatusChangedPayload) {
	bus.send(EventSyncStatusChanged, p)
}

func (bus *EventBus) SubscribeSyncStatusChanged(fn func(SyncStatusChangedPayload)) {
	subscribe(bus, EventSyncStatusChanged, fn)
}

func (bus *EventBus) PublishTaskAdded(p TaskAddedPayload) {
	bus.send(EventTaskAdded, p)
}

func (bus *EventBus) SubscribeTaskAdded(fn func(TaskAddedPayload)) {
	subscribe(bus, EventTaskAdded, fn)
}

func (bus *EventBus) PublishTaskCompleted(p TaskCompletedPayload) {
	bus.send(EventTaskCompleted, p)
}

func (bus *EventBus) SubscribeTaskCompleted(fn func(TaskCompletedPayload)) {
	subscribe(bus, EventTaskCompleted, fn)
}

func (bus *EventBus) PublishTaskRemoved(p TaskRemovedPayload) {
	bus.send(EventTaskRemoved, p)
}

func (bus *EventBus) SubscribeTaskRemoved(fn func(TaskRemovedPayload)) {
	subscribe(bus, EventTaskRemoved, fn)
}
