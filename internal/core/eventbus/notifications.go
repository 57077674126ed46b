package eventbus

import (
	"fmt"

	"github.com/colonyops/zenflow/internal/core/notify"
	"github.com/colonyops/zenflow/internal/core/tasksync"
)

// NotificationRouter maps domain events to user-facing notifications.
type NotificationRouter struct {
	bus *EventBus
}

// NewNotificationRouter constructs a router for event-to-notification mappings.
func NewNotificationRouter(bus *EventBus) *NotificationRouter {
	return &NotificationRouter{bus: bus}
}

// Register subscribes all supported event mappings.
func (r *NotificationRouter) Register() {
	if r == nil || r.bus == nil {
		return
	}

	r.bus.SubscribeSyncStatusChanged(func(p SyncStatusChangedPayload) {
		switch {
		case p.New == tasksync.StatusError && p.Old != tasksync.StatusError:
			r.notifyf(notify.LevelWarning, "sync failed, working from local cache: %s", p.Err)
		case p.New == tasksync.StatusSynced && p.Old == tasksync.StatusError:
			r.notifyf(notify.LevelInfo, "sync restored")
		}
	})

	r.bus.SubscribeTaskAdded(func(p TaskAddedPayload) {
		if p.Task.HasReminder() {
			r.notifyf(notify.LevelInfo, "reminder set for %s at %s", p.Task.Date, p.Task.ReminderTime)
		}
	})
}

func (r *NotificationRouter) notifyf(level notify.Level, format string, args ...any) {
	r.bus.PublishNotificationPublished(NotificationPublishedPayload{
		Level:   level,
		Message: fmt.Sprintf(format, args...),
	})
}
