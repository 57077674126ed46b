package zen

import (
	"fmt"
	"strings"

	"github.com/colonyops/zenflow/internal/core/task"
)

// AddRequest is the user-supplied form of a new task, as received from the
// CLI or the HTTP API.
type AddRequest struct {
	Text         string `json:"text"`
	Urgency      string `json:"urgency"`
	Icon         string `json:"icon"`
	Date         string `json:"date"`
	ReminderTime string `json:"reminderTime"`
}

// Parse validates the request. Empty urgency, icon and date select the
// defaults; an empty reminder time means no reminder. Blank text is not an
// error here: TaskService.Add rejects it.
func (r AddRequest) Parse() (task.NewTask, error) {
	urgency, err := task.ParseUrgency(r.Urgency)
	if err != nil {
		return task.NewTask{}, err
	}

	icon := task.Icon(strings.ToLower(strings.TrimSpace(r.Icon)))
	if icon != "" && !icon.IsValid() {
		return task.NewTask{}, fmt.Errorf("invalid icon %q: must be one of %s", r.Icon, iconNames())
	}

	var date task.Date
	if strings.TrimSpace(r.Date) != "" {
		if date, err = task.ParseDate(r.Date); err != nil {
			return task.NewTask{}, err
		}
	}

	reminder, err := task.ParseClock(r.ReminderTime)
	if err != nil {
		return task.NewTask{}, err
	}

	return task.NewTask{
		Text:         r.Text,
		Urgency:      urgency,
		Icon:         icon,
		Date:         date,
		ReminderTime: reminder,
	}, nil
}

func iconNames() string {
	names := make([]string, len(task.Icons))
	for i, icon := range task.Icons {
		names[i] = string(icon)
	}
	return strings.Join(names, ", ")
}
