// Package task defines the task domain model, the in-memory task store and
// the presentation ordering used by every view.
package task

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrNotFound is returned when a task does not exist.
var ErrNotFound = errors.New("task not found")

const (
	// DateLayout is the wire and display format of Date.
	DateLayout = "2006-01-02"
	// ClockLayout is the wire and display format of Clock.
	ClockLayout = "15:04"
)

// Urgency classifies how pressing a task is. It only affects ordering and
// alert styling.
type Urgency string

const (
	UrgencyLow    Urgency = "low"
	UrgencyMedium Urgency = "medium"
	UrgencyHigh   Urgency = "high"
)

// IsValid reports whether u is one of the known urgencies.
func (u Urgency) IsValid() bool {
	switch u {
	case UrgencyLow, UrgencyMedium, UrgencyHigh:
		return true
	}
	return false
}

// Rank returns the sort rank of u. Lower ranks sort first. Unknown values
// rank with low.
func (u Urgency) Rank() int {
	switch u {
	case UrgencyHigh:
		return 0
	case UrgencyMedium:
		return 1
	default:
		return 2
	}
}

// Normalize returns u, or UrgencyLow when u is unknown.
func (u Urgency) Normalize() Urgency {
	if u.IsValid() {
		return u
	}
	return UrgencyLow
}

// ParseUrgency parses a user-supplied urgency. An empty string yields low.
func ParseUrgency(s string) (Urgency, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return UrgencyLow, nil
	}
	u := Urgency(s)
	if !u.IsValid() {
		return "", fmt.Errorf("invalid urgency %q: must be one of low, medium, high", s)
	}
	return u, nil
}

// Icon is a symbolic tag attached to a task.
type Icon string

const (
	IconWind   Icon = "wind"
	IconCoffee Icon = "coffee"
	IconBook   Icon = "book"
	IconStar   Icon = "star"
	IconHeart  Icon = "heart"
	IconCloud  Icon = "cloud"
	IconSun    Icon = "sun"
	IconMoon   Icon = "moon"
	IconChat   Icon = "chat"
)

// Icons lists every known icon in picker order.
var Icons = []Icon{IconWind, IconCoffee, IconBook, IconStar, IconHeart, IconCloud, IconSun, IconMoon, IconChat}

// IsValid reports whether i is a known icon.
func (i Icon) IsValid() bool {
	for _, known := range Icons {
		if i == known {
			return true
		}
	}
	return false
}

// Normalize returns i, or IconWind when i is unknown.
func (i Icon) Normalize() Icon {
	if i.IsValid() {
		return i
	}
	return IconWind
}

// Date is a calendar day in YYYY-MM-DD form.
type Date string

// DateOf returns the local calendar day of t.
func DateOf(t time.Time) Date {
	return Date(t.Format(DateLayout))
}

// ParseDate validates s as a YYYY-MM-DD day.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if _, err := time.ParseInLocation(DateLayout, s, time.Local); err != nil {
		return "", fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return Date(s), nil
}

// Time returns the start of the day in the local time zone.
func (d Date) Time() (time.Time, error) {
	return time.ParseInLocation(DateLayout, string(d), time.Local)
}

// Clock is a time of day truncated to the minute, in HH:MM form. The zero
// value means "no reminder".
type Clock string

// ClockOf returns the local time of day of t truncated to the minute.
func ClockOf(t time.Time) Clock {
	return Clock(t.Format(ClockLayout))
}

// ParseClock validates s as an HH:MM time of day and returns it zero padded,
// so "9:05" becomes "09:05". An empty string yields the zero Clock.
func ParseClock(s string) (Clock, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil
	}
	parsed, err := time.Parse(ClockLayout, s)
	if err != nil {
		return "", fmt.Errorf("invalid time %q: expected HH:MM", s)
	}
	return ClockOf(parsed), nil
}

// IsZero reports whether no reminder is set.
func (c Clock) IsZero() bool { return c == "" }

// MarshalJSON encodes the zero Clock as null.
func (c Clock) MarshalJSON() ([]byte, error) {
	if c.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(string(c))
}

// UnmarshalJSON accepts null, "" or an HH:MM string.
func (c *Clock) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*c = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*c = Clock(s)
	return nil
}

// Task is a single time-boxed activity.
type Task struct {
	ID           int64   `json:"id"`
	Text         string  `json:"text"`
	Urgency      Urgency `json:"urgency"`
	Icon         Icon    `json:"icon"`
	Date         Date    `json:"date"`
	ReminderTime Clock   `json:"reminderTime"`
	Completed    bool    `json:"completed"`
	Notified     bool    `json:"notified"`
}

// HasReminder reports whether a reminder time is set.
func (t Task) HasReminder() bool {
	return !t.ReminderTime.IsZero()
}

// ReminderDue reports whether the reminder of t should fire at the given day
// and minute.
func (t Task) ReminderDue(day Date, minute Clock) bool {
	return t.HasReminder() &&
		!t.Notified &&
		!t.Completed &&
		t.Date == day &&
		t.ReminderTime == minute
}

// NewTask holds the user-supplied fields for Store.Add.
type NewTask struct {
	Text         string
	Urgency      Urgency
	Icon         Icon
	Date         Date  // empty means the creation day
	ReminderTime Clock // empty means no reminder
}
