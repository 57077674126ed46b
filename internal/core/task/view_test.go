package task

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(tasks []Task) []int64 {
	out := make([]int64, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}

func TestPresent(t *testing.T) {
	tasks := []Task{
		{ID: 1, Urgency: UrgencyLow, Date: "2026-01-01"},
		{ID: 2, Urgency: UrgencyHigh, Date: "2026-01-01", Completed: true},
		{ID: 3, Urgency: UrgencyMedium, Date: "2026-01-02"},
		{ID: 4, Urgency: UrgencyHigh, Date: "2026-01-01"},
		{ID: 5, Urgency: UrgencyHigh, Date: "2026-01-02"},
		{ID: 6, Urgency: "unknown", Date: "2026-01-01"},
		{ID: 7, Urgency: UrgencyLow, Date: "2026-01-02", Completed: true},
	}

	tests := []struct {
		name string
		date *Date
		want []int64
	}{
		{
			name: "all dates",
			want: []int64{5, 4, 3, 6, 1, 2, 7},
		},
		{
			name: "single date",
			date: func() *Date { d := Date("2026-01-01"); return &d }(),
			want: []int64{4, 6, 1, 2},
		},
		{
			name: "date with no tasks",
			date: func() *Date { d := Date("2030-12-31"); return &d }(),
			want: []int64{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Present(tasks, tt.date)
			assert.Equal(t, tt.want, ids(got))
		})
	}

	t.Run("does not reorder input", func(t *testing.T) {
		before := append([]Task(nil), tasks...)
		_ = Present(tasks, nil)
		assert.Equal(t, before, tasks)
	})

	t.Run("repeatable", func(t *testing.T) {
		assert.Equal(t, Present(tasks, nil), Present(tasks, nil))
	})
}

func TestFilter_Apply(t *testing.T) {
	tasks := []Task{
		{ID: 1, Text: "Buy groceries", Urgency: UrgencyLow, Date: "2026-01-01"},
		{ID: 2, Text: "Call the bank", Urgency: UrgencyHigh, Date: "2026-01-01"},
		{ID: 3, Text: "groceries list", Urgency: UrgencyMedium, Date: "2026-01-02", Completed: true},
	}

	t.Run("glob match is case insensitive", func(t *testing.T) {
		got := Filter{Match: "*GROCERIES*"}.Apply(tasks)
		assert.Equal(t, []int64{1, 3}, ids(got))
	})

	t.Run("pending only", func(t *testing.T) {
		got := Filter{Pending: true}.Apply(tasks)
		assert.Equal(t, []int64{2, 1}, ids(got))
	})

	t.Run("date and match", func(t *testing.T) {
		d := Date("2026-01-01")
		got := Filter{Date: &d, Match: "*groceries*"}.Apply(tasks)
		assert.Equal(t, []int64{1}, ids(got))
	})

	t.Run("invalid pattern", func(t *testing.T) {
		assert.Error(t, Filter{Match: "[abc"}.Validate())
		assert.NoError(t, Filter{Match: "*abc*"}.Validate())
	})
}

func TestMonthCounts(t *testing.T) {
	tasks := []Task{
		{ID: 1, Date: "2026-02-01"},
		{ID: 2, Date: "2026-02-01", Completed: true},
		{ID: 3, Date: "2026-02-28"},
		{ID: 4, Date: "2026-03-01"},
		{ID: 5, Date: "garbage"},
	}

	counts := MonthCounts(tasks, 2026, time.February)
	require.Len(t, counts, 28)
	assert.Equal(t, DayCount{Day: 1, Total: 2, Pending: 1}, counts[0])
	assert.Equal(t, DayCount{Day: 28, Total: 1, Pending: 1}, counts[27])
	assert.Equal(t, DayCount{Day: 15}, counts[14])
}

func TestUrgency(t *testing.T) {
	assert.Equal(t, 0, UrgencyHigh.Rank())
	assert.Equal(t, 1, UrgencyMedium.Rank())
	assert.Equal(t, 2, UrgencyLow.Rank())
	assert.Equal(t, 2, Urgency("").Rank())

	u, err := ParseUrgency(" HIGH ")
	require.NoError(t, err)
	assert.Equal(t, UrgencyHigh, u)

	u, err = ParseUrgency("")
	require.NoError(t, err)
	assert.Equal(t, UrgencyLow, u)

	_, err = ParseUrgency("critical")
	assert.Error(t, err)
}

func TestParseDateAndClock(t *testing.T) {
	d, err := ParseDate("2026-10-17")
	require.NoError(t, err)
	assert.Equal(t, Date("2026-10-17"), d)

	_, err = ParseDate("17/10/2026")
	assert.Error(t, err)

	c, err := ParseClock("09:05")
	require.NoError(t, err)
	assert.Equal(t, Clock("09:05"), c)

	c, err = ParseClock("")
	require.NoError(t, err)
	assert.True(t, c.IsZero())

	_, err = ParseClock("25:00")
	assert.Error(t, err)
}

func TestParseClock_PadsHour(t *testing.T) {
	c, err := ParseClock(" 9:05 ")
	require.NoError(t, err)
	assert.Equal(t, Clock("09:05"), c)

	now := time.Date(2026, 10, 17, 9, 5, 0, 0, time.Local)
	reminder := Task{ID: 1, Date: DateOf(now), ReminderTime: c}
	assert.True(t, reminder.ReminderDue(DateOf(now), ClockOf(now)))
}

func TestTask_ReminderDue(t *testing.T) {
	base := Task{ID: 1, Date: "2026-10-17", ReminderTime: "09:00"}

	assert.True(t, base.ReminderDue("2026-10-17", "09:00"))
	assert.False(t, base.ReminderDue("2026-10-18", "09:00"), "other day")
	assert.False(t, base.ReminderDue("2026-10-17", "09:01"), "other minute")

	notified := base
	notified.Notified = true
	assert.False(t, notified.ReminderDue("2026-10-17", "09:00"))

	completed := base
	completed.Completed = true
	assert.False(t, completed.ReminderDue("2026-10-17", "09:00"))

	none := base
	none.ReminderTime = ""
	assert.False(t, none.ReminderDue("2026-10-17", ""))
}
