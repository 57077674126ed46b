package task

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
)

// Present returns the display order of tasks: incomplete before completed,
// then high, medium, low urgency, then newest id first. When date is non-nil
// only tasks of that day are kept. The input slice is not modified.
func Present(tasks []Task, date *Date) []Task {
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if date != nil && t.Date != *date {
			continue
		}
		out = append(out, t)
	}

	slices.SortStableFunc(out, compare)
	return out
}

func compare(a, b Task) int {
	if a.Completed != b.Completed {
		if a.Completed {
			return 1
		}
		return -1
	}
	if ra, rb := a.Urgency.Rank(), b.Urgency.Rank(); ra != rb {
		return ra - rb
	}
	switch {
	case a.ID > b.ID:
		return -1
	case a.ID < b.ID:
		return 1
	}
	return 0
}

// Filter narrows a listing. The zero value keeps everything.
type Filter struct {
	Date *Date
	// Match is a case-insensitive glob matched against the task text,
	// e.g. "*groceries*".
	Match string
	// Pending drops completed tasks.
	Pending bool
}

// Validate checks the glob syntax of Match.
func (f Filter) Validate() error {
	if f.Match == "" {
		return nil
	}
	if !doublestar.ValidatePattern(strings.ToLower(f.Match)) {
		return fmt.Errorf("invalid match pattern %q", f.Match)
	}
	return nil
}

// Apply filters tasks and returns them in Present order.
func (f Filter) Apply(tasks []Task) []Task {
	pattern := strings.ToLower(f.Match)

	kept := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if f.Pending && t.Completed {
			continue
		}
		if pattern != "" {
			ok, err := doublestar.Match(pattern, strings.ToLower(t.Text))
			if err != nil || !ok {
				continue
			}
		}
		kept = append(kept, t)
	}

	return Present(kept, f.Date)
}

// DayCount summarizes the tasks of a single calendar day.
type DayCount struct {
	Day     int `json:"day"`
	Total   int `json:"total"`
	Pending int `json:"pending"`
}

// MonthCounts returns one entry per day of the given month, in day order,
// counting the tasks that belong to each day.
func MonthCounts(tasks []Task, year int, month time.Month) []DayCount {
	days := time.Date(year, month+1, 0, 0, 0, 0, 0, time.Local).Day()

	counts := make([]DayCount, days)
	for i := range counts {
		counts[i].Day = i + 1
	}

	prefix := fmt.Sprintf("%04d-%02d-", year, int(month))
	for _, t := range tasks {
		d, err := t.Date.Time()
		if err != nil || !strings.HasPrefix(string(t.Date), prefix) {
			continue
		}
		c := &counts[d.Day()-1]
		c.Total++
		if !t.Completed {
			c.Pending++
		}
	}

	return counts
}
