package task

import (
	"testing"

	"pgregory.net/rapid"
)

var urgencies = []Urgency{UrgencyLow, UrgencyMedium, UrgencyHigh, "", "bogus"}

func taskGenerator() *rapid.Generator[Task] {
	return rapid.Custom(func(t *rapid.T) Task {
		return Task{
			ID:        rapid.Int64Range(1, 1_000_000).Draw(t, "id"),
			Text:      rapid.StringMatching(`[a-z ]{1,12}`).Draw(t, "text"),
			Urgency:   rapid.SampledFrom(urgencies).Draw(t, "urgency"),
			Date:      rapid.SampledFrom([]Date{"2026-01-01", "2026-01-02", "2026-01-03"}).Draw(t, "date"),
			Completed: rapid.Bool().Draw(t, "completed"),
		}
	})
}

// For any task set, Present orders incomplete before completed, then by
// urgency rank, then by id descending, and returns the same result when
// called twice.
func TestProperty_PresentOrdering(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		tasks := rapid.SliceOf(taskGenerator()).Draw(rt, "tasks")

		got := Present(tasks, nil)
		if len(got) != len(tasks) {
			rt.Fatalf("expected %d tasks, got %d", len(tasks), len(got))
		}

		for i := 1; i < len(got); i++ {
			prev, cur := got[i-1], got[i]
			switch {
			case prev.Completed != cur.Completed:
				if prev.Completed {
					rt.Fatalf("completed task %d ordered before incomplete task %d", prev.ID, cur.ID)
				}
			case prev.Urgency.Rank() != cur.Urgency.Rank():
				if prev.Urgency.Rank() > cur.Urgency.Rank() {
					rt.Fatalf("urgency %q ordered before %q", prev.Urgency, cur.Urgency)
				}
			case prev.ID < cur.ID:
				rt.Fatalf("id %d ordered before newer id %d", prev.ID, cur.ID)
			}
		}

		again := Present(tasks, nil)
		for i := range got {
			if got[i] != again[i] {
				rt.Fatalf("second call differs at %d: %+v vs %+v", i, got[i], again[i])
			}
		}
	})
}

// Filtering by date keeps exactly the tasks of that day.
func TestProperty_PresentDateFilter(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		tasks := rapid.SliceOf(taskGenerator()).Draw(rt, "tasks")
		day := rapid.SampledFrom([]Date{"2026-01-01", "2026-01-02", "2026-01-03"}).Draw(rt, "day")

		want := 0
		for _, tk := range tasks {
			if tk.Date == day {
				want++
			}
		}

		got := Present(tasks, &day)
		if len(got) != want {
			rt.Fatalf("expected %d tasks for %s, got %d", want, day, len(got))
		}
		for _, tk := range got {
			if tk.Date != day {
				rt.Fatalf("task %d has date %s, want %s", tk.ID, tk.Date, day)
			}
		}
	})
}
