package commands

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/colonyops/zenflow/internal/core/styles"
	"github.com/colonyops/zenflow/internal/core/task"
	"github.com/colonyops/zenflow/internal/core/tasksync"
	"github.com/colonyops/zenflow/internal/printer"
	"github.com/colonyops/zenflow/internal/zen"
)

func urgencyLabel(p *printer.Printer, u task.Urgency) string {
	switch u {
	case task.UrgencyHigh:
		return p.Render(styles.UrgencyHighStyle, string(u))
	case task.UrgencyMedium:
		return p.Render(styles.UrgencyMediumStyle, string(u))
	default:
		return p.Render(styles.UrgencyLowStyle, string(u))
	}
}

func statusMark(p *printer.Printer, t task.Task) string {
	if !p.Color() {
		if t.Completed {
			return "[x]"
		}
		return "[ ]"
	}
	if t.Completed {
		return p.Render(styles.SuccessStyle, styles.IconCheck)
	}
	return styles.IconPending
}

func taskText(p *printer.Printer, t task.Task) string {
	text := t.Text
	if p.Color() {
		text = styles.TaskIcon(string(t.Icon)) + " " + text
		if t.Completed {
			text = p.Render(styles.CompletedStyle, text)
		}
	}
	return text
}

// writeTaskTable renders tasks as an aligned table.
func writeTaskTable(w io.Writer, p *printer.Printer, tasks []task.Task) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tDONE\tURGENCY\tDATE\tAT\tTASK")

	for _, t := range tasks {
		at := string(t.ReminderTime)
		if at == "" {
			at = "-"
		}
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			t.ID, statusMark(p, t), urgencyLabel(p, t.Urgency), t.Date, at, taskText(p, t))
	}

	_ = tw.Flush()
}

// writeCalendar renders a Monday-first month grid. Days with pending tasks
// show the pending count, days whose tasks are all done show a check.
func writeCalendar(w io.Writer, p *printer.Printer, year int, month time.Month, counts []task.DayCount, today task.Date) {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.Local)

	var b strings.Builder
	b.WriteString(p.Render(styles.HeaderStyle, first.Format("January 2006")))
	b.WriteString("\n")
	b.WriteString(p.Render(styles.MutedStyle, " Mo  Tu  We  Th  Fr  Sa  Su"))
	b.WriteString("\n")

	offset := (int(first.Weekday()) + 6) % 7
	b.WriteString(strings.Repeat("    ", offset))

	for _, c := range counts {
		cell := fmt.Sprintf("%3d", c.Day)
		switch {
		case c.Pending > 0:
			cell = fmt.Sprintf("%2d*", c.Day)
			cell = p.Render(styles.CalendarBusyStyle, cell)
		case c.Total > 0:
			cell = fmt.Sprintf("%2d+", c.Day)
			cell = p.Render(styles.CalendarDoneStyle, cell)
		}
		if task.DateOf(time.Date(year, month, c.Day, 0, 0, 0, 0, time.Local)) == today {
			cell = p.Render(styles.CalendarTodayStyle, cell)
		}

		b.WriteString(cell)
		if (offset+c.Day)%7 == 0 {
			b.WriteString("\n")
		} else {
			b.WriteString(" ")
		}
	}

	out := strings.TrimRight(b.String(), " \n")
	_, _ = fmt.Fprintln(w, out)
	_, _ = fmt.Fprintln(w, p.Render(styles.MutedStyle, "* pending  + done"))
}

// warnSync tells the user a change has not reached the remote yet.
func warnSync(p *printer.Printer, app *zen.App) {
	st := app.Sync.State()
	if st.Status != tasksync.StatusError {
		return
	}
	p.Warnf("remote unavailable, saved locally (%d pending)", st.Pending)
}
