package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/zenflow/internal/core/task"
	"github.com/colonyops/zenflow/internal/printer"
	"github.com/colonyops/zenflow/internal/zen"
	"github.com/colonyops/zenflow/pkg/iojson"
)

const monthLayout = "2006-01"

type CalendarCmd struct {
	flags *Flags
	app   *zen.App
	now   func() time.Time

	// flags
	month      string
	jsonOutput bool
}

// NewCalendarCmd creates a new calendar command
func NewCalendarCmd(flags *Flags, app *zen.App) *CalendarCmd {
	return &CalendarCmd{flags: flags, app: app, now: time.Now}
}

// Register adds the calendar command to the application
func (cmd *CalendarCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "calendar",
		Aliases:   []string{"cal"},
		Usage:     "Show a month with per-day task counts",
		UsageText: "zen calendar [--month YYYY-MM] [--json]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "month",
				Usage:       "month to show (defaults to the current month)",
				Destination: &cmd.month,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output per-day counts as JSON",
				Destination: &cmd.jsonOutput,
			},
		},
		Action: cmd.run,
	})

	return app
}

type calendarOutput struct {
	Month string          `json:"month"`
	Days  []task.DayCount `json:"days"`
}

func (cmd *CalendarCmd) run(ctx context.Context, c *cli.Command) error {
	now := cmd.now()
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.Local)

	if cmd.month != "" {
		parsed, err := time.ParseInLocation(monthLayout, cmd.month, time.Local)
		if err != nil {
			return fmt.Errorf("invalid month %q: expected YYYY-MM", cmd.month)
		}
		first = parsed
	}

	counts := cmd.app.Tasks.Calendar(first.Year(), first.Month())

	if cmd.jsonOutput {
		return iojson.Write(c.Root().Writer, calendarOutput{
			Month: first.Format(monthLayout),
			Days:  counts,
		})
	}

	writeCalendar(c.Root().Writer, printer.Ctx(ctx), first.Year(), first.Month(), counts, task.DateOf(now))
	return nil
}
