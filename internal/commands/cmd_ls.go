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

type LsCmd struct {
	flags *Flags
	app   *zen.App
	now   func() time.Time

	// flags
	date       string
	today      bool
	match      string
	pending    bool
	jsonOutput bool
}

// NewLsCmd creates a new ls command
func NewLsCmd(flags *Flags, app *zen.App) *LsCmd {
	return &LsCmd{flags: flags, app: app, now: time.Now}
}

// Register adds the ls command to the application
func (cmd *LsCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "ls",
		Usage:     "List tasks",
		UsageText: "zen ls [--date YYYY-MM-DD | --today] [--match GLOB] [--pending] [--json]",
		Description: `Lists tasks with pending tasks first, then by urgency, then newest first.

--date and --today keep only the tasks of that day. --match keeps tasks
whose text matches a case-insensitive glob, e.g. '*groceries*'.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "date",
				Aliases:     []string{"d"},
				Usage:       "only tasks of this day (YYYY-MM-DD)",
				Destination: &cmd.date,
			},
			&cli.BoolFlag{
				Name:        "today",
				Aliases:     []string{"t"},
				Usage:       "only tasks of today",
				Destination: &cmd.today,
			},
			&cli.StringFlag{
				Name:        "match",
				Aliases:     []string{"m"},
				Usage:       "glob matched against task text",
				Destination: &cmd.match,
			},
			&cli.BoolFlag{
				Name:        "pending",
				Aliases:     []string{"p"},
				Usage:       "hide completed tasks",
				Destination: &cmd.pending,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output as JSON lines",
				Destination: &cmd.jsonOutput,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *LsCmd) filter() (task.Filter, error) {
	f := task.Filter{Match: cmd.match, Pending: cmd.pending}

	switch {
	case cmd.date != "" && cmd.today:
		return f, fmt.Errorf("--date and --today cannot be combined")
	case cmd.today:
		d := task.DateOf(cmd.now())
		f.Date = &d
	case cmd.date != "":
		d, err := task.ParseDate(cmd.date)
		if err != nil {
			return f, err
		}
		f.Date = &d
	}

	return f, nil
}

func (cmd *LsCmd) run(ctx context.Context, c *cli.Command) error {
	f, err := cmd.filter()
	if err != nil {
		return err
	}

	tasks, err := cmd.app.Tasks.List(f)
	if err != nil {
		return err
	}

	out := c.Root().Writer

	if cmd.jsonOutput {
		for _, t := range tasks {
			if err := iojson.WriteLine(out, t); err != nil {
				return fmt.Errorf("encode task: %w", err)
			}
		}
		return nil
	}

	p := printer.Ctx(ctx)
	if len(tasks) == 0 {
		p.Infof("No tasks found")
		warnSync(p, cmd.app)
		return nil
	}

	writeTaskTable(out, p, tasks)
	warnSync(p, cmd.app)
	return nil
}
