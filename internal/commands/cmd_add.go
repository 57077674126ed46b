package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/zenflow/internal/printer"
	"github.com/colonyops/zenflow/internal/zen"
	"github.com/colonyops/zenflow/pkg/iojson"
)

type AddCmd struct {
	flags *Flags
	app   *zen.App

	// flags
	urgency    string
	icon       string
	date       string
	at         string
	jsonOutput bool
}

// NewAddCmd creates a new add command
func NewAddCmd(flags *Flags, app *zen.App) *AddCmd {
	return &AddCmd{flags: flags, app: app}
}

// Register adds the add command to the application
func (cmd *AddCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "add",
		Usage:     "Add a task",
		UsageText: "zen add [options] <text...>",
		Description: `Adds a task for today, or for --date when given.

Urgency defaults to low and the icon to wind. Set --at to get a reminder
at that minute of the task's day. Blank text adds nothing.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "urgency",
				Aliases:     []string{"u"},
				Usage:       "urgency (low, medium, high)",
				Destination: &cmd.urgency,
			},
			&cli.StringFlag{
				Name:        "icon",
				Aliases:     []string{"i"},
				Usage:       "icon name",
				Destination: &cmd.icon,
			},
			&cli.StringFlag{
				Name:        "date",
				Aliases:     []string{"d"},
				Usage:       "day the task belongs to (YYYY-MM-DD)",
				Destination: &cmd.date,
			},
			&cli.StringFlag{
				Name:        "at",
				Usage:       "reminder time (HH:MM)",
				Destination: &cmd.at,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "print the created task as JSON",
				Destination: &cmd.jsonOutput,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *AddCmd) run(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	req := zen.AddRequest{
		Text:         strings.Join(c.Args().Slice(), " "),
		Urgency:      cmd.urgency,
		Icon:         cmd.icon,
		Date:         cmd.date,
		ReminderTime: cmd.at,
	}

	in, err := req.Parse()
	if err != nil {
		return err
	}

	t, ok := cmd.app.Tasks.Add(ctx, in)
	if !ok {
		p.Infof("nothing to add")
		return nil
	}

	if cmd.jsonOutput {
		if err := iojson.Write(c.Root().Writer, t); err != nil {
			return fmt.Errorf("encode task: %w", err)
		}
		return nil
	}

	p.Successf("added %d: %s", t.ID, t.Text)
	warnSync(p, cmd.app)
	return nil
}
