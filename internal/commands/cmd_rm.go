package commands

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/zenflow/internal/printer"
	"github.com/colonyops/zenflow/internal/zen"
)

type RmCmd struct {
	flags *Flags
	app   *zen.App
}

// NewRmCmd creates a new rm command
func NewRmCmd(flags *Flags, app *zen.App) *RmCmd {
	return &RmCmd{flags: flags, app: app}
}

// Register adds the rm command to the application
func (cmd *RmCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "rm",
		Usage:     "Delete a task",
		UsageText: "zen rm <id>",
		Action:    cmd.run,
	})

	return app
}

func (cmd *RmCmd) run(ctx context.Context, c *cli.Command) error {
	id, err := parseTaskID(c)
	if err != nil {
		return err
	}

	if err := cmd.app.Tasks.Remove(ctx, id); err != nil {
		return notFoundMessage(id, err)
	}

	p := printer.Ctx(ctx)
	p.Successf("removed %d", id)
	warnSync(p, cmd.app)
	return nil
}
