package commands

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/zenflow/internal/core/task"
	"github.com/colonyops/zenflow/internal/printer"
	"github.com/colonyops/zenflow/internal/zen"
)

type DoneCmd struct {
	flags *Flags
	app   *zen.App
}

// NewDoneCmd creates a new done command
func NewDoneCmd(flags *Flags, app *zen.App) *DoneCmd {
	return &DoneCmd{flags: flags, app: app}
}

// Register adds the done command to the application
func (cmd *DoneCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "done",
		Usage:     "Toggle a task between pending and completed",
		UsageText: "zen done <id>",
		Action:    cmd.run,
	})

	return app
}

func (cmd *DoneCmd) run(ctx context.Context, c *cli.Command) error {
	id, err := parseTaskID(c)
	if err != nil {
		return err
	}

	t, err := cmd.app.Tasks.Toggle(ctx, id)
	if err != nil {
		return notFoundMessage(id, err)
	}

	p := printer.Ctx(ctx)
	if t.Completed {
		p.Successf("completed %d: %s", t.ID, t.Text)
	} else {
		p.Infof("reopened %d: %s", t.ID, t.Text)
	}
	warnSync(p, cmd.app)
	return nil
}

func parseTaskID(c *cli.Command) (int64, error) {
	if c.Args().Len() != 1 {
		return 0, fmt.Errorf("expected exactly one task id")
	}

	id, err := strconv.ParseInt(c.Args().First(), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid task id %q", c.Args().First())
	}
	return id, nil
}

func notFoundMessage(id int64, err error) error {
	if errors.Is(err, task.ErrNotFound) {
		return fmt.Errorf("task %d not found", id)
	}
	return err
}
