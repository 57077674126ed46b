package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hay-kot/criterio"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/zenflow/internal/core/task"
	"github.com/colonyops/zenflow/internal/zen"
	"github.com/colonyops/zenflow/pkg/iojson"
)

type ImportCmd struct {
	flags *Flags
	app   *zen.App
	fr    *iojson.FileReader[ImportInput]
}

// NewImportCmd creates a new import command
func NewImportCmd(flags *Flags, app *zen.App) *ImportCmd {
	return &ImportCmd{
		flags: flags,
		app:   app,
		fr:    &iojson.FileReader[ImportInput]{},
	}
}

// Register adds the import command to the application
func (cmd *ImportCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "import",
		Usage: "Add tasks from JSON input",
		UsageText: `zen import [options]

Read from stdin:
  echo '{"tasks":[{"text":"water plants","urgency":"low"}]}' | zen import

Read from file:
  zen import -f tasks.json`,
		Description: `Adds every task in the input. The input is validated as a whole
first; nothing is added when any entry is invalid.

Input format:
  {
    "tasks": [
      {
        "text": "required",
        "urgency": "low | medium | high",
        "icon": "optional icon name",
        "date": "YYYY-MM-DD",
        "reminderTime": "HH:MM"
      }
    ]
  }

Output is one JSON line per created task.`,
		Flags: []cli.Flag{
			cmd.fr.Flag(),
		},
		Action: cmd.run,
	})

	return app
}

// ImportInput is the JSON document read by zen import.
type ImportInput struct {
	Tasks []zen.AddRequest `json:"tasks"`
}

// Parse validates every entry and returns the tasks to add.
func (in ImportInput) Parse() ([]task.NewTask, error) {
	if len(in.Tasks) == 0 {
		return nil, criterio.NewFieldErrors("tasks", errors.New("array is empty"))
	}

	var errs criterio.FieldErrorsBuilder
	out := make([]task.NewTask, 0, len(in.Tasks))

	for i, req := range in.Tasks {
		field := fmt.Sprintf("tasks[%d]", i)

		if strings.TrimSpace(req.Text) == "" {
			errs = errs.Append(field+".text", errors.New("text is empty"))
			continue
		}

		nt, err := req.Parse()
		if err != nil {
			errs = errs.Append(field, err)
			continue
		}
		out = append(out, nt)
	}

	if err := errs.ToError(); err != nil {
		return nil, err
	}
	return out, nil
}

func (cmd *ImportCmd) run(ctx context.Context, c *cli.Command) error {
	out := c.Root().Writer

	input, err := cmd.fr.Read()
	if err != nil {
		_ = iojson.WriteError(out, fmt.Sprintf("read input: %s", err), nil)
		return cli.Exit("", 1)
	}

	tasks, err := input.Parse()
	if err != nil {
		_ = iojson.WriteError(out, fmt.Sprintf("invalid input: %s", err), nil)
		return cli.Exit("", 1)
	}

	for _, nt := range tasks {
		t, ok := cmd.app.Tasks.Add(ctx, nt)
		if !ok {
			continue
		}
		if err := iojson.WriteLine(out, t); err != nil {
			return fmt.Errorf("encode task: %w", err)
		}
	}

	return nil
}
