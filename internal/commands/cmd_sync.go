package commands

import (
	"context"
	"errors"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/zenflow/internal/core/tasksync"
	"github.com/colonyops/zenflow/internal/printer"
	"github.com/colonyops/zenflow/internal/zen"
	"github.com/colonyops/zenflow/pkg/iojson"
)

type SyncCmd struct {
	flags *Flags
	app   *zen.App

	// flags
	jsonOutput bool
}

// NewSyncCmd creates a new sync command
func NewSyncCmd(flags *Flags, app *zen.App) *SyncCmd {
	return &SyncCmd{flags: flags, app: app}
}

// Register adds the sync command to the application
func (cmd *SyncCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "sync",
		Usage: "Inspect and retry synchronization with the remote",
		Description: `Every command loads the task list from the remote on start. When the
remote is unreachable, tasks come from the local cache and changes are
queued until the next successful sync.`,
		Commands: []*cli.Command{
			{
				Name:  "status",
				Usage: "Show the sync status",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:        "json",
						Usage:       "output as JSON",
						Destination: &cmd.jsonOutput,
					},
				},
				Action: cmd.runStatus,
			},
			{
				Name:   "retry",
				Usage:  "Push queued changes and reload from the remote",
				Action: cmd.runRetry,
			},
		},
	})

	return app
}

func (cmd *SyncCmd) runStatus(ctx context.Context, c *cli.Command) error {
	st := cmd.app.Sync.State()

	if cmd.jsonOutput {
		return iojson.Write(c.Root().Writer, st)
	}

	p := printer.Ctx(ctx)
	printState(p, st)
	return nil
}

func (cmd *SyncCmd) runRetry(ctx context.Context, c *cli.Command) error {
	p := printer.Ctx(ctx)

	err := cmd.app.Sync.Retry(ctx)
	if err != nil && !errors.Is(err, tasksync.ErrSuperseded) {
		p.Errorf("sync failed: %v", err)
		printState(p, cmd.app.Sync.State())
		return cli.Exit("", 1)
	}

	p.Successf("synced %d task(s)", cmd.app.Store.Len())
	return nil
}

func printState(p *printer.Printer, st tasksync.State) {
	switch st.Status {
	case tasksync.StatusSynced:
		p.Successf("status: %s", st.Status)
	case tasksync.StatusError:
		p.Errorf("status: %s", st.Status)
	default:
		p.Infof("status: %s", st.Status)
	}

	if st.LastError != "" {
		p.Printf("  error: %s", st.LastError)
	}
	if !st.LastSynced.IsZero() {
		p.Printf("  last synced: %s", st.LastSynced.Format(time.DateTime))
	}
	if st.Pending > 0 {
		p.Printf("  pending writes: %d", st.Pending)
	}
}
