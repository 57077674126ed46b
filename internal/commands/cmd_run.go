package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/zenflow/internal/printer"
	"github.com/colonyops/zenflow/internal/web"
	"github.com/colonyops/zenflow/internal/zen"
)

type RunCmd struct {
	flags *Flags
	app   *zen.App

	// flags
	listen string
}

// NewRunCmd creates a new run command
func NewRunCmd(flags *Flags, app *zen.App) *RunCmd {
	return &RunCmd{flags: flags, app: app}
}

// Register adds the run command to the application
func (cmd *RunCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "run",
		Usage:     "Run the reminder daemon",
		UsageText: "zen run [--listen ADDR]",
		Description: `Runs in the foreground until interrupted. While running, due reminders
fire once a minute, failed syncs are retried, expired banners are swept and
edits made by other zen processes are picked up.

With --listen, the task API is served on ADDR (e.g. 127.0.0.1:7777).`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "listen",
				Aliases:     []string{"l"},
				Usage:       "address for the HTTP API (disabled when empty)",
				Sources:     cli.EnvVars("ZEN_LISTEN"),
				Destination: &cmd.listen,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *RunCmd) run(ctx context.Context, _ *cli.Command) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	bg := cmd.app.Start(ctx)
	defer bg.Stop()

	p := printer.Ctx(ctx)
	p.Infof("zen running (reminders every %s)", cmd.app.Config.Reminders.Interval)

	if cmd.listen == "" {
		<-ctx.Done()
		return nil
	}

	p.Infof("api listening on %s", cmd.listen)
	srv := web.NewServer(cmd.app.Tasks, cmd.app.Sync, cmd.app.Banners)
	if err := srv.Run(ctx, cmd.listen); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("serve api: %w", err)
	}
	return nil
}
