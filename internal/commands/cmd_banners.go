package commands

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/zenflow/internal/core/notify"
	"github.com/colonyops/zenflow/internal/core/styles"
	"github.com/colonyops/zenflow/internal/printer"
	"github.com/colonyops/zenflow/internal/zen"
	"github.com/colonyops/zenflow/pkg/iojson"
)

type BannersCmd struct {
	flags *Flags
	app   *zen.App

	// flags
	jsonOutput bool
}

// NewBannersCmd creates a new banners command
func NewBannersCmd(flags *Flags, app *zen.App) *BannersCmd {
	return &BannersCmd{flags: flags, app: app}
}

// Register adds the banners command to the application
func (cmd *BannersCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "banners",
		Usage: "Manage in-app banners",
		Description: `Banners are short notices raised by reminders, completed tasks and sync
failures. They expire on their own unless dismissed first.`,
		Commands: []*cli.Command{
			{
				Name:  "ls",
				Usage: "List active banners",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:        "json",
						Usage:       "output as JSON lines",
						Destination: &cmd.jsonOutput,
					},
				},
				Action: cmd.runList,
			},
			{
				Name:      "dismiss",
				Usage:     "Dismiss a banner",
				UsageText: "zen banners dismiss <id>",
				Action:    cmd.runDismiss,
			},
			{
				Name:   "clear",
				Usage:  "Dismiss every banner",
				Action: cmd.runClear,
			},
		},
	})

	return app
}

func (cmd *BannersCmd) runList(ctx context.Context, c *cli.Command) error {
	banners, err := cmd.app.Banners.Active(ctx)
	if err != nil {
		return fmt.Errorf("list banners: %w", err)
	}

	out := c.Root().Writer

	if cmd.jsonOutput {
		for _, b := range banners {
			if err := iojson.WriteLine(out, b); err != nil {
				return fmt.Errorf("encode banner: %w", err)
			}
		}
		return nil
	}

	p := printer.Ctx(ctx)
	if len(banners) == 0 {
		p.Infof("No banners")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tLEVEL\tCREATED\tMESSAGE")
	for _, b := range banners {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", b.ID, levelLabel(p, b.Level), b.CreatedAt.Format(time.Kitchen), b.Message)
	}
	return tw.Flush()
}

func (cmd *BannersCmd) runDismiss(ctx context.Context, c *cli.Command) error {
	if c.Args().Len() != 1 {
		return fmt.Errorf("expected exactly one banner id")
	}
	id := c.Args().First()

	if err := cmd.app.Banners.Dismiss(ctx, id); err != nil {
		if errors.Is(err, notify.ErrNotFound) {
			return fmt.Errorf("banner %s not found", id)
		}
		return fmt.Errorf("dismiss banner: %w", err)
	}

	printer.Ctx(ctx).Successf("dismissed %s", id)
	return nil
}

func (cmd *BannersCmd) runClear(ctx context.Context, _ *cli.Command) error {
	if err := cmd.app.Banners.Clear(ctx); err != nil {
		return fmt.Errorf("clear banners: %w", err)
	}

	printer.Ctx(ctx).Successf("cleared banners")
	return nil
}

func levelLabel(p *printer.Printer, l notify.Level) string {
	switch l {
	case notify.LevelError:
		return p.Render(styles.ErrorStyle, string(l))
	case notify.LevelWarning:
		return p.Render(styles.WarningStyle, string(l))
	default:
		return p.Render(styles.MutedStyle, string(l))
	}
}
