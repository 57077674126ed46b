package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/zenflow/internal/commands"
	"github.com/colonyops/zenflow/internal/core/config"
	"github.com/colonyops/zenflow/internal/core/logging"
	"github.com/colonyops/zenflow/internal/core/styles"
	"github.com/colonyops/zenflow/internal/printer"
	"github.com/colonyops/zenflow/internal/zen"
	"github.com/colonyops/zenflow/pkg/logutils"
)

var (
	// Build information. Populated at build-time via -ldflags flag.
	// When installed via `go install module@version`, init() populates
	// these from runtime/debug.BuildInfo instead.
	version = "dev"
	commit  = "HEAD"
	date    = "now"
)

func build() string {
	v, c, d := version, commit, date

	if v == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok {
			if mv := info.Main.Version; mv != "" && mv != "(devel)" {
				v = mv
			}
			for _, s := range info.Settings {
				switch s.Key {
				case "vcs.revision":
					c = s.Value
				case "vcs.time":
					d = s.Value
				}
			}
		}
	}

	short := c
	if len(c) > 7 {
		short = c[:7]
	}

	return fmt.Sprintf("%s (%s) %s", v, short, d)
}

// commands that only need the config, not the task engine.
var configOnly = map[string]bool{
	"config": true,
}

func main() {
	ctx := printer.NewContext(context.Background(), printer.New(os.Stdout))

	var (
		logCloser func()
		zenApp    = &zen.App{}
		opened    bool
	)

	flags := &commands.Flags{}

	app := &cli.Command{
		Name:      "zen",
		Usage:     "A calm task list with reminders",
		UsageText: "zen [global options] command [command options]",
		Description: `zen keeps a short list of tasks per day, each with an urgency, an icon
and an optional reminder time.

Tasks live in a remote store (SQLite by default, PostgreSQL when configured)
and are mirrored to a local cache so zen keeps working offline.

Run 'zen run' to fire reminders in the background.`,
		Version: build(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error, fatal, panic)",
				Sources:     cli.EnvVars("ZEN_LOG_LEVEL"),
				Value:       "info",
				Destination: &flags.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "path to log file (defaults to <data-dir>/zen.log)",
				Sources:     cli.EnvVars("ZEN_LOG_FILE"),
				Destination: &flags.LogFile,
			},
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file",
				Sources:     cli.EnvVars("ZEN_CONFIG"),
				Value:       commands.DefaultConfigPath(),
				Destination: &flags.ConfigPath,
			},
			&cli.StringFlag{
				Name:        "data-dir",
				Usage:       "path to data directory",
				Sources:     cli.EnvVars("ZEN_DATA_DIR"),
				Value:       commands.DefaultDataDir(),
				Destination: &flags.DataDir,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			// Always log to a file; use explicit path or default to <datadir>/zen.log
			logFile := flags.LogFile
			if logFile == "" {
				logFile = filepath.Join(flags.DataDir, "zen.log")
			}

			logger, closer, err := logutils.New(flags.LogLevel, logFile, logging.ContextHook{})
			if err != nil {
				return ctx, fmt.Errorf("setup logger: %w", err)
			}
			log.Logger = logger
			logCloser = closer

			cfg, err := config.Load(flags.ConfigPath, flags.DataDir)
			if err != nil {
				return ctx, fmt.Errorf("load config: %w", err)
			}
			flags.Config = cfg

			// Apply configured theme (validation ensures name is valid)
			palette, _ := styles.GetPalette(cfg.UI.Theme)
			styles.SetTheme(palette)

			if configOnly[c.Args().First()] {
				return ctx, nil
			}

			a, err := zen.Open(ctx, cfg, zen.Options{})
			if err != nil {
				return ctx, fmt.Errorf("open zen: %w", err)
			}

			// Populate the pre-allocated App struct (commands already hold a pointer to it)
			*zenApp = *a
			opened = true

			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			if opened {
				if err := zenApp.Close(); err != nil {
					log.Error().Err(err).Msg("failed to close zen")
					return err
				}
			}

			// Close log file
			if logCloser != nil {
				logCloser()
			}
			return nil
		},
	}

	app = commands.NewAddCmd(flags, zenApp).Register(app)
	app = commands.NewImportCmd(flags, zenApp).Register(app)
	app = commands.NewLsCmd(flags, zenApp).Register(app)
	app = commands.NewDoneCmd(flags, zenApp).Register(app)
	app = commands.NewRmCmd(flags, zenApp).Register(app)
	app = commands.NewCalendarCmd(flags, zenApp).Register(app)
	app = commands.NewSyncCmd(flags, zenApp).Register(app)
	app = commands.NewBannersCmd(flags, zenApp).Register(app)
	app = commands.NewRunCmd(flags, zenApp).Register(app)
	app = commands.NewConfigValidateCmd(flags).Register(app)

	exitCode := 0
	runErr := app.Run(ctx, os.Args)
	if runErr != nil {
		fmt.Println()
		fmt.Println(runErr.Error())
		exitCode = 1
	}

	os.Exit(exitCode)
}
