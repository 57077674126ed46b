// Package zen wires the task store, sync manager, reminder scheduler and
// notification plumbing into a single App.
package zen

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/colonyops/zenflow/internal/core/alert"
	"github.com/colonyops/zenflow/internal/core/config"
	"github.com/colonyops/zenflow/internal/core/eventbus"
	"github.com/colonyops/zenflow/internal/core/logging"
	"github.com/colonyops/zenflow/internal/core/notify"
	"github.com/colonyops/zenflow/internal/core/reminder"
	"github.com/colonyops/zenflow/internal/core/task"
	"github.com/colonyops/zenflow/internal/core/tasksync"
	"github.com/colonyops/zenflow/internal/data/db"
	"github.com/colonyops/zenflow/internal/data/pg"
	"github.com/colonyops/zenflow/internal/data/stores"
	"github.com/colonyops/zenflow/internal/store/jsonfile"
)

const eventBufferSize = 128

// App is the central entry point for all zen operations.
// Commands and the HTTP API consume App instead of cherry-picking raw
// dependencies.
type App struct {
	Tasks     *TaskService
	Store     *task.Store
	Sync      *tasksync.Manager
	Reminders *reminder.Scheduler
	Banners   *notify.Bus
	Events    *eventbus.EventBus
	Alerts    alert.Sink
	Cache     *jsonfile.Cache
	Config    *config.Config
	DB        *db.DB

	log     zerolog.Logger
	cancel  context.CancelFunc
	closers []func() error
}

// Options overrides collaborators, mostly for tests.
type Options struct {
	// Remote replaces the remote selected by config.
	Remote tasksync.Remote
	// Desktop replaces the terminal notification backend.
	Desktop alert.Desktop
	// Output is the terminal used for desktop notifications. Defaults to
	// os.Stderr so escape sequences never mix with command output.
	Output *os.File
}

// Open builds the App from cfg, then loads the task list once. A failing
// remote does not fail Open: the manager falls back to the local cache and
// reports status error.
func Open(ctx context.Context, cfg *config.Config, opts Options) (*App, error) {
	app := &App{
		Config: cfg,
		log:    logging.Component("app"),
	}

	database, err := openDB(cfg.DatabasePath(), dbOptions(cfg))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	app.DB = database
	app.closers = append(app.closers, database.Close)

	remote := opts.Remote
	if remote == nil {
		remote, err = app.openRemote(cfg)
		if err != nil {
			_ = app.Close()
			return nil, fmt.Errorf("open remote: %w", err)
		}
	}

	busCtx, cancel := context.WithCancel(context.Background())
	app.cancel = cancel

	app.Events = eventbus.New(eventBufferSize)
	eventbus.RegisterDebugLogger(app.Events, logging.Component("eventbus"))
	go app.Events.Start(busCtx)

	app.Banners = notify.NewBus(stores.NewBannerStore(database), cfg.Notifications.BannerTTL)
	app.Events.SubscribeNotificationPublished(func(p eventbus.NotificationPublishedPayload) {
		app.Banners.Publish(busCtx, notify.Banner{Level: p.Level, Message: p.Message})
	})
	eventbus.NewNotificationRouter(app.Events).Register()

	desktop := opts.Desktop
	if desktop == nil {
		out := opts.Output
		if out == nil {
			out = os.Stderr
		}
		desktop = alert.NewTerminal(out, alert.TerminalOptions{
			Notifications: cfg.Notifications.Terminal,
			Bell:          cfg.Notifications.Bell,
		})
	}
	app.Alerts = alert.NewDispatcher(desktop, app.Banners, logging.Component("alert"))

	app.Cache = jsonfile.NewCache(cfg.CacheDir())
	app.Store = task.NewStore()
	app.Sync = tasksync.New(app.Store, remote, app.Cache, tasksync.WithTimeout(cfg.Remote.Timeout))
	app.closers = append(app.closers, func() error { app.Sync.Close(); return nil })
	app.Sync.OnStatusChange(func(c tasksync.StatusChange) {
		app.Events.PublishSyncStatusChanged(eventbus.SyncStatusChangedPayload{Old: c.Old, New: c.New, Err: c.Err})
	})

	app.Reminders = reminder.New(app.Store, app.Alerts, cfg.Reminders.Interval, reminder.WithBus(app.Events))
	app.Tasks = NewTaskService(app.Store, app.Alerts, app.Events, logging.Component("tasks"))

	if err := app.Sync.Load(ctx); err != nil {
		app.log.Warn().Err(err).Msg("initial sync failed")
	}

	return app, nil
}

// Close releases every resource in reverse order of acquisition.
func (a *App) Close() error {
	if a.cancel != nil {
		a.cancel()
	}

	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *App) openRemote(cfg *config.Config) (tasksync.Remote, error) {
	switch cfg.Remote.Driver {
	case config.DriverPostgres:
		remote, err := pg.New(cfg.RemoteDSN())
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, remote.Close)
		return remote, nil
	default:
		database, err := openDB(cfg.RemoteDSN(), dbOptions(cfg))
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, database.Close)
		return stores.NewSQLiteTaskStore(database), nil
	}
}

func dbOptions(cfg *config.Config) db.OpenOptions {
	return db.OpenOptions{
		MaxOpenConns: cfg.Database.MaxOpenConns,
		MaxIdleConns: cfg.Database.MaxIdleConns,
		BusyTimeout:  cfg.Database.BusyTimeout,
	}
}

// openDB opens a SQLite database, moving a corrupt file aside and starting
// fresh when the first attempt reports corruption.
func openDB(path string, opts db.OpenOptions) (*db.DB, error) {
	database, err := db.Open(path, opts)
	if err == nil || !stores.IsCorruptionError(err) {
		return database, err
	}

	logging.Component("app").Warn().Err(err).Str("path", path).Msg("database corrupt, recreating")
	if rerr := stores.RecoverFromCorruption(path); rerr != nil {
		return nil, errors.Join(err, rerr)
	}
	return db.Open(path, opts)
}
