package zen

import (
	"context"
	"errors"
	"time"

	"github.com/colonyops/zenflow/internal/core/tasksync"
	"github.com/colonyops/zenflow/internal/store/jsonfile"
	"github.com/colonyops/zenflow/pkg/schedule"
)

const bannerSweepInterval = time.Minute

// Background is the set of long-running jobs started by Start.
type Background struct {
	handles []*schedule.Handle
	watcher *jsonfile.Watcher
}

// Stop halts every job and waits for them to exit.
func (b *Background) Stop() {
	for _, h := range b.handles {
		h.Stop()
	}
	if b.watcher != nil {
		_ = b.watcher.Close()
	}
}

// Start launches the reminder scheduler, the sync auto-retry, the banner
// sweep and the cache watcher.
func (a *App) Start(ctx context.Context) *Background {
	bg := &Background{}

	bg.handles = append(bg.handles, a.Reminders.Start(ctx))

	if interval := a.Config.Sync.RetryInterval; interval > 0 {
		bg.handles = append(bg.handles, a.Sync.Run(ctx, interval))
	}

	bg.handles = append(bg.handles, schedule.Every(ctx, bannerSweepInterval, func(ctx context.Context, _ time.Time) {
		n, err := a.Banners.Sweep(ctx)
		if err != nil {
			a.log.Debug().Err(err).Msg("banner sweep failed")
			return
		}
		if n > 0 {
			a.log.Debug().Int64("removed", n).Msg("swept expired banners")
		}
	}, schedule.WithName("banner-sweep")))

	watcher, err := jsonfile.NewWatcher(a.Cache, func(ctx context.Context) {
		if err := a.Sync.Retry(ctx); err != nil && !errors.Is(err, tasksync.ErrSuperseded) {
			a.log.Debug().Err(err).Msg("resync after cache change failed")
		}
	})
	if err != nil {
		a.log.Warn().Err(err).Msg("cache watcher unavailable")
	} else {
		bg.watcher = watcher
	}

	return bg
}
