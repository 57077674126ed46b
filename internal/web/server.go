// Package web exposes the task list, sync status and banners over HTTP.
package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/colonyops/zenflow/internal/core/logging"
	"github.com/colonyops/zenflow/internal/core/notify"
	"github.com/colonyops/zenflow/internal/core/task"
	"github.com/colonyops/zenflow/internal/core/tasksync"
)

const shutdownTimeout = 5 * time.Second

// Tasks is the task surface used by the handlers.
type Tasks interface {
	Add(ctx context.Context, in task.NewTask) (task.Task, bool)
	Toggle(ctx context.Context, id int64) (task.Task, error)
	Remove(ctx context.Context, id int64) error
	List(f task.Filter) ([]task.Task, error)
	Calendar(year int, month time.Month) []task.DayCount
}

// Sync is the sync surface used by the handlers.
type Sync interface {
	State() tasksync.State
	Retry(ctx context.Context) error
}

// Banners is the banner surface used by the handlers.
type Banners interface {
	Active(ctx context.Context) ([]notify.Banner, error)
	Dismiss(ctx context.Context, id string) error
}

// Server is the zen control API.
type Server struct {
	tasks   Tasks
	sync    Sync
	banners Banners
	now     func() time.Time
	log     zerolog.Logger
	router  *gin.Engine
}

// NewServer creates a new API server.
func NewServer(tasks Tasks, sync Sync, banners Banners) *Server {
	router := gin.New()

	s := &Server{
		tasks:   tasks,
		sync:    sync,
		banners: banners,
		now:     time.Now,
		log:     logging.Component("web"),
		router:  router,
	}

	router.Use(gin.Recovery(), s.requestLogger())

	api := router.Group("/api")
	{
		api.GET("/tasks", s.handleListTasks)
		api.POST("/tasks", s.handleAddTask)
		api.POST("/tasks/:id/toggle", s.handleToggleTask)
		api.DELETE("/tasks/:id", s.handleRemoveTask)
		api.GET("/calendar", s.handleCalendar)
		api.GET("/sync", s.handleSyncState)
		api.POST("/sync/retry", s.handleSyncRetry)
		api.GET("/banners", s.handleListBanners)
		api.DELETE("/banners/:id", s.handleDismissBanner)
	}

	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Msg("api listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		s.log.Debug().
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Dur("took", time.Since(start)).
			Msg("request")
	}
}
