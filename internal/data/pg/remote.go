// Package pg provides a PostgreSQL task remote.
package pg

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"

	"github.com/colonyops/zenflow/internal/core/logging"
	"github.com/colonyops/zenflow/internal/core/task"
	"github.com/colonyops/zenflow/internal/core/tasksync"
	"github.com/colonyops/zenflow/internal/data/db"
	"github.com/colonyops/zenflow/internal/data/stores"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ErrNoDSN is returned by New when no connection string is configured.
var ErrNoDSN = errors.New("postgres dsn is required")

// Remote implements tasksync.Remote against PostgreSQL. The connection is
// opened on first use and dropped after connection-level failures, so an
// unreachable server surfaces as a sync error instead of a startup failure.
type Remote struct {
	dsn string
	log zerolog.Logger

	mu    sync.Mutex
	conn  *sqlx.DB
	tasks *stores.TaskStore
}

var _ tasksync.Remote = (*Remote)(nil)

// New returns a Remote for dsn without connecting.
func New(dsn string) (*Remote, error) {
	if dsn == "" {
		return nil, ErrNoDSN
	}
	return &Remote{dsn: dsn, log: logging.Component("pg")}, nil
}

// Close closes the underlying connection if one is open.
func (r *Remote) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.conn == nil {
		return nil
	}
	err := r.conn.Close()
	r.conn, r.tasks = nil, nil
	return err
}

// Ping connects if needed and verifies the server answers.
func (r *Remote) Ping(ctx context.Context) error {
	conn, _, err := r.connect(ctx)
	if err != nil {
		return err
	}
	return r.check(conn.PingContext(ctx))
}

func (r *Remote) FetchAll(ctx context.Context) ([]task.Task, error) {
	_, tasks, err := r.connect(ctx)
	if err != nil {
		return nil, err
	}
	out, err := tasks.FetchAll(ctx)
	return out, r.check(err)
}

func (r *Remote) Upsert(ctx context.Context, items ...task.Task) error {
	if len(items) == 0 {
		return nil
	}
	_, tasks, err := r.connect(ctx)
	if err != nil {
		return err
	}
	return r.check(tasks.Upsert(ctx, items...))
}

func (r *Remote) Delete(ctx context.Context, ids ...int64) error {
	if len(ids) == 0 {
		return nil
	}
	_, tasks, err := r.connect(ctx)
	if err != nil {
		return err
	}
	return r.check(tasks.Delete(ctx, ids...))
}

func (r *Remote) connect(ctx context.Context) (*sqlx.DB, *stores.TaskStore, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.conn != nil {
		return r.conn, r.tasks, nil
	}

	conn, err := sqlx.ConnectContext(ctx, "pgx", r.dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("connect postgres: %w", err)
	}

	if err := Migrator().Up(ctx, conn.DB); err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("migrate postgres: %w", err)
	}

	r.log.Debug().Msg("connected to postgres")
	r.conn = conn
	r.tasks = stores.NewTaskStore(conn)
	return r.conn, r.tasks, nil
}

// check drops the connection after errors that leave it unusable.
func (r *Remote) check(err error) error {
	if err == nil || !IsConnectionError(err) {
		return err
	}

	r.log.Warn().Err(err).Msg("postgres connection lost, reconnecting on next call")
	if cerr := r.Close(); cerr != nil {
		r.log.Debug().Err(cerr).Msg("close after connection error")
	}
	return err
}

// Migrator returns the schema migrator for the postgres remote.
func Migrator() *db.Migrator {
	return db.NewMigrator(migrationsFS, "migrations", db.WithBind(func(q string) string {
		return sqlx.Rebind(sqlx.DOLLAR, q)
	}))
}

// IsConnectionError reports whether err means the server or the connection
// to it is gone.
func IsConnectionError(err error) bool {
	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// Class 08: connection exception. 57P0x: server shutting down.
		return len(pgErr.Code) == 5 && (pgErr.Code[:2] == "08" || pgErr.Code[:4] == "57P0")
	}

	return errors.Is(err, context.DeadlineExceeded) || pgconn.Timeout(err)
}

// IsUniqueViolation reports a unique constraint failure.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
