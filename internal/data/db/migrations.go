package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/colonyops/zenflow/internal/core/logging"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migration represents a single versioned migration with up and down SQL.
type Migration struct {
	Version int
	Name    string
	UpSQL   string
	DownSQL string
}

// Migrator applies NNNN_name.{up,down}.sql files from a directory and tracks
// them in a schema_migrations table. It is shared by every SQL backend; the
// bind function rewrites "?" placeholders for drivers that need another
// style.
type Migrator struct {
	fsys fs.FS
	dir  string
	bind func(string) string
	log  zerolog.Logger
}

// MigratorOption configures a Migrator.
type MigratorOption func(*Migrator)

// WithBind sets the placeholder rewrite used for bookkeeping statements.
func WithBind(bind func(string) string) MigratorOption {
	return func(m *Migrator) { m.bind = bind }
}

// NewMigrator creates a Migrator over the .sql files in dir of fsys.
func NewMigrator(fsys fs.FS, dir string, opts ...MigratorOption) *Migrator {
	m := &Migrator{
		fsys: fsys,
		dir:  dir,
		bind: func(q string) string { return q },
		log:  logging.Component("migrate"),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// sqliteMigrator serves the embedded SQLite schema.
func sqliteMigrator() *Migrator {
	return NewMigrator(migrationsFS, "migrations")
}

func migrateUp(ctx context.Context, conn *sql.DB) error {
	return sqliteMigrator().Up(ctx, conn)
}

// MigrateDown reverts the last n applied SQLite migrations.
func MigrateDown(ctx context.Context, conn *sql.DB, n int) error {
	return sqliteMigrator().Down(ctx, conn, n)
}

// Load parses the migration files into a slice sorted by version.
// Validates strict naming format, uniqueness, and up/down pairing.
func (m *Migrator) Load() ([]Migration, error) {
	entries, err := fs.ReadDir(m.fsys, m.dir)
	if err != nil {
		return nil, fmt.Errorf("reading migrations directory: %w", err)
	}

	byVersion := make(map[int]*Migration)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		fname := entry.Name()

		version, name, direction, err := parseFilename(fname)
		if err != nil {
			return nil, fmt.Errorf("invalid migration filename %q: %w", fname, err)
		}

		content, err := fs.ReadFile(m.fsys, path.Join(m.dir, fname))
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", fname, err)
		}

		mig, ok := byVersion[version]
		if !ok {
			mig = &Migration{Version: version, Name: name}
			byVersion[version] = mig
		}

		target := &mig.UpSQL
		if direction == "down" {
			target = &mig.DownSQL
		}
		if *target != "" {
			return nil, fmt.Errorf("duplicate %s migration for version %04d", direction, version)
		}
		*target = string(content)
	}

	migrations := make([]Migration, 0, len(byVersion))
	for _, mig := range byVersion {
		switch {
		case mig.UpSQL == "":
			return nil, fmt.Errorf("migration %04d has down file but no up file", mig.Version)
		case mig.DownSQL == "":
			return nil, fmt.Errorf("migration %04d has up file but no down file", mig.Version)
		}
		migrations = append(migrations, *mig)
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})

	return migrations, nil
}

// parseFilename extracts version, name, and direction from "NNNN_name.up.sql" or "NNNN_name.down.sql".
func parseFilename(filename string) (int, string, string, error) {
	var direction string
	switch {
	case strings.HasSuffix(filename, ".up.sql"):
		direction = "up"
		filename = strings.TrimSuffix(filename, ".up.sql")
	case strings.HasSuffix(filename, ".down.sql"):
		direction = "down"
		filename = strings.TrimSuffix(filename, ".down.sql")
	default:
		return 0, "", "", fmt.Errorf("expected .up.sql or .down.sql suffix, got %q", filename)
	}

	versionStr, name, ok := strings.Cut(filename, "_")
	if !ok || name == "" {
		return 0, "", "", fmt.Errorf("expected format NNNN_name.{up,down}.sql")
	}

	version, err := strconv.Atoi(versionStr)
	if err != nil {
		return 0, "", "", fmt.Errorf("version %q is not a valid integer: %w", versionStr, err)
	}
	if version <= 0 {
		return 0, "", "", fmt.Errorf("version must be positive, got %d", version)
	}

	return version, name, direction, nil
}

// Up applies all pending migrations in version order.
func (m *Migrator) Up(ctx context.Context, conn *sql.DB) error {
	migrations, err := m.Load()
	if err != nil {
		return fmt.Errorf("loading migrations: %w", err)
	}

	applied, err := m.prepare(ctx, conn)
	if err != nil {
		return err
	}

	for _, mig := range migrations {
		if applied[mig.Version] {
			continue
		}

		m.log.Info().Int("version", mig.Version).Str("name", mig.Name).Msg("applying migration")
		record := m.bind("INSERT INTO schema_migrations (version, name, applied_at) VALUES (?, ?, ?)")
		if err := m.inTx(ctx, conn, mig.UpSQL, record, mig.Version, mig.Name, time.Now().UnixNano()); err != nil {
			return fmt.Errorf("migration %04d (%s): %w", mig.Version, mig.Name, err)
		}
	}

	return nil
}

// Down reverts the last n applied migrations in reverse version order.
func (m *Migrator) Down(ctx context.Context, conn *sql.DB, n int) error {
	if n <= 0 {
		return fmt.Errorf("n must be positive, got %d", n)
	}

	migrations, err := m.Load()
	if err != nil {
		return fmt.Errorf("loading migrations: %w", err)
	}

	applied, err := m.prepare(ctx, conn)
	if err != nil {
		return err
	}

	var toRevert []Migration
	for i := len(migrations) - 1; i >= 0; i-- {
		if applied[migrations[i].Version] {
			toRevert = append(toRevert, migrations[i])
		}
	}

	if n > len(toRevert) {
		return fmt.Errorf("requested %d down migrations but only %d are applied", n, len(toRevert))
	}

	for _, mig := range toRevert[:n] {
		m.log.Info().Int("version", mig.Version).Str("name", mig.Name).Msg("reverting migration")
		record := m.bind("DELETE FROM schema_migrations WHERE version = ?")
		if err := m.inTx(ctx, conn, mig.DownSQL, record, mig.Version); err != nil {
			return fmt.Errorf("revert migration %04d (%s): %w", mig.Version, mig.Name, err)
		}
	}

	return nil
}

// Applied returns the set of applied migration versions.
func (m *Migrator) Applied(ctx context.Context, conn *sql.DB) (map[int]bool, error) {
	return m.prepare(ctx, conn)
}

// prepare creates the tracking table if needed and returns applied versions.
func (m *Migrator) prepare(ctx context.Context, conn *sql.DB) (map[int]bool, error) {
	_, err := conn.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    INTEGER PRIMARY KEY,
			name       TEXT NOT NULL,
			applied_at BIGINT NOT NULL
		)
	`)
	if err != nil {
		return nil, fmt.Errorf("creating schema_migrations table: %w", err)
	}

	rows, err := conn.QueryContext(ctx, "SELECT version FROM schema_migrations")
	if err != nil {
		return nil, fmt.Errorf("querying applied versions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	applied := make(map[int]bool)
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scanning version: %w", err)
		}
		applied[v] = true
	}
	return applied, rows.Err()
}

// inTx runs a migration body and its bookkeeping statement in one transaction.
func (m *Migrator) inTx(ctx context.Context, conn *sql.DB, body, record string, args ...any) error {
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, body); err != nil {
		return fmt.Errorf("executing SQL: %w", err)
	}
	if _, err := tx.ExecContext(ctx, record, args...); err != nil {
		return fmt.Errorf("recording migration: %w", err)
	}

	return tx.Commit()
}
