package stores

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/colonyops/zenflow/internal/core/task"
	"github.com/colonyops/zenflow/internal/core/tasksync"
	"github.com/colonyops/zenflow/internal/data/db"
)

// TaskStore implements tasksync.Remote over any SQL database that speaks the
// tasks table schema. Queries are written with "?" placeholders and rebound
// for the connection's driver.
type TaskStore struct {
	db  *sqlx.DB
	now func() time.Time
}

var _ tasksync.Remote = (*TaskStore)(nil)

// NewTaskStore creates a task store over an open sqlx connection.
func NewTaskStore(conn *sqlx.DB) *TaskStore {
	return &TaskStore{db: conn, now: time.Now}
}

// NewSQLiteTaskStore creates a task store over a SQLite database.
func NewSQLiteTaskStore(database *db.DB) *TaskStore {
	return NewTaskStore(sqlx.NewDb(database.Conn(), "sqlite"))
}

type taskRow struct {
	ID           int64          `db:"id"`
	Text         string         `db:"text"`
	Urgency      string         `db:"urgency"`
	Icon         string         `db:"icon"`
	Date         string         `db:"date"`
	ReminderTime sql.NullString `db:"reminder_time"`
	Completed    bool           `db:"completed"`
	Notified     bool           `db:"notified"`
}

const selectTasks = `
	SELECT id, text, urgency, icon, date, reminder_time, completed, notified
	FROM tasks
	ORDER BY id DESC`

const upsertTask = `
	INSERT INTO tasks (id, text, urgency, icon, date, reminder_time, completed, notified, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (id) DO UPDATE SET
		text          = excluded.text,
		urgency       = excluded.urgency,
		icon          = excluded.icon,
		date          = excluded.date,
		reminder_time = excluded.reminder_time,
		completed     = excluded.completed,
		notified      = excluded.notified,
		updated_at    = excluded.updated_at`

// FetchAll returns every task, newest id first. Unknown urgency and icon
// values are passed through; the view layer ranks them as low and wind.
func (s *TaskStore) FetchAll(ctx context.Context) ([]task.Task, error) {
	var rows []taskRow
	err := retryBusy(ctx, func() error {
		rows = rows[:0]
		return s.db.SelectContext(ctx, &rows, s.db.Rebind(selectTasks))
	})
	if err != nil {
		return nil, fmt.Errorf("select tasks: %w", err)
	}

	out := make([]task.Task, 0, len(rows))
	for _, row := range rows {
		out = append(out, rowToTask(row))
	}
	return out, nil
}

// Upsert inserts or replaces tasks in one transaction.
func (s *TaskStore) Upsert(ctx context.Context, tasks ...task.Task) error {
	if len(tasks) == 0 {
		return nil
	}

	query := s.db.Rebind(upsertTask)
	updatedAt := s.now().UnixNano()

	return retryBusy(ctx, func() error {
		tx, err := s.db.BeginTxx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin transaction: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		for _, t := range tasks {
			_, err := tx.ExecContext(ctx, query,
				t.ID, t.Text, string(t.Urgency), string(t.Icon), string(t.Date),
				toNullString(string(t.ReminderTime)), t.Completed, t.Notified, updatedAt,
			)
			if err != nil {
				return fmt.Errorf("upsert task %d: %w", t.ID, err)
			}
		}

		return tx.Commit()
	})
}

// Delete removes tasks by id. Unknown ids are ignored.
func (s *TaskStore) Delete(ctx context.Context, ids ...int64) error {
	if len(ids) == 0 {
		return nil
	}

	query, args, err := sqlx.In("DELETE FROM tasks WHERE id IN (?)", ids)
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}
	query = s.db.Rebind(query)

	err = retryBusy(ctx, func() error {
		_, err := s.db.ExecContext(ctx, query, args...)
		return err
	})
	if err != nil {
		return fmt.Errorf("delete tasks: %w", err)
	}
	return nil
}

// Count returns the number of stored tasks.
func (s *TaskStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM tasks"); err != nil {
		return 0, fmt.Errorf("count tasks: %w", err)
	}
	return n, nil
}

func rowToTask(row taskRow) task.Task {
	return task.Task{
		ID:           row.ID,
		Text:         row.Text,
		Urgency:      task.Urgency(row.Urgency),
		Icon:         task.Icon(row.Icon),
		Date:         task.Date(row.Date),
		ReminderTime: task.Clock(row.ReminderTime.String),
		Completed:    row.Completed,
		Notified:     row.Notified,
	}
}

func toNullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
