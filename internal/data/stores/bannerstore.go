package stores

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/colonyops/zenflow/internal/core/notify"
	"github.com/colonyops/zenflow/internal/data/db"
)

// BannerStore implements notify.Store using SQLite.
type BannerStore struct {
	db *sqlx.DB
}

var _ notify.Store = (*BannerStore)(nil)

// NewBannerStore creates a new SQLite-backed banner store.
func NewBannerStore(database *db.DB) *BannerStore {
	return &BannerStore{db: sqlx.NewDb(database.Conn(), "sqlite")}
}

type bannerRow struct {
	ID        string        `db:"id"`
	Level     string        `db:"level"`
	Message   string        `db:"message"`
	CreatedAt int64         `db:"created_at"`
	ExpiresAt sql.NullInt64 `db:"expires_at"`
}

// Save persists a banner.
func (s *BannerStore) Save(ctx context.Context, b notify.Banner) error {
	var expires sql.NullInt64
	if !b.ExpiresAt.IsZero() {
		expires = sql.NullInt64{Int64: b.ExpiresAt.UnixNano(), Valid: true}
	}

	err := retryBusy(ctx, func() error {
		_, err := s.db.ExecContext(ctx,
			"INSERT INTO banners (id, level, message, created_at, expires_at) VALUES (?, ?, ?, ?, ?)",
			b.ID, string(b.Level), b.Message, b.CreatedAt.UnixNano(), expires,
		)
		return err
	})
	if err != nil {
		return fmt.Errorf("insert banner: %w", err)
	}
	return nil
}

// List returns all banners ordered by newest first.
func (s *BannerStore) List(ctx context.Context) ([]notify.Banner, error) {
	var rows []bannerRow
	err := s.db.SelectContext(ctx, &rows,
		"SELECT id, level, message, created_at, expires_at FROM banners ORDER BY created_at DESC, id DESC")
	if err != nil {
		return nil, fmt.Errorf("list banners: %w", err)
	}

	result := make([]notify.Banner, 0, len(rows))
	for _, row := range rows {
		result = append(result, rowToBanner(row))
	}
	return result, nil
}

// Delete removes one banner.
func (s *BannerStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM banners WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete banner: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notify.ErrNotFound
	}
	return nil
}

// Clear deletes all banners.
func (s *BannerStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM banners"); err != nil {
		return fmt.Errorf("clear banners: %w", err)
	}
	return nil
}

// DeleteExpired removes banners whose deadline is at or before now.
func (s *BannerStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM banners WHERE expires_at IS NOT NULL AND expires_at <= ?", now.UnixNano())
	if err != nil {
		return 0, fmt.Errorf("delete expired banners: %w", err)
	}
	return res.RowsAffected()
}

func rowToBanner(row bannerRow) notify.Banner {
	b := notify.Banner{
		ID:        row.ID,
		Level:     notify.Level(row.Level),
		Message:   row.Message,
		CreatedAt: time.Unix(0, row.CreatedAt),
	}
	if row.ExpiresAt.Valid {
		b.ExpiresAt = time.Unix(0, row.ExpiresAt.Int64)
	}
	return b
}
