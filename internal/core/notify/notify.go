// Package notify models short-lived user-facing banners.
package notify

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a banner does not exist.
var ErrNotFound = errors.New("banner not found")

// Level represents the severity of a banner.
type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Banner is a dismissable message shown to the user.
type Banner struct {
	ID        string    `json:"id"`
	Level     Level     `json:"level"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
	// ExpiresAt is the auto-dismiss deadline. The zero value never expires.
	ExpiresAt time.Time `json:"expiresAt,omitzero"`
}

// Expired reports whether the banner has passed its deadline at now.
func (b Banner) Expired(now time.Time) bool {
	return !b.ExpiresAt.IsZero() && !now.Before(b.ExpiresAt)
}

// Store persists banners to durable storage.
type Store interface {
	Save(ctx context.Context, b Banner) error
	// List returns all stored banners, newest first.
	List(ctx context.Context) ([]Banner, error)
	// Delete removes a banner. Returns ErrNotFound when id is unknown.
	Delete(ctx context.Context, id string) error
	Clear(ctx context.Context) error
	// DeleteExpired removes every banner whose deadline is at or before now.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
