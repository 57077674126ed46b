// Package tasksync reconciles the in-memory task store with a remote source
// of truth and a local durable cache.
package tasksync

import (
	"context"
	"errors"
	"time"

	"github.com/colonyops/zenflow/internal/core/task"
)

var (
	// ErrCacheMiss is returned by Cache.Read when no usable cache exists.
	// A corrupt cache is reported the same way.
	ErrCacheMiss = errors.New("cache miss")
	// ErrSuperseded is returned by Load when a newer attempt started before
	// this one finished. Its result was discarded.
	ErrSuperseded = errors.New("sync attempt superseded")
)

// Remote is the authoritative task source.
type Remote interface {
	// FetchAll returns every task ordered by id descending.
	FetchAll(ctx context.Context) ([]task.Task, error)
	Upsert(ctx context.Context, tasks ...task.Task) error
	Delete(ctx context.Context, ids ...int64) error
}

// Cache is the local copy of the full task list.
type Cache interface {
	// Read returns ErrCacheMiss when the cache is absent or unreadable.
	Read(ctx context.Context) ([]task.Task, error)
	Write(ctx context.Context, tasks []task.Task) error
}

// Status is the sync state machine.
type Status string

const (
	StatusSynced  Status = "synced"
	StatusSyncing Status = "syncing"
	StatusError   Status = "error"
)

// State is a point-in-time view of the manager.
type State struct {
	Status     Status    `json:"status"`
	Generation uint64    `json:"generation"`
	LastError  string    `json:"lastError,omitempty"`
	LastSynced time.Time `json:"lastSynced,omitzero"`
	// Pending counts remote writes waiting in the outbox.
	Pending int `json:"pending"`
}

// StatusChange is delivered to status listeners.
type StatusChange struct {
	Old        Status
	New        Status
	Generation uint64
	Err        string
}
