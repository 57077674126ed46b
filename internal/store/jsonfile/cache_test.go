package jsonfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/zenflow/internal/core/task"
	"github.com/colonyops/zenflow/internal/core/tasksync"
)

func sampleTasks() []task.Task {
	return []task.Task{
		{ID: 2, Text: "walk", Urgency: task.UrgencyHigh, Icon: task.IconSun, Date: "2026-10-17", ReminderTime: "08:00"},
		{ID: 1, Text: "breathe", Urgency: task.UrgencyLow, Icon: task.IconWind, Date: "2026-10-17", Completed: true},
	}
}

func TestCache_ReadMissing(t *testing.T) {
	c := NewCache(t.TempDir())

	_, err := c.Read(context.Background())
	assert.ErrorIs(t, err, tasksync.ErrCacheMiss)
}

func TestCache_RoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	c := NewCache(filepath.Join(dir, "cache"))

	require.NoError(t, c.Write(ctx, sampleTasks()))
	assert.Equal(t, filepath.Join(dir, "cache", "zen-tasks.json"), c.Path())

	got, err := NewCache(filepath.Join(dir, "cache")).Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, sampleTasks(), got)
}

func TestCache_EmptyListRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := NewCache(t.TempDir())

	require.NoError(t, c.Write(ctx, nil))

	got, err := c.Read(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NotNil(t, got)
}

func TestCache_CorruptIsMiss(t *testing.T) {
	dir := t.TempDir()
	c := NewCache(dir)

	require.NoError(t, os.WriteFile(c.Path(), []byte("{not json"), 0o644))

	_, err := c.Read(context.Background())
	assert.ErrorIs(t, err, tasksync.ErrCacheMiss)

	require.NoError(t, os.WriteFile(c.Path(), []byte("   "), 0o644))
	_, err = c.Read(context.Background())
	assert.ErrorIs(t, err, tasksync.ErrCacheMiss)
}

func TestCache_SkipsUnchangedWrite(t *testing.T) {
	ctx := context.Background()
	c := NewCache(t.TempDir())

	require.NoError(t, c.Write(ctx, sampleTasks()))

	old := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(c.Path(), old, old))

	require.NoError(t, c.Write(ctx, sampleTasks()))

	info, err := os.Stat(c.Path())
	require.NoError(t, err)
	assert.WithinDuration(t, old, info.ModTime(), time.Second, "unchanged content must not be rewritten")

	_, err = os.Stat(c.Path() + ".tmp")
	assert.True(t, os.IsNotExist(err))
}
