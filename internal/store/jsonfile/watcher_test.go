package jsonfile

import (
	"context"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcher_ReportsExternalWrite(t *testing.T) {
	t.Parallel()

	c := NewCache(t.TempDir())
	changed := make(chan struct{}, 1)

	w, err := NewWatcher(c, func(context.Context) {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	require.NoError(t, err)
	defer w.Close() //nolint:errcheck

	require.NoError(t, os.WriteFile(c.Path(), []byte(`[]`), 0o644))

	select {
	case <-changed:
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for change")
	}
}

func TestWatcher_IgnoresOwnWrites(t *testing.T) {
	t.Parallel()

	c := NewCache(t.TempDir())
	var calls atomic.Int32

	w, err := NewWatcher(c, func(context.Context) { calls.Add(1) })
	require.NoError(t, err)
	defer w.Close() //nolint:errcheck

	require.NoError(t, c.Write(context.Background(), sampleTasks()))

	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, int32(0), calls.Load())
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	t.Parallel()

	c := NewCache(t.TempDir())
	var calls atomic.Int32

	w, err := NewWatcher(c, func(context.Context) { calls.Add(1) })
	require.NoError(t, err)
	defer w.Close() //nolint:errcheck

	require.NoError(t, os.WriteFile(c.Path()+".tmp", []byte(`[]`), 0o644))
	require.NoError(t, os.WriteFile(c.Path()+".bak", []byte(`[]`), 0o644))

	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, int32(0), calls.Load())
}

func TestWatcher_DebouncesBursts(t *testing.T) {
	t.Parallel()

	c := NewCache(t.TempDir())
	var calls atomic.Int32

	w, err := NewWatcher(c, func(context.Context) { calls.Add(1) })
	require.NoError(t, err)
	defer w.Close() //nolint:errcheck

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(c.Path(), []byte(`[]`), 0o644))
	}

	require.Eventually(t, func() bool { return calls.Load() >= 1 }, 5*time.Second, 10*time.Millisecond)
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
}
