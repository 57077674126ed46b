package schedule

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvery_RunsImmediately(t *testing.T) {
	var runs atomic.Int32
	h := Every(context.Background(), time.Hour, func(context.Context, time.Time) {
		runs.Add(1)
	})
	defer h.Stop()

	require.Eventually(t, func() bool { return runs.Load() == 1 }, time.Second, 5*time.Millisecond)
}

func TestEvery_WithoutImmediate(t *testing.T) {
	var runs atomic.Int32
	h := Every(context.Background(), time.Hour, func(context.Context, time.Time) {
		runs.Add(1)
	}, WithoutImmediate())

	time.Sleep(20 * time.Millisecond)
	h.Stop()
	assert.Equal(t, int32(0), runs.Load())
}

func TestEvery_Ticks(t *testing.T) {
	var runs atomic.Int32
	h := Every(context.Background(), 5*time.Millisecond, func(context.Context, time.Time) {
		runs.Add(1)
	})
	defer h.Stop()

	require.Eventually(t, func() bool { return runs.Load() >= 3 }, time.Second, 5*time.Millisecond)
}

func TestEvery_StopWaitsAndIsIdempotent(t *testing.T) {
	h := Every(context.Background(), time.Millisecond, func(context.Context, time.Time) {})

	h.Stop()
	h.Stop()

	select {
	case <-h.Done():
	default:
		t.Fatal("done channel not closed after Stop")
	}
}

func TestEvery_ContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	h := Every(ctx, time.Hour, func(context.Context, time.Time) {})

	cancel()

	select {
	case <-h.Done():
	case <-time.After(time.Second):
		t.Fatal("schedule did not exit after context cancel")
	}
}

func TestEvery_RecoversPanic(t *testing.T) {
	var runs atomic.Int32
	h := Every(context.Background(), 5*time.Millisecond, func(context.Context, time.Time) {
		if runs.Add(1) == 1 {
			panic("boom")
		}
	})
	defer h.Stop()

	require.Eventually(t, func() bool { return runs.Load() >= 2 }, time.Second, 5*time.Millisecond)
}

func TestEvery_UsesClock(t *testing.T) {
	fixed := time.Date(2026, 10, 17, 9, 0, 0, 0, time.Local)
	got := make(chan time.Time, 1)

	h := Every(context.Background(), time.Hour, func(_ context.Context, now time.Time) {
		select {
		case got <- now:
		default:
		}
	}, WithClock(func() time.Time { return fixed }))
	defer h.Stop()

	select {
	case now := <-got:
		assert.Equal(t, fixed, now)
	case <-time.After(time.Second):
		t.Fatal("no run observed")
	}
}
