package alert_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/zenflow/internal/core/alert"
	"github.com/colonyops/zenflow/internal/core/alert/alerttest"
)

func TestDispatcher(t *testing.T) {
	ctx := context.Background()
	desktop := &alerttest.Recorder{}
	banners := &alerttest.Recorder{}
	d := alert.NewDispatcher(desktop, banners, zerolog.Nop())

	require.NoError(t, d.Notify(ctx, "title", "body"))
	require.NoError(t, d.PlayCue(ctx, alert.CueAdded))
	require.NoError(t, d.ShowBanner(ctx, "hello"))

	assert.Equal(t, []alerttest.Call{
		{Method: "Notify", Title: "title", Body: "body"},
		{Method: "PlayCue", Cue: alert.CueAdded},
	}, desktop.Calls())
	assert.Equal(t, []alerttest.Call{{Method: "ShowBanner", Body: "hello"}}, banners.Calls())
}

func TestDispatcher_MissingParts(t *testing.T) {
	ctx := context.Background()
	d := alert.NewDispatcher(nil, nil, zerolog.Nop())

	assert.ErrorIs(t, d.Notify(ctx, "t", "b"), alert.ErrUnavailable)
	assert.ErrorIs(t, d.PlayCue(ctx, alert.CueSuccess), alert.ErrUnavailable)
	assert.ErrorIs(t, d.ShowBanner(ctx, "x"), alert.ErrUnavailable)
}

func TestDispatcher_PassesErrorsThrough(t *testing.T) {
	boom := errors.New("boom")
	d := alert.NewDispatcher(&alerttest.Recorder{Err: boom}, nil, zerolog.Nop())

	assert.ErrorIs(t, d.Notify(context.Background(), "t", "b"), boom)
}

func TestDispatcher_RejectsUnknownCue(t *testing.T) {
	desktop := &alerttest.Recorder{}
	d := alert.NewDispatcher(desktop, nil, zerolog.Nop())

	assert.Error(t, d.PlayCue(context.Background(), alert.Cue("fanfare")))
	assert.Empty(t, desktop.Calls())
}

func TestDiscard(t *testing.T) {
	ctx := context.Background()
	assert.ErrorIs(t, alert.Discard.Notify(ctx, "t", "b"), alert.ErrUnavailable)
	assert.ErrorIs(t, alert.Discard.PlayCue(ctx, alert.CueAdded), alert.ErrUnavailable)
	assert.ErrorIs(t, alert.Discard.ShowBanner(ctx, "x"), alert.ErrUnavailable)
}
