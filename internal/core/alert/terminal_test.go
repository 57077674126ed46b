package alert

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTmuxPassthrough(t *testing.T) {
	t.Run("wraps sequence in DCS passthrough", func(t *testing.T) {
		result := tmuxPassthrough("\x1b]9;test\x07")

		assert.Contains(t, result, "\x1bPtmux;")
		assert.Equal(t, "\x1b\\", result[len(result)-2:], "should end with ST")
	})

	t.Run("doubles ESC bytes", func(t *testing.T) {
		result := tmuxPassthrough("\x1b]9;Hello\x07\x1b]777;notify;Title;Body\x07")

		assert.Contains(t, result, "\x1b\x1b]9;Hello\x07")
		assert.Contains(t, result, "\x1b\x1b]777;notify;Title;Body\x07")
	})
}

func TestTerminal_Notify(t *testing.T) {
	ctx := context.Background()

	t.Run("writes OSC 9 and OSC 777", func(t *testing.T) {
		var buf bytes.Buffer
		term := NewTerminalWriter(&buf, TerminalOptions{Notifications: true})

		require.NoError(t, term.Notify(ctx, "ZenFlow reminder", "Stretch"))
		assert.Equal(t,
			"\x1b]9;ZenFlow reminder: Stretch\x07\x1b]777;notify;ZenFlow reminder;Stretch\x07",
			buf.String())
	})

	t.Run("strips control characters", func(t *testing.T) {
		var buf bytes.Buffer
		term := NewTerminalWriter(&buf, TerminalOptions{Notifications: true})

		require.NoError(t, term.Notify(ctx, "t", "a\x07b\nc"))
		assert.Contains(t, buf.String(), "a b c")
	})

	t.Run("tmux passthrough", func(t *testing.T) {
		var buf bytes.Buffer
		term := NewTerminalWriter(&buf, TerminalOptions{Notifications: true, Tmux: true})

		require.NoError(t, term.Notify(ctx, "t", "b"))
		assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("\x1bPtmux;")))
	})

	t.Run("disabled", func(t *testing.T) {
		var buf bytes.Buffer
		term := NewTerminalWriter(&buf, TerminalOptions{})

		assert.ErrorIs(t, term.Notify(ctx, "t", "b"), ErrUnavailable)
		assert.Empty(t, buf.String())
	})

	t.Run("not a terminal", func(t *testing.T) {
		f, err := os.Create(filepath.Join(t.TempDir(), "out"))
		require.NoError(t, err)
		defer func() { _ = f.Close() }()

		term := NewTerminal(f, TerminalOptions{Notifications: true, Bell: true})
		assert.ErrorIs(t, term.Notify(ctx, "t", "b"), ErrUnavailable)
		assert.ErrorIs(t, term.PlayCue(ctx, CueSuccess), ErrUnavailable)
	})
}

func TestTerminal_PlayCue(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	term := NewTerminalWriter(&buf, TerminalOptions{Bell: true})

	require.NoError(t, term.PlayCue(ctx, CueSuccess))
	assert.Equal(t, "\x07", buf.String())

	buf.Reset()
	require.NoError(t, term.PlayCue(ctx, CueReminder))
	assert.Equal(t, "\x07\x07", buf.String())

	assert.Error(t, term.PlayCue(ctx, Cue("fanfare")))
}
