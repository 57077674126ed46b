package alert

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"golang.org/x/term"
)

// TerminalOptions toggles the terminal capabilities.
type TerminalOptions struct {
	// Notifications enables OSC desktop notifications.
	Notifications bool
	// Bell enables the audible cue.
	Bell bool
	// Tmux wraps sequences in DCS passthrough. NewTerminal sets it from $TMUX.
	Tmux bool
}

// Terminal delivers notifications as OSC 9 + OSC 777 escape sequences and
// cues as the terminal bell. OSC 9 is understood by iTerm2 and Kitty, OSC 777
// by Ghostty, WezTerm and Foot.
type Terminal struct {
	mu   sync.Mutex
	w    io.Writer
	tty  bool
	opts TerminalOptions
}

// NewTerminal creates a Terminal writing to f. Every call returns
// ErrUnavailable when f is not a terminal.
func NewTerminal(f *os.File, opts TerminalOptions) *Terminal {
	opts.Tmux = opts.Tmux || os.Getenv("TMUX") != ""
	return &Terminal{
		w:    f,
		tty:  term.IsTerminal(int(f.Fd())),
		opts: opts,
	}
}

// NewTerminalWriter creates a Terminal that treats w as a terminal.
func NewTerminalWriter(w io.Writer, opts TerminalOptions) *Terminal {
	return &Terminal{w: w, tty: true, opts: opts}
}

func (t *Terminal) Notify(_ context.Context, title, body string) error {
	if !t.tty || !t.opts.Notifications {
		return ErrUnavailable
	}

	title, body = sanitize(title), sanitize(body)
	osc9 := fmt.Sprintf("\x1b]9;%s: %s\x07", title, body)
	osc777 := fmt.Sprintf("\x1b]777;notify;%s;%s\x07", strings.ReplaceAll(title, ";", ","), body)

	return t.write(osc9 + osc777)
}

func (t *Terminal) PlayCue(_ context.Context, cue Cue) error {
	if !cue.IsValid() {
		return invalidCue(cue)
	}
	if !t.tty || !t.opts.Bell {
		return ErrUnavailable
	}

	seq := "\x07"
	if cue == CueReminder {
		seq = "\x07\x07"
	}
	return t.write(seq)
}

func (t *Terminal) write(seq string) error {
	if t.opts.Tmux {
		seq = tmuxPassthrough(seq)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, err := io.WriteString(t.w, seq); err != nil {
		return fmt.Errorf("write terminal sequence: %w", err)
	}
	return nil
}

// tmuxPassthrough wraps escape sequences in DCS passthrough for tmux.
// Each ESC byte in the original sequence is doubled for tmux.
func tmuxPassthrough(seq string) string {
	doubled := strings.ReplaceAll(seq, "\x1b", "\x1b\x1b")
	return "\x1bPtmux;" + doubled + "\x1b\\"
}

// sanitize strips control characters that would terminate the sequence early.
func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return ' '
		}
		return r
	}, s)
}
