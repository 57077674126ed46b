// Package alert delivers user-facing signals: desktop notifications, audible
// cues and in-app banners.
package alert

import (
	"context"
	"errors"
	"fmt"
)

// ErrUnavailable is returned when a signal cannot be delivered, for example
// because output is not a terminal or the capability is disabled.
var ErrUnavailable = errors.New("alert: unavailable")

// Cue identifies an audible feedback signal.
type Cue string

const (
	CueReminder Cue = "reminder"
	CueSuccess  Cue = "success"
	CueAdded    Cue = "added"
)

// IsValid reports whether c is a known cue.
func (c Cue) IsValid() bool {
	switch c {
	case CueReminder, CueSuccess, CueAdded:
		return true
	}
	return false
}

// Sink is the alert capability handed to the engine. Every call may fail;
// callers are free to ignore the error.
type Sink interface {
	Notify(ctx context.Context, title, body string) error
	PlayCue(ctx context.Context, cue Cue) error
	ShowBanner(ctx context.Context, text string) error
}

// Desktop is the subset of Sink backed by the host environment.
type Desktop interface {
	Notify(ctx context.Context, title, body string) error
	PlayCue(ctx context.Context, cue Cue) error
}

// BannerPublisher receives in-app banners.
type BannerPublisher interface {
	ShowBanner(ctx context.Context, text string) error
}

// Discard is a Sink that reports every signal as unavailable.
var Discard Sink = discard{}

type discard struct{}

func (discard) Notify(context.Context, string, string) error { return ErrUnavailable }
func (discard) PlayCue(context.Context, Cue) error           { return ErrUnavailable }
func (discard) ShowBanner(context.Context, string) error     { return ErrUnavailable }

func invalidCue(c Cue) error {
	return fmt.Errorf("unknown cue %q", c)
}
