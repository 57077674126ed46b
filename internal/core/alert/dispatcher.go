package alert

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
)

// Dispatcher combines a desktop backend and a banner publisher into a Sink.
// Either part may be nil, in which case the matching calls return
// ErrUnavailable. Failures are logged at debug level.
type Dispatcher struct {
	desktop Desktop
	banners BannerPublisher
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(desktop Desktop, banners BannerPublisher, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{desktop: desktop, banners: banners, log: log}
}

// Notify sends a desktop notification.
func (d *Dispatcher) Notify(ctx context.Context, title, body string) error {
	if d.desktop == nil {
		return ErrUnavailable
	}
	return d.logged("notify", d.desktop.Notify(ctx, title, body))
}

// PlayCue plays cue on the desktop backend.
func (d *Dispatcher) PlayCue(ctx context.Context, cue Cue) error {
	if !cue.IsValid() {
		return invalidCue(cue)
	}
	if d.desktop == nil {
		return ErrUnavailable
	}
	return d.logged("cue", d.desktop.PlayCue(ctx, cue))
}

// ShowBanner publishes text as an in-app banner.
func (d *Dispatcher) ShowBanner(ctx context.Context, text string) error {
	if d.banners == nil {
		return ErrUnavailable
	}
	return d.logged("banner", d.banners.ShowBanner(ctx, text))
}

func (d *Dispatcher) logged(signal string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrUnavailable) {
		d.log.Debug().Str("signal", signal).Msg("alert unavailable")
	} else {
		d.log.Debug().Err(err).Str("signal", signal).Msg("alert failed")
	}
	return err
}
