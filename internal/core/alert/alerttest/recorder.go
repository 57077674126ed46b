// Package alerttest provides a recording alert.Sink for tests.
package alerttest

import (
	"context"
	"sync"

	"github.com/colonyops/zenflow/internal/core/alert"
)

// Call is one recorded sink invocation.
type Call struct {
	Method string // Notify, PlayCue or ShowBanner
	Title  string
	Body   string
	Cue    alert.Cue
}

// Recorder records every call. Err is returned from each call and Panic,
// when non-nil, is raised after recording.
type Recorder struct {
	Err   error
	Panic any

	mu    sync.Mutex
	calls []Call
}

var _ alert.Sink = (*Recorder)(nil)

func (r *Recorder) Notify(_ context.Context, title, body string) error {
	return r.record(Call{Method: "Notify", Title: title, Body: body})
}

func (r *Recorder) PlayCue(_ context.Context, cue alert.Cue) error {
	return r.record(Call{Method: "PlayCue", Cue: cue})
}

func (r *Recorder) ShowBanner(_ context.Context, text string) error {
	return r.record(Call{Method: "ShowBanner", Body: text})
}

func (r *Recorder) record(c Call) error {
	r.mu.Lock()
	r.calls = append(r.calls, c)
	r.mu.Unlock()

	if r.Panic != nil {
		panic(r.Panic)
	}
	return r.Err
}

// Calls returns a copy of all recorded calls.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Call, len(r.calls))
	copy(out, r.calls)
	return out
}

// Count returns how many calls of the given method were recorded.
func (r *Recorder) Count(method string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.calls {
		if c.Method == method {
			n++
		}
	}
	return n
}

// Cues returns the cues played, in order.
func (r *Recorder) Cues() []alert.Cue {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []alert.Cue
	for _, c := range r.calls {
		if c.Method == "PlayCue" {
			out = append(out, c.Cue)
		}
	}
	return out
}

// Reset clears all recorded calls.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
}
