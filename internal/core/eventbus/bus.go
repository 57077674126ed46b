package eventbus

import (
	"context"
	"sync"
)

// Event names a published event type.
type Event string

type envelope struct {
	event   Event
	payload any
}

// EventBus is an asynchronous typed publish/subscribe bus. Publish never
// blocks: events are queued on a buffered channel and dropped when it is
// full. Start drains the queue and invokes subscribers in order on a single
// goroutine.
type EventBus struct {
	ch    chan envelope
	hooks hooks

	mu   sync.RWMutex
	subs map[Event][]func(any)
}

// New creates a bus with the given queue size.
func New(bufferSize int) *EventBus {
	return &EventBus{
		ch:   make(chan envelope, bufferSize),
		subs: make(map[Event][]func(any)),
	}
}

// Start dispatches queued events until ctx is cancelled.
func (bus *EventBus) Start(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case env := <-bus.ch:
			bus.dispatch(env)
		}
	}
}

func (bus *EventBus) subscribe(event Event, fn func(any)) {
	bus.mu.Lock()
	bus.subs[event] = append(bus.subs[event], fn)
	bus.mu.Unlock()
	bus.runOnSubscribe(event)
}

func (bus *EventBus) dispatch(env envelope) {
	bus.mu.RLock()
	subs := make([]func(any), len(bus.subs[env.event]))
	copy(subs, bus.subs[env.event])
	bus.mu.RUnlock()

	for _, fn := range subs {
		func() {
			defer func() {
				if r := recover(); r != nil {
					bus.runOnPanic(env.event, env.payload, r)
				}
			}()
			fn(env.payload)
		}()
	}
}

func subscribe[T any](bus *EventBus, event Event, fn func(T)) {
	bus.subscribe(event, func(payload any) {
		if p, ok := payload.(T); ok {
			fn(p)
		}
	})
}
