package tasksync

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/colonyops/zenflow/internal/core/logging"
	"github.com/colonyops/zenflow/internal/core/task"
	"github.com/colonyops/zenflow/pkg/schedule"
)

// maxLoadAttempts bounds how often Load fetches again when the store changed
// while a fetch was in flight.
const maxLoadAttempts = 3

var errChangedDuringSync = errors.New("tasks changed during sync")

type opKind int

const (
	opUpsert opKind = iota
	opDelete
)

// op is a remote write that failed and waits for the next Load.
type op struct {
	kind  opKind
	tasks []task.Task
	ids   []int64
}

// Manager owns the sync status and keeps the store, the remote and the cache
// in step.
//
// Lock order: mu may be held while taking outboxMu, persistMu or handledMu.
// None of those is ever held while taking mu.
type Manager struct {
	store   *task.Store
	remote  Remote
	cache   Cache
	log     zerolog.Logger
	now     func() time.Time
	timeout time.Duration

	mu         sync.Mutex
	gen        uint64
	status     Status
	lastErr    string
	lastSynced time.Time

	// handledRev is the highest store revision such that it and every
	// earlier revision have had their remote write applied or queued.
	// Deliveries may arrive out of order; early ones wait in handled.
	handledMu  sync.Mutex
	handledRev uint64
	handled    map[uint64]bool

	outboxMu sync.Mutex
	outbox   []op

	persistMu    sync.Mutex
	persistedRev uint64

	listenersMu sync.Mutex
	listeners   []func(StatusChange)

	unsubscribe func()
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the manager logger.
func WithLogger(l zerolog.Logger) Option {
	return func(m *Manager) { m.log = l }
}

// WithClock overrides the clock used for the last-synced timestamp.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithTimeout bounds every remote call. Zero means no bound.
func WithTimeout(d time.Duration) Option {
	return func(m *Manager) { m.timeout = d }
}

// New creates a Manager and subscribes it to store. The initial status is
// syncing until the first Load completes.
func New(store *task.Store, remote Remote, cache Cache, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		remote:  remote,
		cache:   cache,
		log:     logging.Component("sync"),
		now:     time.Now,
		status:  StatusSyncing,
		handled: make(map[uint64]bool),
	}
	for _, opt := range opts {
		opt(m)
	}

	// Changes committed before Subscribe are never delivered, so start the
	// watermark at the revision seen once subscribed.
	m.handledMu.Lock()
	m.unsubscribe = store.Subscribe(m.handleChange)
	m.handledRev = store.Revision()
	m.handledMu.Unlock()
	return m
}

// Close detaches the manager from the store.
func (m *Manager) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
}

// OnStatusChange registers fn for every status transition.
func (m *Manager) OnStatusChange(fn func(StatusChange)) {
	m.listenersMu.Lock()
	defer m.listenersMu.Unlock()
	m.listeners = append(m.listeners, fn)
}

// State returns the current sync state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()

	return State{
		Status:     m.status,
		Generation: m.gen,
		LastError:  m.lastErr,
		LastSynced: m.lastSynced,
		Pending:    m.pendingOps(),
	}
}

// Status returns the current status.
func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// Load fetches the remote task list into the store. Pending remote writes are
// flushed first. The fetched list replaces the store only when every
// committed local change had reached the remote before the fetch and nothing
// changed since; otherwise Load fetches again, up to maxLoadAttempts times,
// and reports error if the store never settles. When the remote fails the
// local cache, if present, replaces the store contents and the status becomes
// error; a missing cache leaves the store untouched. If another Load started
// meanwhile, the result is discarded and ErrSuperseded is returned.
func (m *Manager) Load(ctx context.Context) error {
	m.mu.Lock()
	m.gen++
	gen := m.gen
	change, changed := m.setStatusLocked(StatusSyncing, "")
	m.mu.Unlock()
	m.emit(change, changed)

	ctx = logging.WithSyncGen(ctx, gen)

	for attempt := 1; ; attempt++ {
		startRev := m.store.Revision()

		tasks, pushedRev, err := m.fetch(ctx)
		if err != nil {
			return m.fallback(ctx, gen, err)
		}

		m.mu.Lock()
		if gen != m.gen {
			m.mu.Unlock()
			m.log.Debug().Ctx(ctx).Msg("discarding superseded remote result")
			return ErrSuperseded
		}

		switch {
		case m.pendingOps() > 0:
			// A push failed while fetching; the remote is missing local edits.
			err = errors.New("local changes not yet pushed")
			change, changed = m.setStatusLocked(StatusError, err.Error())
		case pushedRev >= startRev && m.store.ReplaceAllIf(startRev, tasks):
			m.lastSynced = m.now()
			change, changed = m.setStatusLocked(StatusSynced, "")
		case attempt < maxLoadAttempts:
			m.mu.Unlock()
			m.log.Debug().Ctx(ctx).Int("attempt", attempt).Msg("tasks changed during fetch, fetching again")
			continue
		default:
			err = errChangedDuringSync
			change, changed = m.setStatusLocked(StatusError, err.Error())
		}
		m.mu.Unlock()
		m.emit(change, changed)

		if err != nil {
			return err
		}

		m.log.Info().Ctx(ctx).Int("tasks", len(tasks)).Int("attempts", attempt).Msg("synced with remote")
		return nil
	}
}

// Retry re-runs Load. It may be called while a Load is in flight; the most
// recently started attempt wins.
func (m *Manager) Retry(ctx context.Context) error {
	return m.Load(ctx)
}

// Run retries Load every interval while the status is error.
func (m *Manager) Run(ctx context.Context, interval time.Duration) *schedule.Handle {
	return schedule.Every(ctx, interval, func(ctx context.Context, _ time.Time) {
		if m.Status() != StatusError {
			return
		}
		if err := m.Load(ctx); err != nil && !errors.Is(err, ErrSuperseded) {
			m.log.Debug().Err(err).Msg("auto retry failed")
		}
	}, schedule.WithoutImmediate(), schedule.WithName("sync-retry"))
}

// PersistLocal writes tasks to the local cache. An empty list is never
// written. Failures are logged and swallowed.
func (m *Manager) PersistLocal(ctx context.Context, tasks []task.Task) {
	if len(tasks) == 0 {
		m.log.Debug().Ctx(ctx).Msg("skipping cache write of empty task list")
		return
	}
	m.writeCache(ctx, tasks)
}

// fetch flushes the outbox and reads the remote. It also returns the store
// revision whose writes were all applied or queued before the read started.
func (m *Manager) fetch(ctx context.Context) ([]task.Task, uint64, error) {
	ctx, cancel := m.withTimeout(ctx)
	defer cancel()

	if err := m.flush(ctx); err != nil {
		return nil, 0, fmt.Errorf("flush pending writes: %w", err)
	}

	pushedRev := m.handledWatermark()

	tasks, err := m.remote.FetchAll(ctx)
	if err != nil {
		return nil, 0, err
	}
	return tasks, pushedRev, nil
}

func (m *Manager) fallback(ctx context.Context, gen uint64, fetchErr error) error {
	m.log.Warn().Ctx(ctx).Err(fetchErr).Msg("remote unavailable, falling back to cache")

	cached, cacheErr := m.cache.Read(ctx)

	m.mu.Lock()
	if gen != m.gen {
		m.mu.Unlock()
		return ErrSuperseded
	}
	if cacheErr == nil {
		m.store.ReplaceAll(cached)
	} else {
		m.log.Warn().Ctx(ctx).Err(cacheErr).Msg("cache unavailable, keeping in-memory tasks")
	}
	change, changed := m.setStatusLocked(StatusError, fetchErr.Error())
	m.mu.Unlock()
	m.emit(change, changed)

	return fmt.Errorf("fetch remote: %w", fetchErr)
}

func (m *Manager) handleChange(c task.Change) {
	ctx := context.Background()
	defer m.markHandled(c.Revision)

	switch c.Kind {
	case task.ChangeReplaced:
		m.persist(ctx, c, false)
	case task.ChangeAdded, task.ChangeUpdated:
		m.persist(ctx, c, false)
		m.push(ctx, op{kind: opUpsert, tasks: c.Tasks})
	case task.ChangeRemoved:
		// A removal that empties the store is the one case where an empty
		// list is intended and must reach the cache.
		m.persist(ctx, c, true)
		m.push(ctx, op{kind: opDelete, ids: c.RemovedIDs})
	}
}

func (m *Manager) markHandled(rev uint64) {
	m.handledMu.Lock()
	defer m.handledMu.Unlock()

	if rev <= m.handledRev {
		return
	}
	m.handled[rev] = true
	for m.handled[m.handledRev+1] {
		delete(m.handled, m.handledRev+1)
		m.handledRev++
	}
}

func (m *Manager) handledWatermark() uint64 {
	m.handledMu.Lock()
	defer m.handledMu.Unlock()
	return m.handledRev
}

// persist writes the post-change snapshot unless a newer revision has
// already been written.
func (m *Manager) persist(ctx context.Context, c task.Change, allowEmpty bool) {
	m.persistMu.Lock()
	defer m.persistMu.Unlock()

	if c.Revision <= m.persistedRev {
		return
	}
	if len(c.Snapshot) == 0 && !allowEmpty {
		m.log.Debug().Uint64("revision", c.Revision).Msg("skipping cache write of empty task list")
		return
	}

	if m.writeCache(ctx, c.Snapshot) {
		m.persistedRev = c.Revision
	}
}

func (m *Manager) writeCache(ctx context.Context, tasks []task.Task) bool {
	if err := m.cache.Write(ctx, tasks); err != nil {
		m.log.Error().Ctx(ctx).Err(err).Msg("failed to write task cache")
		return false
	}
	return true
}

// push applies o to the remote. When earlier writes are still pending, o is
// queued behind them so the remote sees writes in order.
func (m *Manager) push(ctx context.Context, o op) {
	m.outboxMu.Lock()
	var err error
	if len(m.outbox) > 0 {
		m.outbox = append(m.outbox, o)
		err = errors.New("earlier remote writes pending")
	} else if err = m.apply(ctx, o); err != nil {
		m.outbox = append(m.outbox, o)
	}
	m.outboxMu.Unlock()

	if err == nil {
		return
	}

	m.log.Warn().Err(err).Msg("remote write failed, queued for retry")

	m.mu.Lock()
	change, changed := m.setStatusLocked(StatusError, err.Error())
	m.mu.Unlock()
	m.emit(change, changed)
}

// flush replays the outbox in order, stopping at the first failure.
func (m *Manager) flush(ctx context.Context) error {
	m.outboxMu.Lock()
	defer m.outboxMu.Unlock()

	for len(m.outbox) > 0 {
		if err := m.apply(ctx, m.outbox[0]); err != nil {
			return err
		}
		m.outbox = m.outbox[1:]
	}
	m.outbox = nil
	return nil
}

func (m *Manager) apply(ctx context.Context, o op) error {
	ctx, cancel := m.withTimeout(ctx)
	defer cancel()

	switch o.kind {
	case opUpsert:
		if err := m.remote.Upsert(ctx, o.tasks...); err != nil {
			return fmt.Errorf("upsert tasks: %w", err)
		}
	case opDelete:
		if err := m.remote.Delete(ctx, o.ids...); err != nil {
			return fmt.Errorf("delete tasks: %w", err)
		}
	}
	return nil
}

func (m *Manager) pendingOps() int {
	m.outboxMu.Lock()
	defer m.outboxMu.Unlock()
	return len(m.outbox)
}

func (m *Manager) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if m.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, m.timeout)
}

func (m *Manager) setStatusLocked(s Status, errText string) (StatusChange, bool) {
	old := m.status
	m.status = s
	m.lastErr = errText

	return StatusChange{Old: old, New: s, Generation: m.gen, Err: errText}, old != s
}

func (m *Manager) emit(c StatusChange, changed bool) {
	if !changed {
		return
	}

	m.log.Debug().Str("from", string(c.Old)).Str("to", string(c.New)).Msg("sync status changed")

	m.listenersMu.Lock()
	listeners := make([]func(StatusChange), len(m.listeners))
	copy(listeners, m.listeners)
	m.listenersMu.Unlock()

	for _, fn := range listeners {
		fn(c)
	}
}
