package task

import (
	"strings"
	"sync"
	"time"
)

// ChangeKind identifies the mutation that produced a Change.
type ChangeKind string

const (
	ChangeAdded    ChangeKind = "added"
	ChangeRemoved  ChangeKind = "removed"
	ChangeUpdated  ChangeKind = "updated"
	ChangeReplaced ChangeKind = "replaced"
)

// Change describes one committed mutation of the Store.
type Change struct {
	Kind ChangeKind
	// Tasks holds the added or updated tasks, after the change.
	Tasks []Task
	// RemovedIDs holds the ids deleted by a ChangeRemoved.
	RemovedIDs []int64
	// Snapshot is the full store contents after the change.
	Snapshot []Task
	// Revision increases by one with every committed mutation.
	Revision uint64
}

// Subscriber is invoked after every committed mutation.
type Subscriber func(Change)

// Store is the single owner of all task records. Every operation is one
// critical section; callers only ever see copies.
type Store struct {
	mu        sync.Mutex
	tasks     []Task // insertion order
	highWater int64
	revision  uint64
	now       func() time.Time

	subMu  sync.Mutex
	nextID int
	subs   map[int]Subscriber
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithClock overrides the clock used for id assignment and default dates.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) { s.now = now }
}

// NewStore creates an empty store.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		now:  time.Now,
		subs: make(map[int]Subscriber),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Subscribe registers fn for every future change and returns a function that
// removes the subscription.
func (s *Store) Subscribe(fn Subscriber) func() {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	id := s.nextID
	s.nextID++
	s.subs[id] = fn

	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subs, id)
	}
}

// Add creates a task. It returns false, and creates nothing, when the text is
// empty or whitespace only.
func (s *Store) Add(in NewTask) (Task, bool) {
	if strings.TrimSpace(in.Text) == "" {
		return Task{}, false
	}

	s.mu.Lock()
	now := s.now()
	t := Task{
		ID:           s.nextIDLocked(now),
		Text:         in.Text,
		Urgency:      in.Urgency.Normalize(),
		Icon:         in.Icon.Normalize(),
		Date:         in.Date,
		ReminderTime: in.ReminderTime,
	}
	if t.Date == "" {
		t.Date = DateOf(now)
	}
	s.tasks = append(s.tasks, t)
	change := s.commitLocked(Change{Kind: ChangeAdded, Tasks: []Task{t}})
	s.mu.Unlock()

	s.dispatch(change)
	return t, true
}

// Remove deletes the task with the given id. It returns false when no such
// task exists, in which case nothing changes.
func (s *Store) Remove(id int64) bool {
	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return false
	}
	s.tasks = append(s.tasks[:idx], s.tasks[idx+1:]...)
	change := s.commitLocked(Change{Kind: ChangeRemoved, RemovedIDs: []int64{id}})
	s.mu.Unlock()

	s.dispatch(change)
	return true
}

// ToggleComplete flips the completed flag and returns the updated task.
func (s *Store) ToggleComplete(id int64) (Task, bool) {
	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return Task{}, false
	}
	s.tasks[idx].Completed = !s.tasks[idx].Completed
	t := s.tasks[idx]
	change := s.commitLocked(Change{Kind: ChangeUpdated, Tasks: []Task{t}})
	s.mu.Unlock()

	s.dispatch(change)
	return t, true
}

// MarkNotified sets the notified flag on every listed task in one batched
// mutation. Only tasks that have a reminder, are not completed and were not
// yet notified transition; those are returned. Calling it again for the same
// ids is a no-op.
func (s *Store) MarkNotified(ids ...int64) []Task {
	s.mu.Lock()
	var flipped []Task
	for _, id := range ids {
		idx := s.indexLocked(id)
		if idx < 0 {
			continue
		}
		t := &s.tasks[idx]
		if t.Notified || t.Completed || !t.HasReminder() {
			continue
		}
		t.Notified = true
		flipped = append(flipped, *t)
	}
	if len(flipped) == 0 {
		s.mu.Unlock()
		return nil
	}
	change := s.commitLocked(Change{Kind: ChangeUpdated, Tasks: flipped})
	s.mu.Unlock()

	s.dispatch(change)
	return flipped
}

// ReplaceAll atomically swaps the store contents for tasks.
func (s *Store) ReplaceAll(tasks []Task) {
	s.mu.Lock()
	change := s.replaceLocked(tasks)
	s.mu.Unlock()

	s.dispatch(change)
}

// ReplaceAllIf swaps the store contents for tasks only when no mutation has
// been committed since revision rev. It reports whether the swap happened.
func (s *Store) ReplaceAllIf(rev uint64, tasks []Task) bool {
	s.mu.Lock()
	if s.revision != rev {
		s.mu.Unlock()
		return false
	}
	change := s.replaceLocked(tasks)
	s.mu.Unlock()

	s.dispatch(change)
	return true
}

// Snapshot returns a copy of all tasks in insertion order.
func (s *Store) Snapshot() []Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Get returns a copy of a single task.
func (s *Store) Get(id int64) (Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexLocked(id)
	if idx < 0 {
		return Task{}, ErrNotFound
	}
	return s.tasks[idx], nil
}

// Len returns the number of tasks.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

// Revision returns the revision of the last committed mutation.
func (s *Store) Revision() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revision
}

// nextIDLocked returns a millisecond timestamp id, bumped past every id the
// store has ever held so removed ids are never reissued.
func (s *Store) nextIDLocked(now time.Time) int64 {
	id := now.UnixMilli()
	if id <= s.highWater {
		id = s.highWater + 1
	}
	s.highWater = id
	return id
}

func (s *Store) replaceLocked(tasks []Task) Change {
	s.tasks = append([]Task(nil), tasks...)
	for _, t := range s.tasks {
		if t.ID > s.highWater {
			s.highWater = t.ID
		}
	}
	return s.commitLocked(Change{Kind: ChangeReplaced})
}

func (s *Store) indexLocked(id int64) int {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) snapshotLocked() []Task {
	out := make([]Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

func (s *Store) commitLocked(c Change) Change {
	s.revision++
	c.Revision = s.revision
	c.Snapshot = s.snapshotLocked()
	return c
}

func (s *Store) dispatch(c Change) {
	s.subMu.Lock()
	subs := make([]Subscriber, 0, len(s.subs))
	for i := 0; i < s.nextID; i++ {
		if fn, ok := s.subs[i]; ok {
			subs = append(subs, fn)
		}
	}
	s.subMu.Unlock()

	for _, fn := range subs {
		fn(c)
	}
}
