package poker

import (
	"time"

	"github.com/decred/slog"
)

// Stopper cancels a pending callback. Stop reports whether the call stopped
// the callback before it fired.
type Stopper interface {
	Stop() bool
}

// Clock creates timers. The engine uses the wall clock; tests drive a fake.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Stopper
}

type wallClock struct{}

func (wallClock) Now() time.Time { return time.Now() }

func (wallClock) AfterFunc(d time.Duration, f func()) Stopper {
	return time.AfterFunc(d, f)
}

// TaskKind identifies the slot a scheduled task occupies. At most one task
// of each kind is pending.
type TaskKind int

const (
	TurnTask TaskKind = iota
	StreetTask
	NextHandTask
)

func (k TaskKind) String() string {
	switch k {
	case TurnTask:
		return "turn"
	case StreetTask:
		return "street"
	case NextHandTask:
		return "next-hand"
	default:
		return "unknown"
	}
}

// Token tags a task with the hand generation and turn sequence it was
// scheduled for.
type Token struct {
	Generation uint64
	Turn       uint64
}

type task struct {
	id       uint64
	token    Token
	deadline time.Time
	stop     Stopper
}

// Scheduler runs delayed callbacks on the owner's goroutine.
//
// Timer goroutines never call back into the owner directly: they hand the
// callback to dispatch, which must queue it for the goroutine that owns the
// table. A callback that was cancelled or replaced while queued is dropped
// when it reaches the front.
type Scheduler struct {
	log      slog.Logger
	clock    Clock
	dispatch func(func())
	tasks    map[TaskKind]*task
	nextID   uint64
}

// NewScheduler creates a scheduler. dispatch is called from timer
// goroutines.
func NewScheduler(log slog.Logger, clock Clock, dispatch func(func())) *Scheduler {
	if clock == nil {
		clock = wallClock{}
	}
	return &Scheduler{
		log:      log,
		clock:    clock,
		dispatch: dispatch,
		tasks:    make(map[TaskKind]*task),
	}
}

// Schedule replaces any pending task of the same kind with fn, run after d.
// fn receives the token it was scheduled with.
func (s *Scheduler) Schedule(kind TaskKind, token Token, d time.Duration, fn func(Token)) {
	s.Cancel(kind)
	s.nextID++
	t := &task{id: s.nextID, token: token, deadline: s.clock.Now().Add(d)}
	id := t.id
	t.stop = s.clock.AfterFunc(d, func() {
		s.dispatch(func() { s.fire(kind, id, fn) })
	})
	s.tasks[kind] = t
}

func (s *Scheduler) fire(kind TaskKind, id uint64, fn func(Token)) {
	t, ok := s.tasks[kind]
	if !ok || t.id != id {
		s.log.Tracef("Dropping stale %s task %d", kind, id)
		return
	}
	delete(s.tasks, kind)
	fn(t.token)
}

// Cancel stops the pending task of the given kind, if any.
func (s *Scheduler) Cancel(kind TaskKind) {
	if t, ok := s.tasks[kind]; ok {
		t.stop.Stop()
		delete(s.tasks, kind)
	}
}

// CancelAll stops every pending task.
func (s *Scheduler) CancelAll() {
	for kind := range s.tasks {
		s.Cancel(kind)
	}
}

// Pending reports whether a task of the given kind is waiting to run.
func (s *Scheduler) Pending(kind TaskKind) bool {
	_, ok := s.tasks[kind]
	return ok
}

// Deadline returns when the pending task of the given kind is due.
func (s *Scheduler) Deadline(kind TaskKind) (time.Time, bool) {
	t, ok := s.tasks[kind]
	if !ok {
		return time.Time{}, false
	}
	return t.deadline, true
}
