package allocator

import (
	"context"
	"sync"
	"time"
)

// ScheduleLocks serializes allocation decisions per schedule.  Each
// schedule id maps to a one-slot semaphore; holding the slot grants
// exclusive access to that schedule's accounting state for the duration
// of a read-decide-write sequence.  Locks for distinct schedules are
// fully independent, so unrelated schedules never block one another.
//
// Acquisition waits at most the configured bound and then fails with
// ErrScheduleBusy instead of queuing unboundedly; a hot schedule sheds
// load rather than accumulating waiters.  Entries are reference-counted
// and removed from the registry once the last interested caller leaves,
// so idle schedules cost nothing.
type ScheduleLocks struct {
	mu      sync.Mutex
	entries map[uint64]*lockEntry
	wait    time.Duration
}

type lockEntry struct {
	sem  chan struct{} // one-slot semaphore; a buffered item means "held"
	refs int           // callers currently holding or waiting on the lock
}

// DefaultLockWait bounds how long an operation waits for a schedule's
// lock before failing fast with ErrScheduleBusy.
const DefaultLockWait = 250 * time.Millisecond

// NewScheduleLocks builds an empty registry.  A non-positive wait falls
// back to DefaultLockWait.
func NewScheduleLocks(wait time.Duration) *ScheduleLocks {
	if wait <= 0 {
		wait = DefaultLockWait
	}
	return &ScheduleLocks{
		entries: make(map[uint64]*lockEntry),
		wait:    wait,
	}
}

// Acquire obtains exclusive access to the given schedule.  On success it
// returns a release function that must be called exactly once, after all
// ledger writes of the decision have completed, so the next holder
// observes a consistent utilization figure.  It returns ErrScheduleBusy
// when the wait bound elapses and the context error when ctx is
// canceled first.
func (l *ScheduleLocks) Acquire(ctx context.Context, scheduleID uint64) (func(), error) {
	l.mu.Lock()
	e, ok := l.entries[scheduleID]
	if !ok {
		e = &lockEntry{sem: make(chan struct{}, 1)}
		l.entries[scheduleID] = e
	}
	e.refs++
	l.mu.Unlock()

	timer := time.NewTimer(l.wait)
	defer timer.Stop()

	select {
	case e.sem <- struct{}{}:
		var once sync.Once
		release := func() {
			once.Do(func() {
				<-e.sem
				l.unref(scheduleID, e)
			})
		}
		return release, nil
	case <-ctx.Done():
		l.unref(scheduleID, e)
		return nil, ctx.Err()
	case <-timer.C:
		l.unref(scheduleID, e)
		return nil, ErrScheduleBusy
	}
}

// unref drops one reference and evicts the registry entry when nobody is
// holding or waiting on it anymore.
func (l *ScheduleLocks) unref(scheduleID uint64, e *lockEntry) {
	l.mu.Lock()
	e.refs--
	if e.refs == 0 {
		delete(l.entries, scheduleID)
	}
	l.mu.Unlock()
}

// Len reports how many schedules currently have live lock entries.  It
// exists for introspection and tests.
func (l *ScheduleLocks) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
