package pool

import (
	"sync"

	"github.com/sirupsen/logrus"
)

type slotState uint8

const (
	slotEmpty slotState = iota
	slotOccupied
	slotTombstoned
)

type slot[T any] struct {
	state  slotState
	entity T
	locks  int
}

// Pool is a fixed-capacity slot allocator returning stable small integer
// ids. It is the arena storage every pooled entity kind (players, actors,
// vehicles, pickups, text labels, gang zones, objects) is built on.
//
// Pool is not safe for concurrent use from multiple goroutines without
// external synchronization: per spec, all pool mutation happens on the
// single tick thread. The mutex below guards against the one exception —
// a caller iterating (e.g. a streaming scan) while a handler fired from
// within that same iteration mutates the pool, which is synchronous
// recursion on the same goroutine and needs no lock, but Go's race
// detector cannot tell recursive single-goroutine reentrancy from genuine
// concurrency, so the mutex is retained as a cheap, always-uncontended
// guard for tooling, not for actual thread safety.
type Pool[T any] struct {
	mu       sync.Mutex
	slots    []slot[T]
	capacity int
	logger   *logrus.Entry

	onCreate  []func(id int, entity *T)
	onDestroy []func(id int, entity *T)
}

// New creates a pool with the given fixed capacity.
func New[T any](capacity int) *Pool[T] {
	return NewWithLogger[T](capacity, nil)
}

// NewWithLogger creates a pool with the given fixed capacity and an
// optional logger for capacity-exhaustion and deferred-release events.
func NewWithLogger[T any](capacity int, logger *logrus.Entry) *Pool[T] {
	return &Pool[T]{
		slots:    make([]slot[T], capacity),
		capacity: capacity,
		logger:   logger,
	}
}

// Capacity returns the pool's fixed capacity.
func (p *Pool[T]) Capacity() int {
	return p.capacity
}

// OnCreate registers a handler invoked synchronously after a slot is
// allocated, the Pool's analogue of spec.md's onPoolEntryCreated.
func (p *Pool[T]) OnCreate(fn func(id int, entity *T)) {
	p.onCreate = append(p.onCreate, fn)
}

// OnDestroy registers a handler invoked synchronously immediately before a
// slot is physically freed, the analogue of onPoolEntryDestroyed.
func (p *Pool[T]) OnDestroy(fn func(id int, entity *T)) {
	p.onDestroy = append(p.onDestroy, fn)
}

// Emplace constructs a new entity in the lowest-index free slot using
// build, and returns its id. Returns ok=false if the pool is full.
func (p *Pool[T]) Emplace(build func(id int) T) (id int, ok bool) {
	p.mu.Lock()
	for i := range p.slots {
		if p.slots[i].state == slotEmpty {
			p.slots[i].state = slotOccupied
			p.slots[i].entity = build(i)
			p.slots[i].locks = 0
			p.mu.Unlock()

			for _, fn := range p.onCreate {
				fn(i, &p.slots[i].entity)
			}
			return i, true
		}
	}
	p.mu.Unlock()

	if p.logger != nil {
		p.logger.WithField("capacity", p.capacity).Debug("pool exhausted, emplace rejected")
	}
	return 0, false
}

// Get returns the entity at id, or ok=false if id is out of range, empty,
// or tombstoned. A pointer is returned so callers can mutate in place;
// the pointer is invalidated once the slot is actually freed.
func (p *Pool[T]) Get(id int) (entity *T, ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if id < 0 || id >= len(p.slots) {
		return nil, false
	}
	s := &p.slots[id]
	if s.state != slotOccupied && s.state != slotTombstoned {
		return nil, false
	}
	// A tombstoned-but-locked slot is still reachable: the release-lock
	// deferral invariant requires get(id) to keep returning the entity
	// while a lock is held.
	if s.state == slotTombstoned && s.locks == 0 {
		return nil, false
	}
	return &s.entity, true
}

// Lock increments the release-lock counter on id. Safe to call on an
// already-tombstoned slot (it keeps it alive past its pending release).
func (p *Pool[T]) Lock(id int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if id < 0 || id >= len(p.slots) {
		return
	}
	s := &p.slots[id]
	if s.state == slotEmpty {
		return
	}
	s.locks++
}

// Unlock decrements the release-lock counter on id. Returns true if the
// slot is still alive after the decrement; false means the deferred
// release has just completed and the caller must not touch the entity
// (or its id) again.
func (p *Pool[T]) Unlock(id int) bool {
	p.mu.Lock()

	if id < 0 || id >= len(p.slots) {
		p.mu.Unlock()
		return false
	}
	s := &p.slots[id]
	if s.state == slotEmpty {
		p.mu.Unlock()
		return false
	}
	if s.locks > 0 {
		s.locks--
	}

	if s.state == slotTombstoned && s.locks == 0 {
		p.destroySlot(id)
		return false
	}

	p.mu.Unlock()
	return true
}

// Release marks id tombstoned. If the release-lock count is zero, or
// forceImmediate is set, the slot is destructed and freed immediately;
// otherwise destruction is deferred until the last Unlock drops the lock
// count to zero.
func (p *Pool[T]) Release(id int, forceImmediate bool) {
	p.mu.Lock()

	if id < 0 || id >= len(p.slots) {
		p.mu.Unlock()
		return
	}
	s := &p.slots[id]
	if s.state != slotOccupied {
		p.mu.Unlock()
		return
	}

	s.state = slotTombstoned

	if s.locks == 0 || forceImmediate {
		p.destroySlot(id)
		return
	}

	if p.logger != nil {
		p.logger.WithFields(logrus.Fields{"id": id, "locks": s.locks}).
			Debug("release deferred: slot is release-locked")
	}
	p.mu.Unlock()
}

// destroySlot performs the actual free. Caller must hold p.mu; it is
// released on return (never re-locked here) so onDestroy handlers run
// outside the pool's internal lock, allowing them to call back into the
// pool (e.g. to iterate or emplace) without deadlocking.
func (p *Pool[T]) destroySlot(id int) {
	s := &p.slots[id]
	entity := s.entity
	p.mu.Unlock()

	for _, fn := range p.onDestroy {
		fn(id, &entity)
	}

	p.mu.Lock()
	var zero T
	p.slots[id] = slot[T]{state: slotEmpty, entity: zero}
	p.mu.Unlock()
}

// Locked reports whether id currently has a non-zero release-lock count.
func (p *Pool[T]) Locked(id int) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if id < 0 || id >= len(p.slots) {
		return false
	}
	return p.slots[id].locks > 0
}

// Count returns the number of occupied (including tombstoned-but-locked)
// slots.
func (p *Pool[T]) Count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for i := range p.slots {
		if p.slots[i].state != slotEmpty {
			n++
		}
	}
	return n
}

// ForEach iterates live (occupied, non-tombstoned) entities in id order.
// It snapshots the id set before iterating so creation or release
// triggered by a handler mid-iteration neither re-visits nor panics;
// entities tombstoned during the snapshot are simply skipped. fn returning
// false stops the iteration early.
func (p *Pool[T]) ForEach(fn func(id int, entity *T) bool) {
	p.mu.Lock()
	ids := make([]int, 0, len(p.slots))
	for i := range p.slots {
		if p.slots[i].state == slotOccupied {
			ids = append(ids, i)
		}
	}
	p.mu.Unlock()

	for _, id := range ids {
		entity, ok := p.Get(id)
		if !ok {
			continue
		}
		if !fn(id, entity) {
			return
		}
	}
}

// ScopedReleaseLock acquires a release-lock on construction and drops it
// on Release, generalizing the "acquire a guard that keeps the slot alive
// across a handler dispatch" idiom spec.md §4.1/§9 calls for. Its zero
// value is not usable; construct with NewScopedReleaseLock.
type ScopedReleaseLock[T any] struct {
	pool *Pool[T]
	id   int
	done bool
}

// NewScopedReleaseLock locks id on pool and returns a guard that unlocks
// it exactly once, whenever Release is called (typically via defer).
func NewScopedReleaseLock[T any](p *Pool[T], id int) *ScopedReleaseLock[T] {
	p.Lock(id)
	return &ScopedReleaseLock[T]{pool: p, id: id}
}

// Release drops the lock acquired at construction. If the entity was
// released (tombstoned) while the lock was held, dropping the last lock
// here performs the actual destruction. Calling Release more than once is
// a no-op after the first call.
func (s *ScopedReleaseLock[T]) Release() {
	if s.done {
		return
	}
	s.done = true
	s.pool.Unlock(s.id)
}
