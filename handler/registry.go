package handler

import (
	"sync"
	"sync/atomic"

	"github.com/yamaaaaaa31/logust/core"
)

// Entry binds one handler into the registry: its minimum level, optional
// filter predicate, collection requirements, and the underlying sink
// handler. Entries are immutable after Add; they are destroyed only by
// Remove/RemoveAll/Close.
type Entry struct {
	ID           uint64
	Level        core.Level
	Filter       Filter
	Requirements core.CollectionRequirements
	Handler      Handler
}

// Spec is the input to Registry.Add: everything needed to construct a new
// registry Entry except its assigned ID.
type Spec struct {
	Level        core.Level
	Filter       Filter
	Requirements core.CollectionRequirements
	Handler      Handler
}

// snapshot is the immutable, shared-read view the hot path consults. A
// mutation rebuilds a new snapshot and swaps it atomically; readers never
// take a lock (§4.4 "the hot path obtains a snapshot without taking any
// lock").
type snapshot struct {
	entries      []*Entry
	minLevel     core.Level
	requirements core.CollectionRequirements
}

// Registry is the concurrency-safe ordered collection of handlers
// described in §4.4. A single writer-side mutex serializes Add/Remove;
// reads go through an atomically-swapped immutable snapshot.
type Registry struct {
	mu     sync.Mutex
	nextID atomic.Uint64
	snap   atomic.Pointer[snapshot]
}

// NewRegistry creates an empty handler registry.
func NewRegistry() *Registry {
	r := &Registry{}
	r.snap.Store(&snapshot{})
	return r
}

// Add registers a new handler and returns its unique, monotonically
// increasing id.
func (r *Registry) Add(spec Spec) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.nextID.Add(1)
	entry := &Entry{
		ID:           id,
		Level:        spec.Level,
		Filter:       spec.Filter,
		Requirements: spec.Requirements,
		Handler:      spec.Handler,
	}
	if spec.Filter != nil {
		// §4.3: "A filter predicate forces all four [requirements] to true."
		entry.Requirements = core.CollectionRequirements{Caller: true, Thread: true, Process: true, Elapsed: true}
	}

	cur := r.snap.Load()
	next := &snapshot{
		entries: append(append([]*Entry{}, cur.entries...), entry),
	}
	r.rebuildCaches(next)
	r.snap.Store(next)
	return id
}

// Remove removes the handler with the given id, closing it. Per §4.4, a
// removed enqueued file sink is drained and stopped before Remove returns;
// subsequent writes addressed to that id are simply absent from future
// snapshots.
func (r *Registry) Remove(id uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur := r.snap.Load()
	idx := -1
	for i, e := range cur.entries {
		if e.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}

	removed := cur.entries[idx]
	next := &snapshot{
		entries: make([]*Entry, 0, len(cur.entries)-1),
	}
	next.entries = append(next.entries, cur.entries[:idx]...)
	next.entries = append(next.entries, cur.entries[idx+1:]...)
	r.rebuildCaches(next)
	r.snap.Store(next)

	_ = removed.Handler.Close()
	return true
}

// RemoveAll removes and closes every registered handler.
func (r *Registry) RemoveAll() {
	r.mu.Lock()
	cur := r.snap.Load()
	r.snap.Store(&snapshot{})
	r.mu.Unlock()

	for _, e := range cur.entries {
		_ = e.Handler.Close()
	}
}

// Snapshot returns the current ordered view of live handlers. The returned
// slice must not be mutated; it is shared with the registry's internal
// state.
func (r *Registry) Snapshot() []*Entry {
	return r.snap.Load().entries
}

// MinLevel returns the lowest level any live handler admits, or the
// maximum possible level if no handlers are registered (nothing is
// admitted).
func (r *Registry) MinLevel() core.Level {
	return r.snap.Load().minLevel
}

// Requirements returns the aggregated collection requirements across all
// live handlers.
func (r *Registry) Requirements() core.CollectionRequirements {
	return r.snap.Load().requirements
}

// HandlerCount returns the number of live handlers.
func (r *Registry) HandlerCount() int {
	return len(r.snap.Load().entries)
}

func (r *Registry) rebuildCaches(next *snapshot) {
	if len(next.entries) == 0 {
		next.minLevel = core.Level(^uint16(0))
		next.requirements = core.CollectionRequirements{}
		return
	}
	min := next.entries[0].Level
	var reqs core.CollectionRequirements
	for _, e := range next.entries {
		if e.Level < min {
			min = e.Level
		}
		reqs = reqs.Or(e.Requirements)
	}
	next.minLevel = min
	next.requirements = reqs
}
