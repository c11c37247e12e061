package handler

import (
	"sync"
	"sync/atomic"

	"github.com/yamaaaaaa31/logust/core"
)

// OverflowPolicy defines how to handle full async queues (§7 "Channel
// full (enqueued sink)").
type OverflowPolicy int

const (
	// DropNewest drops the newest log entry when the queue is full.
	DropNewest OverflowPolicy = iota
	// DropOldest drops the oldest log entry when the queue is full.
	DropOldest
	// Block blocks the caller until space is available (with timeout).
	Block
)

// String returns the string representation of the policy.
func (p OverflowPolicy) String() string {
	switch p {
	case DropNewest:
		return "DropNewest"
	case DropOldest:
		return "DropOldest"
	case Block:
		return "Block"
	default:
		return "Unknown"
	}
}

// DefaultLevelPolicy returns the default level-based overflow policies:
// low-severity levels drop under pressure, high-severity levels block
// (bounded) rather than silently lose the record.
func DefaultLevelPolicy() map[core.Level]OverflowPolicy {
	return map[core.Level]OverflowPolicy{
		core.TraceLevel:    DropNewest,
		core.DebugLevel:    DropNewest,
		core.InfoLevel:     DropNewest,
		core.SuccessLevel:  DropNewest,
		core.WarningLevel:  DropNewest,
		core.ErrorLevel:    Block,
		core.FailLevel:     Block,
		core.CriticalLevel: Block,
	}
}

// Stats tracks per-handler throughput and overflow statistics. Dropped
// counts are per-level, using atomic counters guarded by a sync.Map so the
// registry of level numbers isn't fixed at compile time (custom levels may
// be registered at runtime).
type Stats struct {
	dropped        sync.Map // core.Level -> *atomic.Uint64
	blockedTotal   atomic.Uint64
	processedTotal atomic.Uint64
}

// NewStats creates a new Stats instance.
func NewStats() *Stats {
	return &Stats{}
}

func (s *Stats) counterFor(level core.Level) *atomic.Uint64 {
	if v, ok := s.dropped.Load(level); ok {
		return v.(*atomic.Uint64)
	}
	c := new(atomic.Uint64)
	actual, _ := s.dropped.LoadOrStore(level, c)
	return actual.(*atomic.Uint64)
}

// IncrementDropped atomically increments the dropped counter for a level.
func (s *Stats) IncrementDropped(level core.Level) {
	s.counterFor(level).Add(1)
}

// IncrementBlocked atomically increments the blocked counter.
func (s *Stats) IncrementBlocked() {
	s.blockedTotal.Add(1)
}

// IncrementProcessed atomically increments the processed counter.
func (s *Stats) IncrementProcessed() {
	s.processedTotal.Add(1)
}

// GetDropped returns the dropped count for a level.
func (s *Stats) GetDropped(level core.Level) uint64 {
	if v, ok := s.dropped.Load(level); ok {
		return v.(*atomic.Uint64).Load()
	}
	return 0
}

// GetBlocked returns the blocked count.
func (s *Stats) GetBlocked() uint64 {
	return s.blockedTotal.Load()
}

// GetProcessed returns the processed count.
func (s *Stats) GetProcessed() uint64 {
	return s.processedTotal.Load()
}

// GetTotalDropped returns the total dropped across all levels.
func (s *Stats) GetTotalDropped() uint64 {
	var total uint64
	s.dropped.Range(func(_, v interface{}) bool {
		total += v.(*atomic.Uint64).Load()
		return true
	})
	return total
}

// Reset resets all counters to zero.
func (s *Stats) Reset() {
	s.dropped.Range(func(_, v interface{}) bool {
		v.(*atomic.Uint64).Store(0)
		return true
	})
	s.blockedTotal.Store(0)
	s.processedTotal.Store(0)
}

// Snapshot is a point-in-time copy of current statistics.
type Snapshot struct {
	DroppedTotal   map[core.Level]uint64
	BlockedTotal   uint64
	ProcessedTotal uint64
}

// GetSnapshot returns a snapshot of current statistics.
func (s *Stats) GetSnapshot() Snapshot {
	dropped := make(map[core.Level]uint64)
	s.dropped.Range(func(k, v interface{}) bool {
		dropped[k.(core.Level)] = v.(*atomic.Uint64).Load()
		return true
	})
	return Snapshot{
		DroppedTotal:   dropped,
		BlockedTotal:   s.GetBlocked(),
		ProcessedTotal: s.GetProcessed(),
	}
}
