package core

import "sync/atomic"

// CollectionRequirements records which optional Entry fields at least one
// live handler or callback needs populated. The emission path reads the
// engine-wide aggregate with a single atomic load and skips populating
// fields nothing demands.
type CollectionRequirements struct {
	Caller  bool
	Thread  bool
	Process bool
	Elapsed bool
}

// Or returns the field-wise OR of two requirement sets.
func (r CollectionRequirements) Or(other CollectionRequirements) CollectionRequirements {
	return CollectionRequirements{
		Caller:  r.Caller || other.Caller,
		Thread:  r.Thread || other.Thread,
		Process: r.Process || other.Process,
		Elapsed: r.Elapsed || other.Elapsed,
	}
}

// CallerMode lets a caller override the auto-detected caller requirement.
type CallerMode uint8

const (
	CallerAuto CallerMode = iota
	CallerAlways
	CallerNever
)

// Apply resolves the override against an auto-detected value.
func (m CallerMode) Apply(auto bool) bool {
	switch m {
	case CallerAlways:
		return true
	case CallerNever:
		return false
	default:
		return auto
	}
}

// RequirementsSnapshot is the atomically-swapped aggregate the handler
// registry publishes; the hot path loads it with one atomic read, mirroring
// the copy-on-write pattern used by LevelRegistry and the coarse clock.
type RequirementsSnapshot struct {
	v atomic.Pointer[CollectionRequirements]
}

// Store publishes a new aggregate requirements value.
func (s *RequirementsSnapshot) Store(r CollectionRequirements) {
	cp := r
	s.v.Store(&cp)
}

// Load reads the current aggregate requirements value.
func (s *RequirementsSnapshot) Load() CollectionRequirements {
	p := s.v.Load()
	if p == nil {
		return CollectionRequirements{}
	}
	return *p
}
