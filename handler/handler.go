package handler

import (
	"time"

	"github.com/yamaaaaaa31/logust/core"
)

// Handler is the uniform contract every sink variant (console, file,
// callable, multi) implements. Handle receives a pooled Entry; the
// receiver must not retain it beyond the call unless it also takes
// ownership of returning it to the pool (see CanRecycleEntry).
type Handler interface {
	Handle(entry *core.Entry) error
	Close() error
}

// LogData is the unpacked form of the fields the emission path has decided
// to collect for one record (§4.8 step 2), handed to FastHandler
// implementations so they can format without first populating a pooled
// Entry.
type LogData struct {
	Time         time.Time
	Level        core.Level
	Message      string
	LoggerFields []core.Field
	CallFields   []core.Field
	Caller       core.CallerInfo
	Thread       core.ThreadInfo
	Process      core.ProcessInfo
	Elapsed      time.Duration
}

// FastHandler is an optional interface a handler can implement to accept
// log data directly from the emission path without the caller first
// populating a pooled Entry. Sync handlers use this to skip the pool
// entirely; async handlers implement it too, but still build a pooled Entry
// internally to enqueue.
type FastHandler interface {
	HandleLog(d LogData) error
}

// Recycler is an optional interface a handler implements to tell the
// emission path whether it is safe to return an Entry to the pool
// immediately after Handle returns. Async handlers that hand the Entry to
// a background worker must return false.
type Recycler interface {
	CanRecycleEntry() bool
}

// StatsProvider is implemented by handlers that track throughput/overflow
// statistics.
type StatsProvider interface {
	Stats() Snapshot
}

// Flusher is implemented by handlers that buffer writes and need an
// explicit flush point. Engine.Complete calls Flush on every handler that
// implements it.
type Flusher interface {
	Flush() error
}

// Filter is a predicate over a record; the handler drops the record when
// it returns false. Per §4.9, a panicking filter is caught and treated as
// "reject" — see Logger.evalFilter in the logger package.
type Filter func(entry *core.Entry) bool

// NewStoppedTimer returns a *time.Timer that has already fired, suitable
// as the zero-value starting point for the Stop/Reset/select dance used by
// the Block overflow policy (avoids allocating a fresh timer per blocked
// send).
func NewStoppedTimer() *time.Timer {
	t := time.NewTimer(0)
	if !t.Stop() {
		<-t.C
	}
	return t
}
