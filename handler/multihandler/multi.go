package multihandler

import (
	"github.com/yamaaaaaa31/logust/core"
	"github.com/yamaaaaaa31/logust/handler"
)

// MultiHandler fans a single Handle/HandleLog call out to every child
// handler in registration order. It implements Handler and, when every
// child also implements FastHandler, handler.FastHandler as well, so the
// emission path can skip Entry pooling even behind a fan-out.
type MultiHandler struct {
	children []handler.Handler
	fastPath []handler.FastHandler // same length/order as children; nil entries for non-fast children
	retains  []bool                // child i retains the Entry beyond Handle (async children)
}

// NewMultiHandler returns a handler that dispatches to each of children in
// order. A child's error is collected but does not stop dispatch to the
// remaining children.
func NewMultiHandler(children ...handler.Handler) *MultiHandler {
	m := &MultiHandler{
		children: children,
		fastPath: make([]handler.FastHandler, len(children)),
		retains:  make([]bool, len(children)),
	}
	for i, c := range children {
		if fh, ok := c.(handler.FastHandler); ok {
			m.fastPath[i] = fh
		}
		if r, ok := c.(handler.Recycler); ok {
			m.retains[i] = !r.CanRecycleEntry()
		}
	}
	return m
}

// Handle dispatches entry to every child, returning the first error
// encountered (after still attempting all children). Children that retain
// the Entry beyond the call (async handlers) receive a private copy so
// their independent pool-return timing can never race with a sibling
// child's use of the shared original.
func (m *MultiHandler) Handle(entry *core.Entry) error {
	var firstErr error
	for i, c := range m.children {
		target := entry
		if m.retains[i] {
			target = cloneEntry(entry)
		}
		if err := c.Handle(target); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// cloneEntry returns a private pooled Entry carrying the same field values
// as src, for handing to a child that takes ownership of its own copy.
func cloneEntry(src *core.Entry) *core.Entry {
	dst := core.GetEntry()
	*dst = *src
	dst.Fields = append(dst.Fields[:0], src.Fields...)
	if src.Extra != nil {
		dst.Extra = make(map[string]core.Field, len(src.Extra))
		for k, v := range src.Extra {
			dst.Extra[k] = v
		}
	}
	return dst
}

// HandleLog dispatches log data directly to children implementing
// FastHandler, and via a pooled Entry to the rest. Implementing FastHandler
// lets MultiHandler participate in the emission path's zero-Entry-pool fast
// path when every child supports it.
func (m *MultiHandler) HandleLog(d handler.LogData) error {
	var firstErr error
	var shared *core.Entry
	for i, c := range m.children {
		if fh := m.fastPath[i]; fh != nil {
			if err := fh.HandleLog(d); err != nil && firstErr == nil {
				firstErr = err
			}
			continue
		}
		if shared == nil {
			shared = core.GetEntry()
			shared.Time = d.Time
			shared.Level = d.Level
			shared.Message = d.Message
			shared.Caller = d.Caller
			shared.Thread = d.Thread
			shared.Process = d.Process
			shared.Elapsed = d.Elapsed
			shared.Extra = core.FieldsToExtra(shared.Extra, d.LoggerFields)
			shared.Extra = core.FieldsToExtra(shared.Extra, d.CallFields)
		}
		target := shared
		if m.retains[i] {
			target = cloneEntry(shared)
		}
		if err := c.Handle(target); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if shared != nil {
		core.PutEntry(shared)
	}
	return firstErr
}

// CanRecycleEntry returns true: any child that retains its Entry beyond
// Handle (an async child with no FastHandler support) is always handed a
// private clone, never the caller's Entry, so the caller's own Entry is
// always safe to recycle immediately after Handle/HandleLog returns.
func (m *MultiHandler) CanRecycleEntry() bool {
	return true
}

// Flush flushes every child that implements handler.Flusher, returning the
// first error encountered. Lets Engine.Complete reach the buffered/enqueued
// sinks behind a fan-out the same way it reaches a standalone one.
func (m *MultiHandler) Flush() error {
	var firstErr error
	for _, c := range m.children {
		if f, ok := c.(handler.Flusher); ok {
			if err := f.Flush(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// Close closes every child, returning the first error encountered.
func (m *MultiHandler) Close() error {
	var firstErr error
	for _, c := range m.children {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
