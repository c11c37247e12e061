package logger

import (
	"github.com/google/uuid"

	"github.com/yamaaaaaa31/logust/core"
	"github.com/yamaaaaaa31/logust/handler"
)

// Engine is a process-wide (or, for tests, a scoped) logging engine: a
// handler registry, the aggregated collection-requirements snapshot it
// implies, and the rate-limited fallback reporter that errors inside the
// hot path surface through (§4.9, §9 "global mutable logger singleton:
// make it explicit").
type Engine struct {
	id       string
	registry *handler.Registry
	fallback *fallbackReporter
}

// NewEngine creates a fresh engine with an empty handler registry. Most
// programs use the engine behind the package-level Default logger (or the
// private one NewBuilder creates) instead; NewEngine exists
// for tests and for processes that want fully isolated logging scopes.
func NewEngine() *Engine {
	core.StartEngineClock()
	return &Engine{
		id:       uuid.NewString(),
		registry: handler.NewRegistry(),
		fallback: newFallbackReporter(),
	}
}

// ID returns the engine's instance identifier, useful for correlating
// output from multiple engines in the same process (e.g. multi-tenant
// hosts each running their own scoped engine).
func (e *Engine) ID() string { return e.id }

// AddHandler registers a handler under spec and returns its id.
func (e *Engine) AddHandler(spec handler.Spec) uint64 {
	return e.registry.Add(spec)
}

// RemoveHandler unregisters and closes the handler with the given id.
func (e *Engine) RemoveHandler(id uint64) bool {
	return e.registry.Remove(id)
}

// MinLevel returns the lowest level any registered handler will accept;
// records below it are rejected by every handler and so can be
// short-circuited before any record is constructed.
func (e *Engine) MinLevel() core.Level {
	return e.registry.MinLevel()
}

// Requirements returns the aggregated CollectionRequirements across every
// registered handler.
func (e *Engine) Requirements() core.CollectionRequirements {
	return e.registry.Requirements()
}

// Complete flushes every registered handler that implements handler.Flusher
// (§5 complete()). Sync sinks flush their buffered writer; enqueued sinks
// drain what is already queued, within their DrainTimeout, before flushing.
func (e *Engine) Complete() error {
	var firstErr error
	for _, entry := range e.registry.Snapshot() {
		if f, ok := entry.Handler.(handler.Flusher); ok {
			if err := f.Flush(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// Shutdown closes every registered handler, draining enqueued sinks with
// their configured bounded wait, and empties the registry.
func (e *Engine) Shutdown() error {
	e.registry.RemoveAll()
	return nil
}
