// Package handler defines the handler contracts (Handler, FastHandler,
// Recycler, StatsProvider, Flusher), the concurrency-safe handler Registry
// (§4.4), and the string-config parsers for rotation/retention specs (§6).
//
// Concrete sink implementations live in sibling packages: consolehandler,
// filehandler, multihandler, sloghandler, callablehandler. All of them
// implement Handler; the console, file, callable and multi handlers
// additionally implement FastHandler, which lets the synchronous variants
// skip the Entry pool on the hot path.
//
// Registry is a copy-on-write ordered collection: Add/Remove take a single
// writer-side mutex and rebuild an immutable snapshot (entries plus cached
// min level and aggregated CollectionRequirements); Snapshot/MinLevel/
// Requirements read that snapshot with a single atomic load and never
// block on the writer lock, keeping the emission hot path lock-free.
//
// When an async queue is full, each handler applies a per-level
// OverflowPolicy: DropNewest (default for low-severity levels), DropOldest,
// or Block with a configurable timeout (default for Error/Fail/Critical).
// All handlers track dropped, blocked, and processed counts via Stats,
// queryable at runtime through StatsProvider.
package handler
