package logger

import (
	"fmt"
	"os"
	"time"

	"github.com/yamaaaaaa31/logust/core"
	"github.com/yamaaaaaa31/logust/handler"
)

// osExit is a variable to allow overriding os.Exit in tests
var osExit = os.Exit

// Logger is the producer-facing handle to an Engine (immutable after
// construction). All state — level gate, default fields, caller policy —
// is set once via Builder; With returns a new value rather than mutating
// in place, so a Logger is safe for concurrent use without locking.
type Logger struct {
	engine      *Engine
	level       core.Level
	fields      []core.Field
	callerMode  core.CallerMode
	callerSkip  int
	coarseClock bool
}

// Builder provides a fluent API for building Logger instances bound to a
// private, single-use Engine. Call AddHandler (or the WithHandler
// shorthand) at least once before Build for the logger to write anywhere.
type Builder struct {
	engine      *Engine
	level       core.Level
	fields      []core.Field
	callerMode  core.CallerMode
	callerSkip  int
	coarseClock bool
}

// NewBuilder creates a new logger builder backed by a fresh Engine.
func NewBuilder() *Builder {
	return &Builder{
		engine:     NewEngine(),
		level:      core.TraceLevel,
		callerSkip: 3,
	}
}

// WithHandler attaches h to the builder's engine, accepting every level
// the Logger's own gate admits (no per-handler filter). For per-handler
// level/filter configuration use AddHandler.
func (b *Builder) WithHandler(h handler.Handler) *Builder {
	b.engine.AddHandler(handler.Spec{Level: core.TraceLevel, Handler: h})
	return b
}

// AddHandler attaches a handler under a full spec (level, filter,
// collection-requirements override).
func (b *Builder) AddHandler(spec handler.Spec) *Builder {
	b.engine.AddHandler(spec)
	return b
}

// WithEngine binds the builder to an existing engine instead of the
// private one created by NewBuilder, so multiple Loggers can share one
// handler registry.
func (b *Builder) WithEngine(e *Engine) *Builder {
	b.engine = e
	return b
}

// WithLevel sets the logger's own admission gate, evaluated before the
// engine's per-handler levels.
func (b *Builder) WithLevel(level core.Level) *Builder {
	b.level = level
	return b
}

// WithFields adds default fields merged into every entry this logger emits.
func (b *Builder) WithFields(fields ...core.Field) *Builder {
	b.fields = append(b.fields, fields...)
	return b
}

// WithCaller forces caller capture on or off, overriding the engine's
// auto-detected requirement.
func (b *Builder) WithCaller(enabled bool) *Builder {
	if enabled {
		b.callerMode = core.CallerAlways
	} else {
		b.callerMode = core.CallerNever
	}
	return b
}

// WithCoarseClock makes the logger stamp entries using the shared
// 500µs-granularity background clock (core.CoarseNow) instead of
// time.Now(), trading timestamp precision for one fewer syscall per call
// under heavy load.
func (b *Builder) WithCoarseClock(enabled bool) *Builder {
	b.coarseClock = enabled
	if enabled {
		core.StartCoarseClock()
	}
	return b
}

// Build creates the Logger instance.
func (b *Builder) Build() *Logger {
	return &Logger{
		engine:      b.engine,
		level:       b.level,
		fields:      b.fields,
		callerMode:  b.callerMode,
		callerSkip:  b.callerSkip,
		coarseClock: b.coarseClock,
	}
}

// Engine returns the logger's bound engine, for direct AddHandler/Complete/
// Shutdown calls.
func (l *Logger) Engine() *Engine {
	return l.engine
}

// With creates a new Logger with additional default fields (immutable
// operation; l is unchanged).
func (l *Logger) With(fields ...core.Field) *Logger {
	newFields := make([]core.Field, len(l.fields)+len(fields))
	copy(newFields, l.fields)
	copy(newFields[len(l.fields):], fields)

	return &Logger{
		engine:      l.engine,
		level:       l.level,
		fields:      newFields,
		callerMode:  l.callerMode,
		callerSkip:  l.callerSkip,
		coarseClock: l.coarseClock,
	}
}

// Log logs a message at the specified level.
func (l *Logger) Log(level core.Level, msg string, fields ...core.Field) {
	l.log(level, msg, fields)
}

// log is the emission path's entry point (§4.8).
func (l *Logger) log(level core.Level, msg string, fields []core.Field) {
	// Step 1: admission. The engine's aggregated min level and the
	// logger's own gate both must admit before any allocation happens.
	min := l.level
	if engineMin := l.engine.registry.MinLevel(); engineMin > min {
		min = engineMin
	}
	if level < min {
		return
	}

	// Step 2: read the requirements snapshot and capture only what's demanded.
	reqs := l.engine.registry.Requirements()

	var t time.Time
	if l.coarseClock {
		t = core.CoarseNow()
	} else {
		t = time.Now()
	}

	var caller core.CallerInfo
	if l.callerMode.Apply(reqs.Caller) {
		caller = core.GetCaller(l.callerSkip)
	}
	var thread core.ThreadInfo
	if reqs.Thread {
		thread = currentThreadInfo()
	}
	var process core.ProcessInfo
	if reqs.Process {
		process = currentProcessInfo()
	}
	var elapsed time.Duration
	if reqs.Elapsed {
		elapsed = core.ElapsedSince(core.EngineStart())
	}

	d := handler.LogData{
		Time:         t,
		Level:        level,
		Message:      msg,
		LoggerFields: l.fields,
		CallFields:   fields,
		Caller:       caller,
		Thread:       thread,
		Process:      process,
		Elapsed:      elapsed,
	}

	l.dispatch(d)
}

// dispatch walks the registry snapshot in insertion order (§4.8 step 4),
// skipping handlers whose level or filter reject the record. A shared
// pooled Entry is built lazily, only if some handler needs filter
// evaluation or lacks the FastHandler fast path; handlers that retain the
// Entry past their call (async handlers with no FastHandler support)
// receive a private clone so their independent recycling can never race a
// sibling's use of the shared one.
func (l *Logger) dispatch(d handler.LogData) {
	entries := l.engine.registry.Snapshot()
	var shared *core.Entry

	for _, e := range entries {
		if d.Level < e.Level {
			continue
		}

		if e.Filter == nil {
			if fh, ok := e.Handler.(handler.FastHandler); ok {
				if err := fh.HandleLog(d); err != nil {
					l.engine.fallback.reportErr("sink write", err)
				}
				continue
			}
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

		if e.Filter != nil {
			passed := l.evalFilter(e.Filter, shared)
			if !passed {
				continue
			}
		}

		target := shared
		if r, ok := e.Handler.(handler.Recycler); ok && !r.CanRecycleEntry() {
			target = cloneEntry(shared)
		}
		if err := e.Handler.Handle(target); err != nil {
			l.engine.fallback.reportErr("sink write", err)
		}
	}

	if shared != nil {
		core.PutEntry(shared)
	}
}

// evalFilter runs a handler's filter predicate, treating a panic as
// "reject" (§4.9, §9 "exceptions from user callables: treat as data").
func (l *Logger) evalFilter(f handler.Filter, entry *core.Entry) (passed bool) {
	defer func() {
		if r := recover(); r != nil {
			l.engine.fallback.report(fmt.Sprintf("filter panicked: %v", r))
			passed = false
		}
	}()
	return f(entry)
}

// cloneEntry returns a private pooled Entry carrying the same values as
// src, for handing to a handler that takes ownership of its own copy.
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

// Trace logs a trace-level message.
func (l *Logger) Trace(msg string, fields ...core.Field) { l.log(core.TraceLevel, msg, fields) }

// Debug logs a debug message.
func (l *Logger) Debug(msg string, fields ...core.Field) { l.log(core.DebugLevel, msg, fields) }

// Info logs an info message.
func (l *Logger) Info(msg string, fields ...core.Field) { l.log(core.InfoLevel, msg, fields) }

// Success logs a success message.
func (l *Logger) Success(msg string, fields ...core.Field) { l.log(core.SuccessLevel, msg, fields) }

// Warning logs a warning message.
func (l *Logger) Warning(msg string, fields ...core.Field) { l.log(core.WarningLevel, msg, fields) }

// Error logs an error message.
func (l *Logger) Error(msg string, fields ...core.Field) { l.log(core.ErrorLevel, msg, fields) }

// Fail logs a fail-level message.
func (l *Logger) Fail(msg string, fields ...core.Field) { l.log(core.FailLevel, msg, fields) }

// Critical logs a critical message.
func (l *Logger) Critical(msg string, fields ...core.Field) { l.log(core.CriticalLevel, msg, fields) }

// Fatal logs a critical message and exits the program with os.Exit(1). Not
// part of the level registry itself (only CriticalLevel is) — a thin
// convenience on top of it, in the same spirit as the level helpers above.
func (l *Logger) Fatal(msg string, fields ...core.Field) {
	l.log(core.CriticalLevel, msg, fields)
	_ = l.engine.Complete()
	osExit(1)
}

// Panic logs a fail-level message and panics.
func (l *Logger) Panic(msg string, fields ...core.Field) {
	l.log(core.FailLevel, msg, fields)
	panic(msg)
}

// Tracef logs a trace message with formatting.
func (l *Logger) Tracef(format string, args ...interface{}) {
	l.log(core.TraceLevel, fmt.Sprintf(format, args...), nil)
}

// Debugf logs a debug message with formatting.
func (l *Logger) Debugf(format string, args ...interface{}) {
	l.log(core.DebugLevel, fmt.Sprintf(format, args...), nil)
}

// Infof logs an info message with formatting.
func (l *Logger) Infof(format string, args ...interface{}) {
	l.log(core.InfoLevel, fmt.Sprintf(format, args...), nil)
}

// Warningf logs a warning message with formatting.
func (l *Logger) Warningf(format string, args ...interface{}) {
	l.log(core.WarningLevel, fmt.Sprintf(format, args...), nil)
}

// Errorf logs an error message with formatting.
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.log(core.ErrorLevel, fmt.Sprintf(format, args...), nil)
}

// Fatalf logs a formatted message at CriticalLevel and exits the program.
func (l *Logger) Fatalf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	l.log(core.CriticalLevel, msg, nil)
	_ = l.engine.Complete()
	osExit(1)
}

// Panicf logs a formatted message at FailLevel and panics.
func (l *Logger) Panicf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	l.log(core.FailLevel, msg, nil)
	panic(msg)
}

// Complete flushes the logger's engine (see Engine.Complete).
func (l *Logger) Complete() error {
	return l.engine.Complete()
}

// Close shuts down the logger's engine, closing every registered handler.
func (l *Logger) Close() error {
	return l.engine.Shutdown()
}
