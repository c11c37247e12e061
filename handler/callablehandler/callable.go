// Package callablehandler implements the callable sink (§4.7): it renders
// a record to a string and hands it to a user-supplied function. Callable
// sinks never enqueue; ordering across calls is the caller's concern, so
// there is no async variant here the way there is for console/file.
package callablehandler

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/yamaaaaaa31/logust/core"
	"github.com/yamaaaaaa31/logust/formatter"
	"github.com/yamaaaaaa31/logust/handler"
)

// CallableFunc receives one rendered record per call.
type CallableFunc func(line string)

// CallableConfig configures a callable sink.
type CallableConfig struct {
	// Callable is invoked once per record with the rendered line.
	Callable CallableFunc
	// Formatter to use (default: TextFormatter).
	Formatter formatter.Formatter
	// TrailingNewline includes the sink's usual trailing "\n" in the string
	// handed to Callable when true. Chosen default: false — a callable
	// sink's "line" is a value the caller will typically pass straight to
	// another API (GUI widget, alert channel) that adds its own framing,
	// so a bare rendered record is more broadly useful than one carrying
	// console/file's on-disk newline convention.
	TrailingNewline bool
	// OnError receives panics recovered from Callable (default: written to
	// stderr). It must not panic itself.
	OnError func(error)
}

// CallableHandler formats each record and hands it to a user function,
// synchronously, on the producer's goroutine.
type CallableHandler struct {
	callable        CallableFunc
	formatter       formatter.Formatter
	bufferFormatter formatter.BufferFormatter
	trailingNewline bool
	onError         func(error)
	mu              sync.Mutex
	buf             bytes.Buffer
	stats           *handler.Stats
	closed          bool
}

// NewCallableHandler creates a callable sink.
func NewCallableHandler(cfg CallableConfig) *CallableHandler {
	if cfg.Formatter == nil {
		cfg.Formatter = formatter.NewTextFormatter(formatter.Config{})
	}
	if cfg.OnError == nil {
		cfg.OnError = func(err error) {
			fmt.Fprintln(os.Stderr, "logust: callable sink:", err)
		}
	}
	h := &CallableHandler{
		callable:        cfg.Callable,
		formatter:       cfg.Formatter,
		trailingNewline: cfg.TrailingNewline,
		onError:         cfg.OnError,
		stats:           handler.NewStats(),
	}
	h.bufferFormatter, _ = cfg.Formatter.(formatter.BufferFormatter)
	return h
}

// Handle renders entry and invokes the callable. A panic inside the
// callable is recovered and reported via OnError, never propagated to the
// producer.
func (h *CallableHandler) Handle(entry *core.Entry) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	var line string
	if h.bufferFormatter != nil {
		h.buf.Reset()
		h.bufferFormatter.FormatEntry(entry, &h.buf)
		line = h.buf.String()
	} else {
		data, err := h.formatter.Format(entry)
		if err != nil {
			return err
		}
		line = string(data)
	}
	// Formatters terminate their output with "\n"; keep exactly one only
	// when TrailingNewline is set.
	line = strings.TrimSuffix(line, "\n")
	if h.trailingNewline {
		line += "\n"
	}

	h.invoke(line)
	h.stats.IncrementProcessed()
	return nil
}

// HandleLog builds a pooled Entry from d and dispatches it through Handle,
// so CallableHandler participates in the emission path's FastHandler path
// even though it gains no allocation advantage from doing so.
func (h *CallableHandler) HandleLog(d handler.LogData) error {
	entry := core.GetEntry()
	entry.Time = d.Time
	entry.Level = d.Level
	entry.Message = d.Message
	entry.Caller = d.Caller
	entry.Thread = d.Thread
	entry.Process = d.Process
	entry.Elapsed = d.Elapsed
	entry.Extra = core.FieldsToExtra(entry.Extra, d.LoggerFields)
	entry.Extra = core.FieldsToExtra(entry.Extra, d.CallFields)
	err := h.Handle(entry)
	core.PutEntry(entry)
	return err
}

func (h *CallableHandler) invoke(line string) {
	defer func() {
		if r := recover(); r != nil {
			h.onError(fmt.Errorf("callable panicked: %v", r))
		}
	}()
	h.callable(line)
}

// CanRecycleEntry returns true: Handle never retains the Entry past the call.
func (h *CallableHandler) CanRecycleEntry() bool {
	return true
}

// Stats returns a snapshot of processed-record counters.
func (h *CallableHandler) Stats() handler.Snapshot {
	return h.stats.GetSnapshot()
}

// Close marks the handler closed. There is no background worker or file
// descriptor to release.
func (h *CallableHandler) Close() error {
	h.mu.Lock()
	h.closed = true
	h.mu.Unlock()
	return nil
}
