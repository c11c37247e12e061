package filehandler

import (
	"os"

	"github.com/yamaaaaaa31/logust/core"
	"github.com/yamaaaaaa31/logust/handler"
)

// SyncFileHandler is a synchronous file handler optimized for the hot path.
// It avoids async queue overhead and eliminates branches that would be needed
// to support both sync and async modes.
type SyncFileHandler struct {
	fileBase
	syncEntry core.Entry
}

// newSyncFileHandler creates a new synchronous file handler.
func newSyncFileHandler(cfg FileConfig, file *os.File, fileSize int64) *SyncFileHandler {
	h := &SyncFileHandler{}
	initFileBase(&h.fileBase, cfg, file, fileSize)
	// Pre-allocate syncEntry fields if bufferFormatter is available
	if h.bufferFormatter != nil {
		h.syncEntry.Fields = make([]core.Field, 0, 16)
	}
	return h
}

// HandleLog processes log data directly without requiring a pooled Entry.
// This avoids sync.Pool Get/Put overhead for the sync fast path.
func (h *SyncFileHandler) HandleLog(d handler.LogData) error {
	if h.bufferFormatter != nil {
		h.mu.Lock()
		if err := h.rotateIfNeeded(); err != nil {
			h.mu.Unlock()
			return err
		}
		h.syncEntry.Time = d.Time
		h.syncEntry.Level = d.Level
		h.syncEntry.Message = d.Message
		h.syncEntry.Caller = d.Caller
		h.syncEntry.Thread = d.Thread
		h.syncEntry.Process = d.Process
		h.syncEntry.Elapsed = d.Elapsed
		h.syncEntry.Extra = core.FieldsToExtra(nil, d.LoggerFields)
		h.syncEntry.Extra = core.FieldsToExtra(h.syncEntry.Extra, d.CallFields)

		h.syncBuf.Reset()
		h.bufferFormatter.FormatEntry(&h.syncEntry, &h.syncBuf)
		n, err := h.bufWriter.Write(h.syncBuf.Bytes())
		if err == nil {
			h.currentSize += int64(n)
			h.stats.IncrementProcessed()
		}
		h.mu.Unlock()
		return err
	}

	// Fallback: create a pooled entry and use Handle
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

// Handle processes a log entry synchronously.
func (h *SyncFileHandler) Handle(entry *core.Entry) error {
	return h.write(entry)
}

// CanRecycleEntry returns true because sync handler processes entries immediately.
func (h *SyncFileHandler) CanRecycleEntry() bool {
	return true
}

// Close closes the handler and the underlying file.
func (h *SyncFileHandler) Close() error {
	select {
	case <-h.closed:
		return nil // Already closed
	default:
		close(h.closed)
	}
	return h.closeFile()
}
