package filehandler

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/klauspost/compress/gzip"

	"github.com/yamaaaaaa31/logust/core"
	"github.com/yamaaaaaa31/logust/formatter"
	"github.com/yamaaaaaa31/logust/handler"
)

// sizeTrackingWriter wraps an io.Writer and tracks total bytes written
type sizeTrackingWriter struct {
	w       io.Writer
	written int64
}

func (s *sizeTrackingWriter) Write(p []byte) (n int, err error) {
	n, err = s.w.Write(p)
	s.written += int64(n)
	return
}

func (s *sizeTrackingWriter) reset(w io.Writer) {
	s.w = w
	s.written = 0
}

// fileBase contains shared fields and methods for file handlers. Rotation
// and retention follow the policies described in handler.RotationPolicy and
// handler.RetentionPolicy; the active file itself is never touched by
// retention or compression, only rotated siblings.
type fileBase struct {
	filename        string
	stem            string // filename with extension stripped
	ext             string
	file            *os.File
	bufWriter       *bufio.Writer
	sizeWriter      *sizeTrackingWriter
	formatter       formatter.Formatter
	writerFormatter formatter.WriterFormatter
	bufferFormatter formatter.BufferFormatter
	mu              sync.Mutex
	syncBuf         bytes.Buffer
	rotation        handler.RotationPolicy
	retention       handler.RetentionPolicy
	compress        bool
	currentSize     int64
	currentPeriod   string // populated for Daily/Hourly, the active period's tag
	stats           *handler.Stats
	closed          chan struct{}
}

// write formats and writes an entry
func (b *fileBase) write(entry *core.Entry) error {
	// BufferFormatter fast path: format into handler-owned buffer, write to bufio.Writer.
	// Avoids buffer pool get/put overhead.
	if b.bufferFormatter != nil {
		b.mu.Lock()
		if err := b.rotateIfNeeded(); err != nil {
			b.mu.Unlock()
			return err
		}

		b.syncBuf.Reset()
		b.bufferFormatter.FormatEntry(entry, &b.syncBuf)
		n, err := b.bufWriter.Write(b.syncBuf.Bytes())
		if err == nil {
			b.currentSize += int64(n)
			b.stats.IncrementProcessed()
		}
		b.mu.Unlock()
		return err
	}

	if b.writerFormatter != nil {
		b.mu.Lock()
		if err := b.rotateIfNeeded(); err != nil {
			b.mu.Unlock()
			return err
		}

		prevFlushed := b.sizeWriter.written
		prevBuffered := b.bufWriter.Buffered()
		err := b.writerFormatter.FormatTo(entry, b.bufWriter)
		if err == nil {
			written := (b.sizeWriter.written - prevFlushed) + int64(b.bufWriter.Buffered()-prevBuffered)
			b.currentSize += written
			b.stats.IncrementProcessed()
		}
		b.mu.Unlock()
		return err
	}

	data, err := b.formatter.Format(entry)
	if err != nil {
		return err
	}

	b.mu.Lock()
	if err := b.rotateIfNeeded(); err != nil {
		b.mu.Unlock()
		return err
	}

	n, err := b.bufWriter.Write(data)
	if err == nil {
		b.currentSize += int64(n)
		b.stats.IncrementProcessed()
	}
	b.mu.Unlock()

	return err
}

// periodTag returns the rotation tag for t under the configured time-based
// policy ("" if the policy isn't time-based).
func (b *fileBase) periodTag(t time.Time) string {
	switch b.rotation.Kind {
	case handler.RotationDaily:
		return t.Format("2006-01-02")
	case handler.RotationHourly:
		return t.Format("2006-01-02_15")
	default:
		return ""
	}
}

// rotateIfNeeded checks and performs rotation if needed. Caller holds b.mu.
func (b *fileBase) rotateIfNeeded() error {
	switch b.rotation.Kind {
	case handler.RotationNever:
		return nil
	case handler.RotationSize:
		if b.currentSize >= b.rotation.SizeBytes {
			return b.rotate("")
		}
		return nil
	case handler.RotationDaily, handler.RotationHourly:
		tag := b.periodTag(time.Now())
		if tag != b.currentPeriod {
			departing := b.currentPeriod
			b.currentPeriod = tag
			return b.rotate(departing)
		}
		return nil
	default:
		return nil
	}
}

// rotate performs the actual file rotation. For time-based policies, tag is
// the departing period's tag; for size-based rotation, tag is empty and a
// fresh ordinal is computed. Caller holds b.mu.
func (b *fileBase) rotate(tag string) error {
	if err := b.bufWriter.Flush(); err != nil {
		return err
	}
	if err := b.file.Sync(); err != nil {
		return err
	}
	if err := b.file.Close(); err != nil {
		return err
	}

	if tag == "" && b.rotation.Kind == handler.RotationSize {
		tag = strconv.Itoa(b.nextSizeOrdinal())
	}
	rotatedName := fmt.Sprintf("%s.%s%s", b.stem, tag, b.ext)

	if err := os.Rename(b.filename, rotatedName); err != nil {
		// If rename fails, try to reopen the original file so future
		// writes still land somewhere rather than erroring forever.
		file, openErr := os.OpenFile(b.filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if openErr != nil {
			return fmt.Errorf("rotation failed: %v, reopen failed: %v", err, openErr)
		}
		b.file = file
		b.sizeWriter.reset(file)
		b.bufWriter.Reset(b.sizeWriter)
		return err
	}

	file, err := os.OpenFile(b.filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}

	b.file = file
	b.sizeWriter.reset(file)
	b.bufWriter.Reset(b.sizeWriter)
	b.currentSize = 0

	go b.finishRotation(rotatedName)

	return nil
}

// finishRotation runs compression and retention cleanup on a background
// goroutine; these only ever touch rotated siblings, never the active file.
func (b *fileBase) finishRotation(rotatedName string) {
	if b.compress {
		if compressed, err := gzipFile(rotatedName); err == nil {
			rotatedName = compressed
		}
		// Compression failure: the uncompressed rotated file is left in
		// place and still counts toward retention below.
	}
	b.applyRetention()
}

// gzipFile compresses path to path+".gz" and removes the original,
// returning the new path.
func gzipFile(path string) (string, error) {
	src, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer src.Close()

	dstPath := path + ".gz"
	dst, err := os.OpenFile(dstPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return "", err
	}

	gw := gzip.NewWriter(dst)
	_, copyErr := io.Copy(gw, src)
	closeErr := gw.Close()
	dst.Close()
	if copyErr != nil || closeErr != nil {
		os.Remove(dstPath)
		if copyErr != nil {
			return "", copyErr
		}
		return "", closeErr
	}

	if err := os.Remove(path); err != nil {
		return "", err
	}
	return dstPath, nil
}

// nextSizeOrdinal computes the next free ordinal for size-based rotation by
// scanning existing rotated siblings. Collisions after a process restart
// (an ordinal already on disk) are resolved by skipping to the next free
// one rather than overwriting.
func (b *fileBase) nextSizeOrdinal() int {
	max := 0
	for _, ord := range b.rotatedOrdinals() {
		if ord > max {
			max = ord
		}
	}
	return max + 1
}

func (b *fileBase) rotatedOrdinals() []int {
	matches := b.rotatedSiblings()
	var ords []int
	prefix := filepath.Base(b.stem) + "."
	for _, m := range matches {
		name := filepath.Base(m)
		name = strings.TrimSuffix(name, ".gz")
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		rest := strings.TrimPrefix(name, prefix)
		rest = strings.TrimSuffix(rest, b.ext)
		if n, err := strconv.Atoi(rest); err == nil {
			ords = append(ords, n)
		}
	}
	return ords
}

// rotatedSiblings returns all files matching this handler's rotated-name
// pattern, compressed or not.
func (b *fileBase) rotatedSiblings() []string {
	pattern := b.stem + ".*" + b.ext + "*"
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil
	}
	var out []string
	for _, m := range matches {
		if m == b.filename {
			continue
		}
		out = append(out, m)
	}
	return out
}

// applyRetention deletes rotated siblings in excess of the configured
// retention policy. Deletion failures are swallowed: a best-effort cleanup
// must never fail the write path.
func (b *fileBase) applyRetention() {
	switch b.retention.Kind {
	case handler.RetentionByCount:
		siblings := b.rotatedSiblings()
		if b.retention.Count <= 0 || len(siblings) <= b.retention.Count {
			return
		}
		sort.Slice(siblings, func(i, j int) bool {
			infoI, errI := os.Stat(siblings[i])
			infoJ, errJ := os.Stat(siblings[j])
			if errI != nil || errJ != nil {
				return false
			}
			return infoI.ModTime().Before(infoJ.ModTime())
		})
		excess := siblings[:len(siblings)-b.retention.Count]
		for _, f := range excess {
			os.Remove(f)
		}

	case handler.RetentionByAge:
		cutoff := time.Now().Add(-b.retention.Age)
		for _, f := range b.rotatedSiblings() {
			info, err := os.Stat(f)
			if err != nil {
				continue
			}
			if info.ModTime().Before(cutoff) {
				os.Remove(f)
			}
		}

	case handler.RetentionNone:
		return
	}
}

// Stats returns a snapshot of the current statistics
func (b *fileBase) Stats() handler.Snapshot {
	return b.stats.GetSnapshot()
}

// Flush flushes the buffered writer without closing the file.
func (b *fileBase) Flush() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.bufWriter.Flush()
}

// closeFile flushes, syncs and closes the underlying file.
func (b *fileBase) closeFile() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.file != nil {
		flushErr := b.bufWriter.Flush()
		if flushErr != nil {
			b.file.Close()
			return flushErr
		}
		syncErr := b.file.Sync()
		if syncErr != nil {
			b.file.Close()
			return syncErr
		}
		return b.file.Close()
	}

	return nil
}

// FileConfig holds configuration for file handler
type FileConfig struct {
	// Filename is the path to the log file
	Filename string
	// Formatter to use (default: TextFormatter)
	Formatter formatter.Formatter
	// Async enables asynchronous logging (default: false)
	Async bool
	// BufferSize is the size of the async queue (default: 1000)
	BufferSize int
	// Rotation selects the rotation policy (default: RotationNever)
	Rotation handler.RotationPolicy
	// Retention selects the cleanup policy applied to rotated files
	// (default: RetentionNone)
	Retention handler.RetentionPolicy
	// Compress gzips each rotated file in place once it is closed.
	Compress bool
	// OverflowPolicy defines per-level overflow behavior (default: uses DefaultLevelPolicy)
	OverflowPolicy map[core.Level]handler.OverflowPolicy
	// BlockTimeout is the timeout for blocking overflow policy (default: 100ms)
	BlockTimeout time.Duration
	// DrainTimeout is the timeout for draining queue on Close (default: 5s)
	DrainTimeout time.Duration
}

// applyFileDefaults fills in zero-value fields with defaults.
func applyFileDefaults(cfg *FileConfig) {
	if cfg.Formatter == nil {
		cfg.Formatter = formatter.NewTextFormatter(formatter.Config{})
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1000
	}
	if cfg.OverflowPolicy == nil {
		cfg.OverflowPolicy = handler.DefaultLevelPolicy()
	}
	if cfg.BlockTimeout == 0 {
		cfg.BlockTimeout = 100 * time.Millisecond
	}
	if cfg.DrainTimeout == 0 {
		cfg.DrainTimeout = 5 * time.Second
	}
}

// initFileBase initializes a fileBase in place with the given config and opened file.
func initFileBase(b *fileBase, cfg FileConfig, file *os.File, fileSize int64) {
	sw := &sizeTrackingWriter{w: file}
	b.filename = cfg.Filename
	b.ext = filepath.Ext(cfg.Filename)
	b.stem = strings.TrimSuffix(cfg.Filename, b.ext)
	b.file = file
	b.sizeWriter = sw
	b.bufWriter = bufio.NewWriterSize(sw, 4096)
	b.formatter = cfg.Formatter
	b.rotation = cfg.Rotation
	b.retention = cfg.Retention
	b.compress = cfg.Compress
	b.currentSize = fileSize
	if b.rotation.Kind == handler.RotationDaily || b.rotation.Kind == handler.RotationHourly {
		b.currentPeriod = b.periodTag(time.Now())
	}
	b.closed = make(chan struct{})
	b.stats = handler.NewStats()

	// Cache WriterFormatter for zero-alloc path
	b.writerFormatter, _ = cfg.Formatter.(formatter.WriterFormatter)

	// Cache BufferFormatter for sync fast path (avoids buffer pool + direct bufio write)
	b.bufferFormatter, _ = cfg.Formatter.(formatter.BufferFormatter)

	// Pre-grow sync buffer for handler-owned format path
	if b.bufferFormatter != nil {
		b.syncBuf.Grow(256)
	}
}

// NewFileHandler creates a new file handler.
// Returns a SyncFileHandler when Async is false, or an AsyncFileHandler
// when Async is true. Both implement Handler, FastHandler, and StatsProvider.
func NewFileHandler(cfg FileConfig) (handler.Handler, error) {
	if cfg.Filename == "" {
		return nil, fmt.Errorf("filename is required")
	}
	applyFileDefaults(&cfg)

	// Create directory if it doesn't exist
	dir := filepath.Dir(cfg.Filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	// Open file
	file, err := os.OpenFile(cfg.Filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}

	// Get file size
	info, err := file.Stat()
	if err != nil {
		closeErr := file.Close()
		if closeErr != nil {
			return nil, closeErr
		}
		return nil, err
	}

	if cfg.Async {
		return newAsyncFileHandler(cfg, file, info.Size()), nil
	}
	return newSyncFileHandler(cfg, file, info.Size()), nil
}
