package filehandler

import (
	"bufio"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/yamaaaaaa31/logust/core"
	"github.com/yamaaaaaa31/logust/handler"
)

func writeN(t *testing.T, h handler.Handler, n int, msg string) {
	t.Helper()
	for i := 0; i < n; i++ {
		entry := core.GetEntry()
		entry.Level = core.InfoLevel
		entry.Message = msg
		if err := h.Handle(entry); err != nil {
			t.Fatalf("Handle: %v", err)
		}
	}
}

func TestFileHandler_SizeRotationAndCountRetention(t *testing.T) {
	dir := t.TempDir()
	filename := filepath.Join(dir, "test.log")

	h, err := NewFileHandler(FileConfig{
		Filename:  filename,
		Async:     false,
		Rotation:  handler.RotationPolicy{Kind: handler.RotationSize, SizeBytes: 64},
		Retention: handler.RetentionPolicy{Kind: handler.RetentionByCount, Count: 2},
	})
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	writeN(t, h, 200, "this is a test message long enough to trigger rotation repeatedly")

	// Retention cleanup runs on a background goroutine per rotation.
	deadline := time.Now().Add(2 * time.Second)
	var siblings []string
	for time.Now().Before(deadline) {
		siblings, _ = filepath.Glob(filepath.Join(dir, "test.*.log"))
		if len(siblings) <= 2 {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}

	if len(siblings) == 0 {
		t.Fatal("expected at least one rotated file")
	}
	if len(siblings) > 2 {
		t.Errorf("expected retention to keep at most 2 rotated files, found %d: %v", len(siblings), siblings)
	}
}

func TestFileHandler_Compression(t *testing.T) {
	dir := t.TempDir()
	filename := filepath.Join(dir, "test.log")

	h, err := NewFileHandler(FileConfig{
		Filename: filename,
		Async:    false,
		Rotation: handler.RotationPolicy{Kind: handler.RotationSize, SizeBytes: 64},
		Compress: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	writeN(t, h, 30, "message long enough to trigger at least one rotation cycle")

	deadline := time.Now().Add(2 * time.Second)
	var gz []string
	for time.Now().Before(deadline) {
		gz, _ = filepath.Glob(filepath.Join(dir, "test.*.log.gz"))
		if len(gz) > 0 {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}

	if len(gz) == 0 {
		t.Fatal("expected at least one gzip-compressed rotated file")
	}
}

func TestFileHandler_DailyRotation(t *testing.T) {
	dir := t.TempDir()
	filename := filepath.Join(dir, "test.log")

	h, err := NewFileHandler(FileConfig{
		Filename: filename,
		Async:    false,
		Rotation: handler.RotationPolicy{Kind: handler.RotationDaily},
	})
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	writeN(t, h, 1, "first")

	sh := h.(*SyncFileHandler)
	sh.currentPeriod = "2000-01-01" // force the active file to look like a stale period

	writeN(t, h, 1, "second")

	siblings, _ := filepath.Glob(filepath.Join(dir, "test.2000-01-01.log"))
	if len(siblings) != 1 {
		t.Errorf("expected the departing period's rotated file to exist, found: %v", siblings)
	}
}

func TestFileHandler_SyncOnClose(t *testing.T) {
	dir := t.TempDir()
	filename := filepath.Join(dir, "test.log")

	h, err := NewFileHandler(FileConfig{
		Filename: filename,
		Async:    false,
	})
	if err != nil {
		t.Fatal(err)
	}

	writeN(t, h, 1, "test")

	if err := h.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(data) == 0 {
		t.Error("expected the log file to contain the written entry after Close")
	}
}

func TestFileHandler_Flush(t *testing.T) {
	dir := t.TempDir()
	filename := filepath.Join(dir, "test.log")

	h, err := NewFileHandler(FileConfig{
		Filename: filename,
		Async:    false,
	})
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	writeN(t, h, 1, "flushed entry")

	f, ok := h.(handler.Flusher)
	if !ok {
		t.Fatal("sync file handler should implement handler.Flusher")
	}
	if err := f.Flush(); err != nil {
		t.Errorf("Flush failed: %v", err)
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(data) == 0 {
		t.Error("expected the log file to contain the flushed entry")
	}
}

// TestFileHandler_AsyncFlushDrainsQueue exercises the §8 scenario 6
// no-drop property: concurrent producers feed an enqueued sink, and Flush
// (what Engine.Complete calls) must observe every record that was queued
// before it was called.
func TestFileHandler_AsyncFlushDrainsQueue(t *testing.T) {
	dir := t.TempDir()
	filename := filepath.Join(dir, "test.log")

	h, err := NewFileHandler(FileConfig{
		Filename:   filename,
		Async:      true,
		BufferSize: 1024,
		OverflowPolicy: map[core.Level]handler.OverflowPolicy{
			core.InfoLevel: handler.Block,
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	const producers = 4
	const perProducer = 2500

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				entry := core.GetEntry()
				entry.Level = core.InfoLevel
				entry.Message = "m"
				_ = h.Handle(entry)
			}
		}(p)
	}
	wg.Wait()

	f, ok := h.(handler.Flusher)
	if !ok {
		t.Fatal("async file handler should implement handler.Flusher")
	}
	if err := f.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	file, err := os.Open(filename)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer file.Close()

	lines := 0
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		lines++
	}

	want := producers * perProducer
	if lines != want {
		t.Errorf("expected %d lines after Flush, got %d", want, lines)
	}
}
