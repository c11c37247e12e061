package formatter

import (
	"bytes"
	"io"
	"sync"

	"github.com/yamaaaaaa31/logust/core"
)

// Formatter defines the interface for log formatters.
type Formatter interface {
	// Format renders an entry into bytes, including the trailing newline.
	Format(entry *core.Entry) ([]byte, error)
}

// WriterFormatter is an optional interface that formatters can implement
// to write directly to a writer without intermediate byte slice allocation.
type WriterFormatter interface {
	FormatTo(entry *core.Entry, w io.Writer) error
}

// BufferFormatter is an optional interface that formatters can implement
// to format directly into a caller-provided buffer, avoiding internal
// buffer pool overhead.
type BufferFormatter interface {
	FormatEntry(entry *core.Entry, buf *bytes.Buffer)
}

// Config holds formatter configuration common to text and JSON rendering.
type Config struct {
	// Template is the format string compiled into a Plan (text mode only;
	// see §4.2). Defaults to "{time} [{level}] {message}" when empty.
	Template string
	// TimestampFormat is the Go reference layout used for {time} and the
	// JSON "time" field. Defaults to time.RFC3339 for TextFormatter and
	// time.RFC3339Nano for JSONFormatter.
	TimestampFormat string
	// Colorize enables inline <tag>...</tag> markup resolution within the
	// rendered message and level bracket. Stripped (not colorized) when
	// false.
	Colorize bool
	// IncludeExtra appends `key=value` pairs (text mode) for every Extra
	// field not referenced by name in the template.
	IncludeExtra bool
}

// bufferPool is a pool of bytes.Buffer to reduce allocations.
var bufferPool = &sync.Pool{
	New: func() interface{} {
		b := new(bytes.Buffer)
		b.Grow(256)
		return b
	},
}

func getBuffer() *bytes.Buffer {
	buf := bufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	return buf
}

func putBuffer(buf *bytes.Buffer) {
	if buf.Cap() > 64*1024 {
		return
	}
	bufferPool.Put(buf)
}
