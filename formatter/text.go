package formatter

import (
	"bytes"
	"io"
	"strconv"
	"time"

	"github.com/yamaaaaaa31/logust/core"
)

const defaultTemplate = "{time} [{level}] {message}"

// TextFormatter renders entries through a compiled Plan (§4.2). It
// implements Formatter, WriterFormatter, and BufferFormatter.
type TextFormatter struct {
	Config
	plan *Plan
}

// NewTextFormatter compiles cfg.Template (or the default) into a Plan and
// returns a ready-to-use formatter.
func NewTextFormatter(cfg Config) *TextFormatter {
	if cfg.TimestampFormat == "" {
		cfg.TimestampFormat = time.RFC3339
	}
	template := cfg.Template
	if template == "" {
		template = defaultTemplate
	}
	return &TextFormatter{Config: cfg, plan: Compile(template)}
}

// Plan returns the compiled format plan, used by the collection
// requirements analyzer and the handler registry.
func (f *TextFormatter) Plan() *Plan { return f.plan }

// Format renders an entry as text.
func (f *TextFormatter) Format(entry *core.Entry) ([]byte, error) {
	buf := getBuffer()
	defer putBuffer(buf)
	f.formatToBuffer(entry, buf)
	result := make([]byte, buf.Len())
	copy(result, buf.Bytes())
	return result, nil
}

// FormatTo renders an entry and writes it directly to w.
func (f *TextFormatter) FormatTo(entry *core.Entry, w io.Writer) error {
	buf := getBuffer()
	f.formatToBuffer(entry, buf)
	_, err := w.Write(buf.Bytes())
	putBuffer(buf)
	return err
}

// FormatEntry renders an entry into the given buffer (BufferFormatter).
func (f *TextFormatter) FormatEntry(entry *core.Entry, buf *bytes.Buffer) {
	f.formatToBuffer(entry, buf)
}

func (f *TextFormatter) formatToBuffer(entry *core.Entry, buf *bytes.Buffer) {
	var scratch bytes.Buffer
	referenced := make(map[string]bool)

	for _, s := range f.plan.steps {
		if !s.isField {
			buf.WriteString(s.literal)
			continue
		}

		scratch.Reset()
		f.renderField(entry, s, &scratch)
		if s.kind == KindExtra {
			referenced[s.key] = true
		}

		if s.width == 0 || s.align == AlignNone {
			buf.Write(scratch.Bytes())
			continue
		}
		pad := s.width - scratch.Len()
		if pad <= 0 {
			buf.Write(scratch.Bytes())
			continue
		}
		if s.align == AlignLeft {
			buf.Write(scratch.Bytes())
			writeSpaces(buf, pad)
		} else {
			writeSpaces(buf, pad)
			buf.Write(scratch.Bytes())
		}
	}

	if f.IncludeExtra {
		for k, v := range entry.Extra {
			if referenced[k] {
				continue
			}
			buf.WriteByte(' ')
			buf.WriteString(k)
			buf.WriteByte('=')
			buf.WriteString(v.StringValue())
		}
	}

	buf.WriteByte('\n')
}

func writeSpaces(buf *bytes.Buffer, n int) {
	for i := 0; i < n; i++ {
		buf.WriteByte(' ')
	}
}

// renderField writes the plain-text (pre-padding) rendering of one field
// step into dst, applying color markup resolution on message/level when
// Colorize is enabled.
func (f *TextFormatter) renderField(entry *core.Entry, s step, dst *bytes.Buffer) {
	switch s.kind {
	case KindTime:
		dst.Write(entry.Time.AppendFormat(dst.AvailableBuffer(), f.TimestampFormat))
	case KindLevel:
		name := entry.Level.String()
		if f.Colorize {
			if info, ok := core.DefaultRegistry().LookupByNo(entry.Level); ok {
				if esc := levelAnsi(info.Color); esc != "" {
					dst.WriteString(esc)
					dst.WriteString(name)
					dst.WriteString(ansiReset)
					return
				}
			}
		}
		dst.WriteString(name)
	case KindMessage:
		ApplyColorMarkup(entry.Message, f.Colorize, dst)
	case KindName:
		dst.WriteString(entry.Caller.Name)
	case KindFunction:
		dst.WriteString(entry.Caller.Function)
	case KindLine:
		dst.Write(strconv.AppendInt(dst.AvailableBuffer(), int64(entry.Caller.Line), 10))
	case KindFile:
		dst.WriteString(entry.Caller.File)
	case KindElapsed:
		writeElapsed(dst, entry.Elapsed)
	case KindThread:
		if entry.Thread.Name != "" {
			dst.WriteString(entry.Thread.Name)
		} else {
			dst.Write(strconv.AppendInt(dst.AvailableBuffer(), entry.Thread.ID, 10))
		}
	case KindProcess:
		if entry.Process.Name != "" {
			dst.WriteString(entry.Process.Name)
		} else {
			dst.Write(strconv.AppendInt(dst.AvailableBuffer(), int64(entry.Process.ID), 10))
		}
	case KindExtra:
		if entry.Extra != nil {
			if v, ok := entry.Extra[s.key]; ok {
				dst.WriteString(v.StringValue())
			}
		}
	default:
		// unknownKind: render nothing.
	}
}

// writeElapsed renders d as HH:MM:SS.mmm, per §4.2 "Elapsed is rendered
// as HH:MM:SS.mmm".
func writeElapsed(dst *bytes.Buffer, d time.Duration) {
	if d < 0 {
		d = 0
	}
	total := d.Milliseconds()
	ms := total % 1000
	totalSec := total / 1000
	s := totalSec % 60
	m := (totalSec / 60) % 60
	h := totalSec / 3600

	writePadded2(dst, h)
	dst.WriteByte(':')
	writePadded2(dst, m)
	dst.WriteByte(':')
	writePadded2(dst, s)
	dst.WriteByte('.')
	writePadded3(dst, ms)
}

func writePadded2(dst *bytes.Buffer, v int64) {
	if v < 10 {
		dst.WriteByte('0')
	}
	dst.Write(strconv.AppendInt(dst.AvailableBuffer(), v, 10))
}

func writePadded3(dst *bytes.Buffer, v int64) {
	if v < 100 {
		dst.WriteByte('0')
	}
	if v < 10 {
		dst.WriteByte('0')
	}
	dst.Write(strconv.AppendInt(dst.AvailableBuffer(), v, 10))
}
