package formatter

import (
	"bytes"
	"io"
	"strconv"
	"time"

	"github.com/yamaaaaaa31/logust/core"
)

// JSONFormatter renders entries as canonical single-line JSON per §4.2:
// keys time, level, message, name, function, line, file, elapsed,
// thread_name, thread_id, process_name, process_id, exception, extra.
// Fields absent from the record (because collection requirements did not
// demand them) are emitted as null.
type JSONFormatter struct {
	Config
}

// NewJSONFormatter creates a new JSON formatter.
func NewJSONFormatter(cfg Config) *JSONFormatter {
	if cfg.TimestampFormat == "" {
		cfg.TimestampFormat = time.RFC3339Nano
	}
	return &JSONFormatter{Config: cfg}
}

// Format renders an entry as a single JSON line.
func (f *JSONFormatter) Format(entry *core.Entry) ([]byte, error) {
	buf := getBuffer()
	defer putBuffer(buf)
	f.formatJSONToBuffer(entry, buf)
	result := make([]byte, buf.Len())
	copy(result, buf.Bytes())
	return result, nil
}

// FormatTo renders an entry as JSON directly to w.
func (f *JSONFormatter) FormatTo(entry *core.Entry, w io.Writer) error {
	buf := getBuffer()
	f.formatJSONToBuffer(entry, buf)
	_, err := w.Write(buf.Bytes())
	putBuffer(buf)
	return err
}

// FormatEntry renders an entry as JSON into buf (BufferFormatter).
func (f *JSONFormatter) FormatEntry(entry *core.Entry, buf *bytes.Buffer) {
	f.formatJSONToBuffer(entry, buf)
}

func (f *JSONFormatter) formatJSONToBuffer(entry *core.Entry, buf *bytes.Buffer) {
	buf.WriteByte('{')

	buf.WriteString(`"time":"`)
	buf.Write(entry.Time.AppendFormat(buf.AvailableBuffer(), f.TimestampFormat))
	buf.WriteByte('"')

	buf.WriteString(`,"level":"`)
	buf.WriteString(entry.Level.String())
	buf.WriteByte('"')

	buf.WriteString(`,"message":"`)
	appendJSONString(buf, entry.Message)
	buf.WriteByte('"')

	writeNullableString(buf, "name", entry.Caller.Name, entry.Caller.Defined)
	writeNullableString(buf, "function", entry.Caller.Function, entry.Caller.Defined)
	if entry.Caller.Defined {
		buf.WriteString(`,"line":`)
		buf.Write(strconv.AppendInt(buf.AvailableBuffer(), int64(entry.Caller.Line), 10))
	} else {
		buf.WriteString(`,"line":null`)
	}
	writeNullableString(buf, "file", entry.Caller.File, entry.Caller.Defined)

	if entry.Elapsed > 0 || !core.EngineStart().IsZero() {
		buf.WriteString(`,"elapsed":"`)
		var scratch bytes.Buffer
		writeElapsed(&scratch, entry.Elapsed)
		buf.Write(scratch.Bytes())
		buf.WriteByte('"')
	} else {
		buf.WriteString(`,"elapsed":null`)
	}

	hasThread := entry.Thread.Name != "" || entry.Thread.ID != 0
	writeNullableString(buf, "thread_name", entry.Thread.Name, hasThread)
	if hasThread {
		buf.WriteString(`,"thread_id":`)
		buf.Write(strconv.AppendInt(buf.AvailableBuffer(), entry.Thread.ID, 10))
	} else {
		buf.WriteString(`,"thread_id":null`)
	}

	hasProcess := entry.Process.Name != "" || entry.Process.ID != 0
	writeNullableString(buf, "process_name", entry.Process.Name, hasProcess)
	if hasProcess {
		buf.WriteString(`,"process_id":`)
		buf.Write(strconv.AppendInt(buf.AvailableBuffer(), int64(entry.Process.ID), 10))
	} else {
		buf.WriteString(`,"process_id":null`)
	}

	writeNullableString(buf, "exception", entry.ExceptionText, entry.ExceptionText != "")

	buf.WriteString(`,"extra":{`)
	first := true
	for k, v := range entry.Extra {
		if !first {
			buf.WriteByte(',')
		}
		first = false
		buf.WriteByte('"')
		appendJSONString(buf, k)
		buf.WriteString(`":`)
		appendJSONFieldValue(buf, v)
	}
	buf.WriteByte('}')

	buf.WriteString("}\n")
}

func writeNullableString(buf *bytes.Buffer, key, value string, present bool) {
	buf.WriteString(`,"`)
	buf.WriteString(key)
	buf.WriteString(`":`)
	if !present {
		buf.WriteString("null")
		return
	}
	buf.WriteByte('"')
	appendJSONString(buf, value)
	buf.WriteByte('"')
}

// appendJSONString writes a JSON-escaped string (without surrounding quotes).
func appendJSONString(buf *bytes.Buffer, s string) {
	start := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 0x20 && c != '"' && c != '\\' {
			continue
		}
		if start < i {
			buf.WriteString(s[start:i])
		}
		switch c {
		case '"':
			buf.WriteString(`\"`)
		case '\\':
			buf.WriteString(`\\`)
		case '\n':
			buf.WriteString(`\n`)
		case '\r':
			buf.WriteString(`\r`)
		case '\t':
			buf.WriteString(`\t`)
		default:
			buf.WriteString(`\u00`)
			buf.WriteByte(hexChars[c>>4])
			buf.WriteByte(hexChars[c&0x0f])
		}
		start = i + 1
	}
	if start < len(s) {
		buf.WriteString(s[start:])
	}
}

var hexChars = [16]byte{'0', '1', '2', '3', '4', '5', '6', '7', '8', '9', 'a', 'b', 'c', 'd', 'e', 'f'}

// appendJSONFieldValue writes a JSON-encoded extra field value.
func appendJSONFieldValue(buf *bytes.Buffer, field core.Field) {
	switch field.Type {
	case core.StringType:
		buf.WriteByte('"')
		appendJSONString(buf, field.Str)
		buf.WriteByte('"')
	case core.IntType, core.Int64Type:
		buf.Write(strconv.AppendInt(buf.AvailableBuffer(), field.Int64, 10))
	case core.Float64Type:
		buf.Write(strconv.AppendFloat(buf.AvailableBuffer(), field.Float64, 'f', -1, 64))
	case core.BoolType:
		buf.Write(strconv.AppendBool(buf.AvailableBuffer(), field.Int64 == 1))
	case core.TimeType:
		buf.WriteByte('"')
		buf.Write(time.Unix(0, field.Int64).AppendFormat(buf.AvailableBuffer(), time.RFC3339Nano))
		buf.WriteByte('"')
	case core.DurationType:
		buf.WriteByte('"')
		appendJSONString(buf, time.Duration(field.Int64).String())
		buf.WriteByte('"')
	case core.ErrorType:
		buf.WriteByte('"')
		appendJSONString(buf, field.Str)
		buf.WriteByte('"')
	default:
		buf.WriteByte('"')
		appendJSONString(buf, field.StringValue())
		buf.WriteByte('"')
	}
}
