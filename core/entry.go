package core

import (
	"path/filepath"
	"runtime"
	"sync"
	"time"
)

// Entry is a LogRecord: the unit that flows through the pipeline from
// emission to sink. Time is captured at emission with millisecond
// precision; Elapsed is monotonic time since engine initialization.
// Caller, Thread, Process and ExceptionText are populated only when the
// engine-wide CollectionRequirements demand them; otherwise they carry
// their zero value and must not be rendered.
type Entry struct {
	Time          time.Time
	Level         Level
	Message       string
	Elapsed       time.Duration
	Caller        CallerInfo
	Thread        ThreadInfo
	Process       ProcessInfo
	ExceptionText string
	Fields        []Field // logger-bound + call-site fields, merged into Extra at render time
	Extra         map[string]Field
}

// CallerInfo contains source-location information. The core never walks
// the stack itself (out of scope per the core/convenience-API boundary);
// producers that want caller info populate this via GetCaller or their own
// introspection before calling into the emission path.
type CallerInfo struct {
	Name     string // short function name, e.g. "doWork"
	Function string // fully-qualified function name, e.g. "pkg.doWork"
	File     string
	ShortFile string
	Line     int
	Defined  bool
}

// ThreadInfo identifies the producer goroutine/OS thread.
type ThreadInfo struct {
	Name string
	ID   int64
}

// ProcessInfo identifies the producing process.
type ProcessInfo struct {
	Name string
	ID   int
}

// entryPool is a pool of Entry objects to reduce allocations on the hot path.
var entryPool = sync.Pool{
	New: func() interface{} {
		return &Entry{
			Fields: make([]Field, 0, 8),
		}
	},
}

// GetEntry retrieves a zeroed Entry from the pool. The caller is
// responsible for setting Time explicitly (the emission path uses the
// coarse clock or a mock clock, not time.Now, so GetEntry does not stamp
// it).
func GetEntry() *Entry {
	e := entryPool.Get().(*Entry)
	e.Time = time.Time{}
	e.Level = 0
	e.Message = ""
	e.Elapsed = 0
	e.Caller = CallerInfo{}
	e.Thread = ThreadInfo{}
	e.Process = ProcessInfo{}
	e.ExceptionText = ""
	e.Fields = e.Fields[:0]
	e.Extra = nil
	return e
}

// PutEntry returns an Entry to the pool.
func PutEntry(e *Entry) {
	if e == nil {
		return
	}
	e.Fields = e.Fields[:0]
	e.Extra = nil
	e.Message = ""
	e.Caller = CallerInfo{}
	entryPool.Put(e)
}

// GetCaller retrieves caller information via runtime introspection. This
// helper exists for convenience-API callers; the core pipeline itself only
// ever consumes caller fields handed to it, per the caller/thread/process
// collection-requirements gate.
func GetCaller(skip int) CallerInfo {
	pc, file, line, ok := runtime.Caller(skip)
	if !ok {
		return CallerInfo{}
	}

	fn := runtime.FuncForPC(pc)
	var funcName, shortName string
	if fn != nil {
		funcName = fn.Name()
		shortName = funcName
		if idx := lastIndexByte(funcName, '.'); idx >= 0 {
			shortName = funcName[idx+1:]
		}
	}

	return CallerInfo{
		Name:      shortName,
		Function:  funcName,
		File:      file,
		ShortFile: filepath.Base(file),
		Line:      line,
		Defined:   true,
	}
}

// FieldsToExtra merges fields into dst (allocating it if nil and fields is
// non-empty) keyed by Field.Key, and returns the result. Used to fold
// logger-bound and call-site fields into Entry.Extra before a handler
// renders or serializes the record.
func FieldsToExtra(dst map[string]Field, fields []Field) map[string]Field {
	if len(fields) == 0 {
		return dst
	}
	if dst == nil {
		dst = make(map[string]Field, len(fields))
	}
	for _, f := range fields {
		dst[f.Key] = f
	}
	return dst
}

func lastIndexByte(s string, b byte) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == b {
			return i
		}
	}
	return -1
}
