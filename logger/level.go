package logger

import (
	"strings"

	"github.com/yamaaaaaa31/logust/core"
)

// Level re-exports core.Level for convenience so callers rarely need to
// import the core package directly.
type Level = core.Level

const (
	TraceLevel    = core.TraceLevel
	DebugLevel    = core.DebugLevel
	InfoLevel     = core.InfoLevel
	SuccessLevel  = core.SuccessLevel
	WarningLevel  = core.WarningLevel
	ErrorLevel    = core.ErrorLevel
	FailLevel     = core.FailLevel
	CriticalLevel = core.CriticalLevel
)

// ParseLevel converts a name to a Level. FATAL and PANIC are accepted as
// aliases for CRITICAL and FAIL respectively, matching the Fatal/Panic
// convenience methods on Logger, which are not levels of their own.
func ParseLevel(s string) Level {
	switch strings.ToUpper(s) {
	case "TRACE":
		return TraceLevel
	case "DEBUG":
		return DebugLevel
	case "INFO":
		return InfoLevel
	case "SUCCESS":
		return SuccessLevel
	case "WARN", "WARNING":
		return WarningLevel
	case "ERROR":
		return ErrorLevel
	case "FAIL":
		return FailLevel
	case "CRITICAL", "FATAL":
		return CriticalLevel
	case "PANIC":
		return FailLevel
	default:
		return InfoLevel
	}
}
