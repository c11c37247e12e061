package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"sync"

	"github.com/yamaaaaaa31/logust/core"
)

// goroutineID extracts the calling goroutine's id from its own stack
// trace header ("goroutine 123 [running]:..."). This is only ever called
// when the engine-wide requirements snapshot demands thread info, so its
// cost is paid exclusively by configurations that asked for it.
func goroutineID() int64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	b := buf[:n]
	b = bytes.TrimPrefix(b, []byte("goroutine "))
	if i := bytes.IndexByte(b, ' '); i >= 0 {
		b = b[:i]
	}
	id, _ := strconv.ParseInt(string(b), 10, 64)
	return id
}

var processInfoOnce sync.Once
var cachedProcessInfo core.ProcessInfo

// currentProcessInfo returns this process's identity, computed once and
// cached since it never changes for the life of the program.
func currentProcessInfo() core.ProcessInfo {
	processInfoOnce.Do(func() {
		name := "unknown"
		if len(os.Args) > 0 {
			name = filepath.Base(os.Args[0])
		}
		cachedProcessInfo = core.ProcessInfo{Name: name, ID: os.Getpid()}
	})
	return cachedProcessInfo
}

// currentThreadInfo identifies the calling goroutine.
func currentThreadInfo() core.ThreadInfo {
	return core.ThreadInfo{ID: goroutineID()}
}
