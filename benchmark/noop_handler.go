package benchmark

import (
	"github.com/yamaaaaaa31/logust/core"
	"github.com/yamaaaaaa31/logust/handler"
)

type noopHandler struct{}

func newNoopHandler() handler.Handler {
	return &noopHandler{}
}

func (h *noopHandler) Handle(e *core.Entry) error {
	_ = len(e.Message)
	core.PutEntry(e)
	return nil
}

func (h *noopHandler) Close() error {
	return nil
}

// discardWriter is a no-op writer for benchmarking.
type discardWriter struct{}

func (w discardWriter) Write(p []byte) (int, error) {
	return len(p), nil
}
