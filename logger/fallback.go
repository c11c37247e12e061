package logger

import (
	"fmt"
	"os"
	"time"

	"golang.org/x/time/rate"
)

// osStderr is a var so tests can redirect the fallback sink.
var osStderr = os.Stderr

// fallbackReporter is the "internal error sink" referenced throughout §4
// and §7: sink I/O failures, filter panics, and formatter failures never
// reach the producer, but they still need somewhere to go. Reporting is
// rate-limited so a sink stuck in a failure loop can't itself become a
// throughput problem.
type fallbackReporter struct {
	limiter *rate.Limiter
}

func newFallbackReporter() *fallbackReporter {
	return &fallbackReporter{limiter: rate.NewLimiter(rate.Every(time.Second), 5)}
}

// report writes msg to stderr, dropping it silently once the rate limit is
// exceeded (better than the fallback sink itself blocking the hot path).
func (f *fallbackReporter) report(msg string) {
	if !f.limiter.Allow() {
		return
	}
	fmt.Fprintln(osStderr, "logust:", msg)
}

func (f *fallbackReporter) reportErr(context string, err error) {
	if err == nil {
		return
	}
	f.report(context + ": " + err.Error())
}
