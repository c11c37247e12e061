// Package logger is the public API of logust. Most users only need to
// import this package.
//
// A Logger is an immutable handle bound to an Engine — the pair of a
// handler registry and the aggregated collection requirements it implies.
// All Logger fields (level gate, default fields, caller policy) are set
// once via Builder and never modified afterward, so a Logger is safe for
// concurrent use without any locking on the read path. With returns a new
// Logger rather than mutating the receiver.
//
// The package initializes a default Logger (async, InfoLevel, text format
// to stdout) in init(). The package-level functions Info, Error, Debugf,
// etc. delegate to this default instance, so simple programs can log
// without any setup:
//
//	logger.Info("ready", logger.Int("port", 8080))
//
// For custom configuration, use the Builder. WithHandler attaches a
// handler that accepts whatever the Logger's own level admits; AddHandler
// attaches one under a full Spec with its own level and filter:
//
//	log := logger.NewBuilder().
//	    WithHandler(myHandler).
//	    WithLevel(logger.DebugLevel).
//	    WithCaller(true).
//	    Build()
//	defer log.Close()
//
// Child loggers with extra fields are created via With, which returns a
// new Logger sharing the same engine but carrying additional default
// fields:
//
//	reqLog := log.With(logger.String("request_id", id))
//
// Level checks happen before any allocation, so filtered-out messages
// cost only a pair of integer comparisons. Caller, thread, process, and
// elapsed-time capture are each skipped unless some registered handler's
// declared requirements ask for them.
//
// Complete flushes buffered sync sinks without closing anything; Close
// shuts the engine down, draining and closing every registered handler.
package logger
