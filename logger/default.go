package logger

import (
	"sync"

	"github.com/yamaaaaaa31/logust/core"
	"github.com/yamaaaaaa31/logust/formatter"
	"github.com/yamaaaaaa31/logust/handler/consolehandler"
)

var (
	defaultLogger *Logger
	defaultMu     sync.RWMutex
)

func init() {
	h := consolehandler.NewConsoleHandler(consolehandler.ConsoleConfig{
		Async:      true,
		BufferSize: 1000,
		Formatter:  formatter.NewTextFormatter(formatter.Config{}),
	})

	defaultLogger = NewBuilder().
		WithHandler(h).
		WithLevel(core.InfoLevel).
		Build()
}

// Default returns the default logger.
func Default() *Logger {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultLogger
}

// SetDefault replaces the default logger.
func SetDefault(l *Logger) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultLogger = l
}

// Trace logs a trace message using the default logger.
func Trace(msg string, fields ...core.Field) {
	Default().Trace(msg, fields...)
}

// Debug logs a debug message using the default logger.
func Debug(msg string, fields ...core.Field) {
	Default().Debug(msg, fields...)
}

// Info logs an info message using the default logger.
func Info(msg string, fields ...core.Field) {
	Default().Info(msg, fields...)
}

// Success logs a success message using the default logger.
func Success(msg string, fields ...core.Field) {
	Default().Success(msg, fields...)
}

// Warning logs a warning message using the default logger.
func Warning(msg string, fields ...core.Field) {
	Default().Warning(msg, fields...)
}

// Error logs an error message using the default logger.
func Error(msg string, fields ...core.Field) {
	Default().Error(msg, fields...)
}

// Fail logs a fail message using the default logger.
func Fail(msg string, fields ...core.Field) {
	Default().Fail(msg, fields...)
}

// Critical logs a critical message using the default logger.
func Critical(msg string, fields ...core.Field) {
	Default().Critical(msg, fields...)
}

// Fatal logs a critical message using the default logger and exits the program.
func Fatal(msg string, fields ...core.Field) {
	Default().Fatal(msg, fields...)
}

// Panic logs a fail message using the default logger and panics.
func Panic(msg string, fields ...core.Field) {
	Default().Panic(msg, fields...)
}

// Tracef logs a formatted trace message using the default logger.
func Tracef(format string, args ...interface{}) {
	Default().Tracef(format, args...)
}

// Debugf logs a formatted debug message using the default logger.
func Debugf(format string, args ...interface{}) {
	Default().Debugf(format, args...)
}

// Infof logs a formatted info message using the default logger.
func Infof(format string, args ...interface{}) {
	Default().Infof(format, args...)
}

// Warningf logs a formatted warning message using the default logger.
func Warningf(format string, args ...interface{}) {
	Default().Warningf(format, args...)
}

// Errorf logs a formatted error message using the default logger.
func Errorf(format string, args ...interface{}) {
	Default().Errorf(format, args...)
}

// Fatalf logs a formatted critical message using the default logger and exits the program.
func Fatalf(format string, args ...interface{}) {
	Default().Fatalf(format, args...)
}

// Panicf logs a formatted fail message using the default logger and panics.
func Panicf(format string, args ...interface{}) {
	Default().Panicf(format, args...)
}

// With creates a new logger with additional fields using the default logger.
func With(fields ...core.Field) *Logger {
	return Default().With(fields...)
}
