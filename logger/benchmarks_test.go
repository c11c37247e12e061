package logger

import (
	"io"
	"testing"

	"github.com/yamaaaaaa31/logust/formatter"
	"github.com/yamaaaaaa31/logust/handler/consolehandler"
)

// BenchmarkInfoNoFields benchmarks Info() with no fields using a discard writer.
func BenchmarkInfoNoFields(b *testing.B) {
	h := consolehandler.NewConsoleHandler(consolehandler.ConsoleConfig{
		Writer:    io.Discard,
		Async:     false,
		Formatter: formatter.NewTextFormatter(formatter.Config{}),
	})
	defer h.Close()

	log := NewBuilder().
		WithHandler(h).
		WithLevel(InfoLevel).
		Build()

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		log.Info("test message")
	}
}

// BenchmarkInfoWith2Fields benchmarks Info() with 2 string fields using a discard writer.
func BenchmarkInfoWith2Fields(b *testing.B) {
	h := consolehandler.NewConsoleHandler(consolehandler.ConsoleConfig{
		Writer:    io.Discard,
		Async:     false,
		Formatter: formatter.NewTextFormatter(formatter.Config{}),
	})
	defer h.Close()

	log := NewBuilder().
		WithHandler(h).
		WithLevel(InfoLevel).
		Build()

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		log.Info("test message", String("key1", "value1"), String("key2", "value2"))
	}
}

// BenchmarkFilteredDebug benchmarks Debug() when level is Info (should be filtered).
func BenchmarkFilteredDebug(b *testing.B) {
	h := consolehandler.NewConsoleHandler(consolehandler.ConsoleConfig{
		Writer:    io.Discard,
		Async:     false,
		Formatter: formatter.NewTextFormatter(formatter.Config{}),
	})
	defer h.Close()

	log := NewBuilder().
		WithHandler(h).
		WithLevel(InfoLevel).
		Build()

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		log.Debug("debug message", String("key", "value"))
	}
}

// BenchmarkJSON benchmarks Info() with the JSON formatter.
func BenchmarkJSON(b *testing.B) {
	h := consolehandler.NewConsoleHandler(consolehandler.ConsoleConfig{
		Writer:    io.Discard,
		Async:     false,
		Formatter: formatter.NewJSONFormatter(formatter.Config{}),
	})
	defer h.Close()

	log := NewBuilder().
		WithHandler(h).
		WithLevel(InfoLevel).
		Build()

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		log.Info("test message", String("key1", "value1"), String("key2", "value2"))
	}
}
