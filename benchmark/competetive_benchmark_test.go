package benchmark

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/sirupsen/logrus"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/yamaaaaaa31/logust/core"
	"github.com/yamaaaaaa31/logust/formatter"
	"github.com/yamaaaaaa31/logust/handler"
	"github.com/yamaaaaaa31/logust/handler/consolehandler"
	"github.com/yamaaaaaa31/logust/handler/filehandler"
	"github.com/yamaaaaaa31/logust/logger"
)

// ---------------------------------------------------------------------------
// Helpers – identical sink for every framework (io.Discard / no-op writer)
// ---------------------------------------------------------------------------

// newLogustLogger returns a logust logger that writes JSON to io.Discard.
func newLogustLogger() *logger.Logger {
	h := consolehandler.NewConsoleHandler(consolehandler.ConsoleConfig{
		Writer:    io.Discard,
		Formatter: formatter.NewJSONFormatter(formatter.Config{}),
		Async:     false,
	})
	return logger.NewBuilder().
		WithHandler(h).
		WithLevel(core.DebugLevel).
		Build()
}

func newZapLogger() *zap.Logger {
	enc := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	c := zapcore.NewCore(enc, zapcore.AddSync(io.Discard), zap.DebugLevel)
	return zap.New(c)
}

func newSlogLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func newLogrusLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	l.SetFormatter(&logrus.JSONFormatter{})
	l.SetLevel(logrus.DebugLevel)
	return l
}

func newZerologLogger() zerolog.Logger {
	return zerolog.New(io.Discard).With().Timestamp().Logger().Level(zerolog.DebugLevel)
}

// ---------------------------------------------------------------------------
// Scenario 1 – Info message, no fields
// ---------------------------------------------------------------------------

func BenchmarkCompetitive_InfoNoFields(b *testing.B) {
	b.Run("logust", func(b *testing.B) {
		l := newLogustLogger()
		defer l.Close()
		b.ResetTimer()
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			l.Info("info message")
		}
	})

	b.Run("zap", func(b *testing.B) {
		l := newZapLogger()
		b.ResetTimer()
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			l.Info("info message")
		}
	})

	b.Run("slog", func(b *testing.B) {
		l := newSlogLogger()
		b.ResetTimer()
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			l.Info("info message")
		}
	})

	b.Run("logrus", func(b *testing.B) {
		l := newLogrusLogger()
		b.ResetTimer()
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			l.Info("info message")
		}
	})

	b.Run("zerolog", func(b *testing.B) {
		l := newZerologLogger()
		b.ResetTimer()
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			l.Info().Msg("info message")
		}
	})
}

// ---------------------------------------------------------------------------
// Scenario 2 – Structured logging with common fields
// ---------------------------------------------------------------------------

func BenchmarkCompetitive_InfoWithFields(b *testing.B) {
	b.Run("logust", func(b *testing.B) {
		l := newLogustLogger()
		defer l.Close()
		b.ResetTimer()
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			l.Info("request handled",
				logger.String("method", "GET"),
				logger.String("path", "/api/users"),
				logger.Int("status", 200),
				logger.Duration("latency", 150*time.Millisecond),
			)
		}
	})

	b.Run("zap", func(b *testing.B) {
		l := newZapLogger()
		b.ResetTimer()
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			l.Info("request handled",
				zap.String("method", "GET"),
				zap.String("path", "/api/users"),
				zap.Int("status", 200),
				zap.Duration("latency", 150*time.Millisecond),
			)
		}
	})

	b.Run("slog", func(b *testing.B) {
		l := newSlogLogger()
		b.ResetTimer()
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			l.Info("request handled",
				slog.String("method", "GET"),
				slog.String("path", "/api/users"),
				slog.Int("status", 200),
				slog.Duration("latency", 150*time.Millisecond),
			)
		}
	})

	b.Run("logrus", func(b *testing.B) {
		l := newLogrusLogger()
		b.ResetTimer()
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			l.WithFields(logrus.Fields{
				"method":  "GET",
				"path":    "/api/users",
				"status":  200,
				"latency": 150 * time.Millisecond,
			}).Info("request handled")
		}
	})

	b.Run("zerolog", func(b *testing.B) {
		l := newZerologLogger()
		b.ResetTimer()
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			l.Info().
				Str("method", "GET").
				Str("path", "/api/users").
				Int("status", 200).
				Dur("latency", 150*time.Millisecond).
				Msg("request handled")
		}
	})
}

// ---------------------------------------------------------------------------
// Scenario 3 – Disabled level vs. requirements-gated field capture.
//
// logust's admission gate is cheaper to bypass than the others' because a
// skipped level never even reaches the collection-requirements check
// (handler/registry.go, core/requirements.go): no caller/thread/process
// work is attempted before the level compare short-circuits.
// ---------------------------------------------------------------------------

func BenchmarkCompetitive_DisabledLevel(b *testing.B) {
	b.Run("logust", func(b *testing.B) {
		h := consolehandler.NewConsoleHandler(consolehandler.ConsoleConfig{
			Writer:    io.Discard,
			Formatter: formatter.NewJSONFormatter(formatter.Config{}),
			Async:     false,
		})
		l := logger.NewBuilder().
			AddHandler(handler.Spec{Level: core.ErrorLevel, Filter: func(*core.Entry) bool { return true }, Handler: h}).
			WithLevel(core.ErrorLevel).
			Build()
		defer l.Close()
		b.ResetTimer()
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			l.Debug("should be skipped", logger.String("key", "value"))
		}
	})

	b.Run("zap", func(b *testing.B) {
		enc := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
		c := zapcore.NewCore(enc, zapcore.AddSync(io.Discard), zap.ErrorLevel)
		l := zap.New(c)
		b.ResetTimer()
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			l.Debug("should be skipped", zap.String("key", "value"))
		}
	})

	b.Run("slog", func(b *testing.B) {
		l := slog.New(slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
		b.ResetTimer()
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			l.Debug("should be skipped", slog.String("key", "value"))
		}
	})

	b.Run("logrus", func(b *testing.B) {
		l := logrus.New()
		l.SetOutput(io.Discard)
		l.SetFormatter(&logrus.JSONFormatter{})
		l.SetLevel(logrus.ErrorLevel)
		b.ResetTimer()
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			l.WithField("key", "value").Debug("should be skipped")
		}
	})

	b.Run("zerolog", func(b *testing.B) {
		l := zerolog.New(io.Discard).Level(zerolog.ErrorLevel)
		b.ResetTimer()
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			l.Debug().Str("key", "value").Msg("should be skipped")
		}
	})
}

// ---------------------------------------------------------------------------
// Scenario 4 – Parallel / high-concurrency logging
// ---------------------------------------------------------------------------

func BenchmarkCompetitive_Parallel(b *testing.B) {
	b.Run("logust", func(b *testing.B) {
		l := newLogustLogger()
		defer l.Close()
		b.ResetTimer()
		b.ReportAllocs()
		b.RunParallel(func(pb *testing.PB) {
			for pb.Next() {
				l.Info("parallel log",
					logger.String("key", "value"),
					logger.Int("count", 42),
				)
			}
		})
	})

	b.Run("zap", func(b *testing.B) {
		l := newZapLogger()
		b.ResetTimer()
		b.ReportAllocs()
		b.RunParallel(func(pb *testing.PB) {
			for pb.Next() {
				l.Info("parallel log",
					zap.String("key", "value"),
					zap.Int("count", 42),
				)
			}
		})
	})

	b.Run("slog", func(b *testing.B) {
		l := newSlogLogger()
		b.ResetTimer()
		b.ReportAllocs()
		b.RunParallel(func(pb *testing.PB) {
			for pb.Next() {
				l.Info("parallel log",
					slog.String("key", "value"),
					slog.Int("count", 42),
				)
			}
		})
	})

	b.Run("logrus", func(b *testing.B) {
		l := newLogrusLogger()
		b.ResetTimer()
		b.ReportAllocs()
		b.RunParallel(func(pb *testing.PB) {
			for pb.Next() {
				l.WithFields(logrus.Fields{
					"key":   "value",
					"count": 42,
				}).Info("parallel log")
			}
		})
	})

	b.Run("zerolog", func(b *testing.B) {
		l := newZerologLogger()
		b.ResetTimer()
		b.ReportAllocs()
		b.RunParallel(func(pb *testing.PB) {
			for pb.Next() {
				l.Info().
					Str("key", "value").
					Int("count", 42).
					Msg("parallel log")
			}
		})
	})
}

// ---------------------------------------------------------------------------
// Scenario 5 – File output. logust runs its own rotating/retained file
// sink (handler/filehandler, §4.6) rather than a plain writer, since that
// rotate/retain bookkeeping is this repo's actual file-sink cost relative
// to the others' append-only writers.
// ---------------------------------------------------------------------------

func BenchmarkCompetitive_FileOutput(b *testing.B) {
	b.Run("logust_RotatingFile", func(b *testing.B) {
		dir := b.TempDir()
		h, err := filehandler.NewFileHandler(filehandler.FileConfig{
			Filename:  filepath.Join(dir, "bench.log"),
			Formatter: formatter.NewJSONFormatter(formatter.Config{}),
			Async:     false,
			Rotation:  handler.RotationPolicy{Kind: handler.RotationSize, SizeBytes: 1 << 20},
			Retention: handler.RetentionPolicy{Kind: handler.RetentionByCount, Count: 3},
		})
		if err != nil {
			b.Fatal(err)
		}
		l := logger.NewBuilder().
			WithHandler(h).
			WithLevel(core.InfoLevel).
			Build()
		b.ResetTimer()
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			l.Info("file log", logger.String("key", "value"))
		}
		b.StopTimer()
		l.Close()
	})

	b.Run("zap", func(b *testing.B) {
		f, err := os.CreateTemp(b.TempDir(), "bench-zap-*.log")
		if err != nil {
			b.Fatal(err)
		}
		enc := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
		c := zapcore.NewCore(enc, zapcore.AddSync(f), zap.InfoLevel)
		l := zap.New(c)
		b.ResetTimer()
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			l.Info("file log", zap.String("key", "value"))
		}
		b.StopTimer()
		l.Sync()
		f.Close()
	})

	b.Run("slog", func(b *testing.B) {
		f, err := os.CreateTemp(b.TempDir(), "bench-slog-*.log")
		if err != nil {
			b.Fatal(err)
		}
		l := slog.New(slog.NewJSONHandler(f, &slog.HandlerOptions{Level: slog.LevelInfo}))
		b.ResetTimer()
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			l.Info("file log", slog.String("key", "value"))
		}
		b.StopTimer()
		f.Close()
	})

	b.Run("logrus", func(b *testing.B) {
		f, err := os.CreateTemp(b.TempDir(), "bench-logrus-*.log")
		if err != nil {
			b.Fatal(err)
		}
		l := logrus.New()
		l.SetOutput(f)
		l.SetFormatter(&logrus.JSONFormatter{})
		l.SetLevel(logrus.InfoLevel)
		b.ResetTimer()
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			l.WithField("key", "value").Info("file log")
		}
		b.StopTimer()
		f.Close()
	})

	b.Run("zerolog", func(b *testing.B) {
		f, err := os.CreateTemp(b.TempDir(), "bench-zerolog-*.log")
		if err != nil {
			b.Fatal(err)
		}
		l := zerolog.New(f).With().Timestamp().Logger().Level(zerolog.InfoLevel)
		b.ResetTimer()
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			l.Info().Str("key", "value").Msg("file log")
		}
		b.StopTimer()
		f.Close()
	})
}
