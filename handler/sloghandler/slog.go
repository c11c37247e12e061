package sloghandler

import (
	"context"
	"log/slog"
	"strings"

	"github.com/yamaaaaaa31/logust/core"
	"github.com/yamaaaaaa31/logust/handler"
)

// SlogHandler adapts a handler.Handler into a log/slog.Handler, so the
// engine can sit behind code written against the standard library's
// structured logging interface.
type SlogHandler struct {
	target   handler.Handler
	minLevel slog.Level
	attrs    []slog.Attr
	groups   []string
}

// New wraps target as a slog.Handler. Records below minLevel are dropped
// by Enabled without reaching target.
func New(target handler.Handler, minLevel slog.Level) *SlogHandler {
	return &SlogHandler{target: target, minLevel: minLevel}
}

// Enabled reports whether level meets the configured minimum.
func (h *SlogHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.minLevel
}

// Handle converts r into an Entry and dispatches it to the wrapped handler.
func (h *SlogHandler) Handle(_ context.Context, r slog.Record) error {
	entry := core.GetEntry()
	entry.Time = r.Time
	entry.Level = mapLevel(r.Level)
	entry.Message = r.Message

	extra := make(map[string]core.Field, len(h.attrs)+r.NumAttrs())
	for _, a := range h.attrs {
		addAttr(extra, nil, a) // already prefixed by WithAttrs
	}
	r.Attrs(func(a slog.Attr) bool {
		addAttr(extra, h.groups, a)
		return true
	})
	if len(extra) > 0 {
		entry.Extra = extra
	}

	err := h.target.Handle(entry)
	if r, ok := h.target.(handler.Recycler); !ok || r.CanRecycleEntry() {
		core.PutEntry(entry)
	}
	return err
}

// WithAttrs returns a new handler with attrs appended to every future
// record, under the currently open groups.
func (h *SlogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = append([]slog.Attr{}, h.attrs...)
	for _, a := range attrs {
		if a.Equal(slog.Attr{}) {
			continue
		}
		if len(h.groups) > 0 {
			a.Key = strings.Join(h.groups, ".") + "." + a.Key
		}
		next.attrs = append(next.attrs, a)
	}
	return &next
}

// WithGroup returns a new handler that prefixes subsequent attrs with name.
func (h *SlogHandler) WithGroup(name string) slog.Handler {
	next := *h
	next.groups = append(append([]string{}, h.groups...), name)
	return &next
}

// mapLevel translates slog's four-level scheme onto the engine's registry,
// picking the built-in level whose intent matches most closely.
func mapLevel(l slog.Level) core.Level {
	switch {
	case l < slog.LevelInfo:
		return core.DebugLevel
	case l < slog.LevelWarn:
		return core.InfoLevel
	case l < slog.LevelError:
		return core.WarningLevel
	default:
		return core.ErrorLevel
	}
}

func addAttr(dst map[string]core.Field, groups []string, a slog.Attr) {
	if a.Equal(slog.Attr{}) {
		return
	}
	key := a.Key
	if len(groups) > 0 {
		key = strings.Join(groups, ".") + "." + key
	}

	v := a.Value.Resolve()
	switch v.Kind() {
	case slog.KindString:
		dst[key] = core.Field{Key: key, Type: core.StringType, Str: v.String()}
	case slog.KindInt64:
		dst[key] = core.Field{Key: key, Type: core.Int64Type, Int64: v.Int64()}
	case slog.KindUint64:
		dst[key] = core.Field{Key: key, Type: core.Int64Type, Int64: int64(v.Uint64())}
	case slog.KindFloat64:
		dst[key] = core.Field{Key: key, Type: core.Float64Type, Float64: v.Float64()}
	case slog.KindBool:
		i := int64(0)
		if v.Bool() {
			i = 1
		}
		dst[key] = core.Field{Key: key, Type: core.BoolType, Int64: i}
	case slog.KindDuration:
		dst[key] = core.Field{Key: key, Type: core.DurationType, Int64: int64(v.Duration())}
	case slog.KindTime:
		dst[key] = core.Field{Key: key, Type: core.TimeType, Int64: v.Time().UnixNano()}
	default:
		dst[key] = core.Field{Key: key, Type: core.AnyType, Any: v.Any()}
	}
}
