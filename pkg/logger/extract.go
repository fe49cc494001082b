package logger

import (
	"context"
	"log/slog"
)

// ContextExtractor pulls one attribute out of a context.
type ContextExtractor func(ctx context.Context) (slog.Attr, bool)

// ContextString extracts a non-empty string stored under key.
func ContextString(key any, attr string) ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		if v, ok := ctx.Value(key).(string); ok && v != "" {
			return slog.String(attr, v), true
		}
		return slog.Attr{}, false
	}
}

type extracting struct {
	next       slog.Handler
	extractors []ContextExtractor
}

func withExtractors(next slog.Handler, extractors ...ContextExtractor) slog.Handler {
	var list []ContextExtractor
	for _, ex := range extractors {
		if ex != nil {
			list = append(list, ex)
		}
	}
	if len(list) == 0 {
		return next
	}
	return &extracting{next: next, extractors: list}
}

func (h *extracting) Enabled(ctx context.Context, l slog.Level) bool {
	return h.next.Enabled(ctx, l)
}

func (h *extracting) Handle(ctx context.Context, rec slog.Record) error {
	for _, ex := range h.extractors {
		if a, ok := ex(ctx); ok {
			rec.AddAttrs(a)
		}
	}
	return h.next.Handle(ctx, rec)
}

func (h *extracting) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &extracting{next: h.next.WithAttrs(attrs), extractors: h.extractors}
}

func (h *extracting) WithGroup(name string) slog.Handler {
	return &extracting{next: h.next.WithGroup(name), extractors: h.extractors}
}

// fanout sends each record to every handler that accepts its level.
type fanout []slog.Handler

func (f fanout) Enabled(ctx context.Context, l slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, l) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, rec slog.Record) error {
	var first error
	for _, h := range f {
		if !h.Enabled(ctx, rec.Level) {
			continue
		}
		if err := h.Handle(ctx, rec.Clone()); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (f fanout) WithGroup(name string) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithGroup(name)
	}
	return out
}
