package log

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"
)

// lineHandler renders records as
//
//	[<timestamp>] [<app> <elapsed>s] [<LEVEL>] <message> key=value...
//
// and hands them to its FileLogger for output.
type lineHandler struct {
	l      *FileLogger
	attrs  []slog.Attr
	prefix string
}

func (h *lineHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.l.level.Level()
}

func (h *lineHandler) Handle(ctx context.Context, r slog.Record) error {
	level := levelFromSlog(r.Level)
	color := level.Color()
	if c, ok := ctx.Value(colorKey{}).(Color); ok {
		color = c
	}
	return h.l.write(color, h.format(r, level))
}

func (h *lineHandler) format(r slog.Record, level Level) string {
	t := r.Time
	if t.IsZero() {
		t = time.Now()
	}
	elapsed := t.Sub(h.l.start).Seconds()

	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s] [%s %.2fs] [%s] %s", t.Format(h.l.timeFormat), h.l.appName, elapsed, level, r.Message)
	for _, a := range h.attrs {
		writeAttr(&sb, "", a)
	}
	r.Attrs(func(a slog.Attr) bool {
		writeAttr(&sb, h.prefix, a)
		return true
	})
	return sb.String()
}

func (h *lineHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	nh := *h
	nh.attrs = make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	nh.attrs = append(nh.attrs, h.attrs...)
	for _, a := range attrs {
		a.Key = h.prefix + a.Key
		nh.attrs = append(nh.attrs, a)
	}
	return &nh
}

func (h *lineHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	nh := *h
	nh.prefix = h.prefix + name + "."
	return &nh
}

func writeAttr(sb *strings.Builder, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	if a.Value.Kind() == slog.KindGroup {
		for _, ga := range a.Value.Group() {
			writeAttr(sb, prefix+a.Key+".", ga)
		}
		return
	}
	sb.WriteByte(' ')
	sb.WriteString(prefix)
	sb.WriteString(a.Key)
	sb.WriteByte('=')
	sb.WriteString(quoteValue(a.Value.String()))
}

func quoteValue(s string) string {
	if s == "" || strings.ContainsAny(s, " \t\n\"=") {
		return strconv.Quote(s)
	}
	return s
}
