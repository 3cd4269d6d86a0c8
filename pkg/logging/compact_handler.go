package logging

import (
	"context"
	"io"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"
)

// CompactHandler writes one line per record for a terminal:
//
//	[DEBUG] 14:02:11 run=5f0c2a9e folded | blend=Mix-Shader#7 rule=mix into=Principled-BSDF#3
//
// The run ID is read from the record's context. Values implementing
// slog.LogValuer, graph nodes and sockets among them, are resolved first.
type CompactHandler struct {
	level  slog.Leveler
	mu     *sync.Mutex
	out    io.Writer
	prefix string // dotted group path
	pre    []byte // WithAttrs attrs, already formatted
}

// NewCompactHandler returns a handler writing to w. Only opts.Level is used.
func NewCompactHandler(w io.Writer, opts *slog.HandlerOptions) *CompactHandler {
	h := &CompactHandler{level: slog.LevelInfo, mu: &sync.Mutex{}, out: w}
	if opts != nil && opts.Level != nil {
		h.level = opts.Level
	}
	return h
}

func (h *CompactHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *CompactHandler) Handle(ctx context.Context, r slog.Record) error {
	buf := make([]byte, 0, 256)
	buf = appendLevel(buf, r.Level)
	buf = r.Time.AppendFormat(buf, "15:04:05")
	buf = append(buf, ' ')
	if id := GetRunID(ctx); id != "" {
		buf = append(buf, "run="...)
		buf = append(buf, shortID(id)...)
		buf = append(buf, ' ')
	}
	buf = append(buf, r.Message...)

	attrs := slices.Clip(h.pre)
	r.Attrs(func(a slog.Attr) bool {
		attrs = appendAttr(attrs, h.prefix, a)
		return true
	})
	if len(attrs) > 0 {
		buf = append(buf, " |"...)
		buf = append(buf, attrs...)
	}
	buf = append(buf, '\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.out.Write(buf)
	return err
}

func (h *CompactHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	c := *h
	c.pre = slices.Clip(h.pre)
	for _, a := range attrs {
		c.pre = appendAttr(c.pre, h.prefix, a)
	}
	return &c
}

func (h *CompactHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	c := *h
	c.prefix = h.prefix + name + "."
	return &c
}

func appendLevel(buf []byte, l slog.Level) []byte {
	var tag string
	switch {
	case l < slog.LevelInfo:
		tag = "[DEBUG]"
	case l < slog.LevelWarn:
		tag = "[INFO]"
	case l < slog.LevelError:
		tag = "[WARN]"
	default:
		tag = "[ERROR]"
	}
	buf = append(buf, tag...)
	for i := len(tag); i < 8; i++ {
		buf = append(buf, ' ')
	}
	return buf
}

// appendAttr writes " key=value", flattening groups into dotted keys.
func appendAttr(buf []byte, prefix string, a slog.Attr) []byte {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return buf
	}
	if a.Value.Kind() == slog.KindGroup {
		if a.Key != "" {
			prefix += a.Key + "."
		}
		for _, g := range a.Value.Group() {
			buf = appendAttr(buf, prefix, g)
		}
		return buf
	}
	buf = append(buf, ' ')
	buf = append(buf, prefix...)
	buf = append(buf, a.Key...)
	buf = append(buf, '=')
	return appendValue(buf, a.Value)
}

func appendValue(buf []byte, v slog.Value) []byte {
	switch v.Kind() {
	case slog.KindString:
		return appendString(buf, v.String())
	case slog.KindDuration:
		return append(buf, v.Duration().Round(time.Microsecond).String()...)
	case slog.KindTime:
		return v.Time().AppendFormat(buf, time.RFC3339)
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			return strconv.AppendQuote(buf, err.Error())
		}
	}
	return appendString(buf, v.String())
}

func appendString(buf []byte, s string) []byte {
	if s == "" || strings.ContainsAny(s, " \t\n\"=") {
		return strconv.AppendQuote(buf, s)
	}
	return append(buf, s...)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
