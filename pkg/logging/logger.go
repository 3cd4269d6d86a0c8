package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
)

type contextKey string

const runIDKey contextKey = "runID"

var (
	logger *slog.Logger
	// stderr, so reports on stdout stay machine readable
	sink io.Writer = os.Stderr
)

func init() {
	SetLevel(slog.LevelInfo)
}

// SetOutput redirects log output, mainly for tests
func SetOutput(w io.Writer, level slog.Level) {
	sink = w
	SetLevel(level)
}

// SetLevel installs the compact console handler at level.
func SetLevel(level slog.Level) {
	logger = slog.New(NewCompactHandler(sink, &slog.HandlerOptions{Level: level}))
}

// SetJSONOutput switches to one JSON object per record, with the run ID
// carried as a "run" field.
func SetJSONOutput(level slog.Level) {
	logger = slog.New(runHandler{slog.NewJSONHandler(sink, &slog.HandlerOptions{Level: level})})
}

// WithRunID adds a conversion run ID to the context
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey, runID)
}

// GetRunID retrieves the run ID from context
func GetRunID(ctx context.Context) string {
	if runID, ok := ctx.Value(runIDKey).(string); ok {
		return runID
	}
	return ""
}

// runHandler adds the context's run ID to records for handlers that do
// not look it up themselves.
type runHandler struct {
	slog.Handler
}

func (h runHandler) Handle(ctx context.Context, r slog.Record) error {
	if id := GetRunID(ctx); id != "" {
		r = r.Clone()
		r.AddAttrs(slog.String("run", id))
	}
	return h.Handler.Handle(ctx, r)
}

func (h runHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return runHandler{h.Handler.WithAttrs(attrs)}
}

func (h runHandler) WithGroup(name string) slog.Handler {
	return runHandler{h.Handler.WithGroup(name)}
}

// DebugContext logs engine steps: dissolves, folds, step boundaries.
func DebugContext(ctx context.Context, msg string, args ...any) {
	logger.Log(ctx, slog.LevelDebug, msg, args...)
}

// InfoContext logs user-facing progress.
func InfoContext(ctx context.Context, msg string, args ...any) {
	logger.Log(ctx, slog.LevelInfo, msg, args...)
}

// WarnContext logs conditions the conversion works around, such as cycles.
func WarnContext(ctx context.Context, msg string, args ...any) {
	logger.Log(ctx, slog.LevelWarn, msg, args...)
}

// ErrorContext logs a failed conversion.
func ErrorContext(ctx context.Context, msg string, args ...any) {
	logger.Log(ctx, slog.LevelError, msg, args...)
}
