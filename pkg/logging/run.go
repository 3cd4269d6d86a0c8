package logging

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// NewRunID returns a fresh identifier for one conversion run.
func NewRunID() string {
	return uuid.New().String()
}

// Run tags ctx with a run ID (keeping one already present), logs the start
// and end of fn, and returns fn's error.
func Run(ctx context.Context, name string, fn func(ctx context.Context) error, args ...any) error {
	if GetRunID(ctx) == "" {
		ctx = WithRunID(ctx, NewRunID())
	}

	start := time.Now()
	DebugContext(ctx, name+" started", args...)

	err := fn(ctx)

	duration := time.Since(start)
	if err != nil {
		ErrorContext(ctx, name+" failed",
			append(args, "error", err, "duration", duration)...)
		return err
	}
	InfoContext(ctx, name+" completed",
		append(args, "duration", duration)...)
	return nil
}
