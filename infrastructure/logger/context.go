package logger

import (
	"context"
	"fmt"
	"os"
	"sync"
)

type ctxKey struct{}

// WithContext returns a copy of ctx carrying l.
func WithContext(ctx context.Context, l Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContextOr returns the logger carried by ctx, or def when there is none.
func FromContextOr(ctx context.Context, def Logger) Logger {
	if l, ok := ctx.Value(ctxKey{}).(Logger); ok && l != nil {
		return l
	}
	return def
}

// FromContext is FromContextOr with a shared warn-level stderr logger as the
// default. It never returns nil.
func FromContext(ctx context.Context) Logger {
	return FromContextOr(ctx, stderrLogger())
}

var stderrLogger = sync.OnceValue(func() Logger {
	l, err := New(Config{Level: "warn", OutputPaths: []string{"stderr"}})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: stderr fallback unavailable: %v\n", err)
		return NewNop()
	}
	return l
})
