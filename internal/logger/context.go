package logger

import (
	"context"

	"go.uber.org/zap"
)

type ctxKey struct{}

// ContextWithLogger returns ctx carrying l.
func ContextWithLogger(ctx context.Context, l *zap.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext returns the request logger, or a no-op logger.
func FromContext(ctx context.Context) *zap.Logger {
	return Or(ctx, nil)
}

// Or returns the request logger stored in ctx, falling back to l.
// A nil fallback yields zap.NewNop().
func Or(ctx context.Context, l *zap.Logger) *zap.Logger {
	if cl, ok := ctx.Value(ctxKey{}).(*zap.Logger); ok && cl != nil {
		return cl
	}
	if l != nil {
		return l
	}
	return zap.NewNop()
}
