package logger

import (
	"context"

	"go.uber.org/zap"
)

type contextKey string

const loggerKey contextKey = "logger"

// WithContext attaches l to ctx.
func WithContext(ctx context.Context, l *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// FromContext returns the logger stored in ctx, or fallback, or a no-op logger.
func FromContext(ctx context.Context, fallback *zap.Logger) *zap.Logger {
	if l, ok := ctx.Value(loggerKey).(*zap.Logger); ok && l != nil {
		return l
	}
	return OrNop(fallback)
}

// WithCompany enriches the context logger with the tenant being processed.
func WithCompany(ctx context.Context, base *zap.Logger, companyID string) (context.Context, *zap.Logger) {
	l := FromContext(ctx, base).With(zap.String("company_id", companyID))
	return WithContext(ctx, l), l
}
