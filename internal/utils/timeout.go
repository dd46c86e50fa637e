package utils

import (
	"context"
	"time"
)

const (
	DefaultDBTimeout   = 5 * time.Second
	DefaultBulkTimeout = 30 * time.Second
)

func WithDBTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, DefaultDBTimeout)
}

// WithBulkTimeout bounds statements that write a whole upload batch.
func WithBulkTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, DefaultBulkTimeout)
}
