package api

import (
	"context"
	"time"
)

// QueryTimeout bounds the store work of a single request
const QueryTimeout = 10 * time.Second

// WithQueryTimeout derives a context that gives up after QueryTimeout
func WithQueryTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return context.WithTimeout(parent, QueryTimeout)
}
