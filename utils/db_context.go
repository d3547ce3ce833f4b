package utils

import (
	"context"
	"time"
)

// DefaultStoreTimeout bounds a single store operation issued by a request.
const DefaultStoreTimeout = 15 * time.Second

// ExportTimeout is for workbook and document generation.
const ExportTimeout = 60 * time.Second

// GetQueryContext returns a context with timeout for storage calls.
// If parent context is nil, a background context is used.
func GetQueryContext(parentCtx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	return context.WithTimeout(parentCtx, timeout)
}

func GetDefaultQueryContext(parentCtx context.Context) (context.Context, context.CancelFunc) {
	return GetQueryContext(parentCtx, DefaultStoreTimeout)
}

func GetExportContext(parentCtx context.Context) (context.Context, context.CancelFunc) {
	return GetQueryContext(parentCtx, ExportTimeout)
}
