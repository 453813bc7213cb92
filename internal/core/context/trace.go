// Package context carries request-scoped metadata through call chains.
package context

import (
	"context"
)

// TraceInfo identifies one request for log correlation.
type TraceInfo struct {
	RequestID string
}

type traceKey struct{}

// WithTrace attaches trace info to the context.
func WithTrace(ctx context.Context, info *TraceInfo) context.Context {
	return context.WithValue(ctx, traceKey{}, info)
}

// GetTrace returns trace info from the context, or nil.
func GetTrace(ctx context.Context) *TraceInfo {
	if info, ok := ctx.Value(traceKey{}).(*TraceInfo); ok {
		return info
	}
	return nil
}
