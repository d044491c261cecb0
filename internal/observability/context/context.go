// Package context carries request-scoped correlation values used by logs,
// traces and the cascade.
package context

import (
	stdctx "context"
	"strings"
)

type ctxKey int

const (
	requestIDKey ctxKey = iota
	callerIDKey
	cascadeIDKey
)

func WithRequestID(ctx stdctx.Context, requestID string) stdctx.Context {
	return stdctx.WithValue(ctx, requestIDKey, strings.TrimSpace(requestID))
}

func RequestIDFromContext(ctx stdctx.Context) string {
	return stringValue(ctx, requestIDKey)
}

// WithCallerID records the user id the request was made on behalf of.
func WithCallerID(ctx stdctx.Context, callerID string) stdctx.Context {
	return stdctx.WithValue(ctx, callerIDKey, strings.TrimSpace(callerID))
}

func CallerIDFromContext(ctx stdctx.Context) string {
	return stringValue(ctx, callerIDKey)
}

func WithCascadeID(ctx stdctx.Context, cascadeID string) stdctx.Context {
	return stdctx.WithValue(ctx, cascadeIDKey, strings.TrimSpace(cascadeID))
}

func CascadeIDFromContext(ctx stdctx.Context) string {
	return stringValue(ctx, cascadeIDKey)
}

func stringValue(ctx stdctx.Context, key ctxKey) string {
	if ctx == nil {
		return ""
	}
	v, _ := ctx.Value(key).(string)
	return v
}
