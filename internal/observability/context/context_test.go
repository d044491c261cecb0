package context

import (
	stdctx "context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCorrelationValues(t *testing.T) {
	ctx := stdctx.Background()
	assert.Empty(t, RequestIDFromContext(ctx))

	ctx = WithRequestID(ctx, " req-1 ")
	ctx = WithCallerID(ctx, "66992a66-8ac8-4b5c-b420-056f39c0435e")
	ctx = WithCascadeID(ctx, "01J8Z")

	assert.Equal(t, "req-1", RequestIDFromContext(ctx))
	assert.Equal(t, "66992a66-8ac8-4b5c-b420-056f39c0435e", CallerIDFromContext(ctx))
	assert.Equal(t, "01J8Z", CascadeIDFromContext(ctx))
}
