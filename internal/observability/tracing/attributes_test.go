package tracing

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/attribute"
)

func TestSafeAttributes(t *testing.T) {
	long := strings.Repeat("a", maxAttributeLength+10)
	attrs := SafeAttributes(
		attribute.String("http.route", "/placements/:id"),
		attribute.String("authorization", "Bearer secret"),
		attribute.String("placement.description", long),
		attribute.Int("http.status_code", 201),
	)
	assert.Len(t, attrs, 3)
	assert.Len(t, attrs[1].Value.AsString(), maxAttributeLength)
	assert.Equal(t, int64(201), attrs[2].Value.AsInt64())
}

func TestSafeError(t *testing.T) {
	assert.Nil(t, SafeError(nil))
	assert.Nil(t, SafeError(errors.New("  ")))
	assert.EqualError(t, SafeError(errors.New("boom")), "boom")
}
