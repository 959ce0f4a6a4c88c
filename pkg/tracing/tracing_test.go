package tracing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInitDisabledReturnsNoop(t *testing.T) {
	t.Setenv("OTEL_ENABLED", "false")

	shutdown := Init(context.Background())
	assert.NoError(t, shutdown(context.Background()))
}

func TestTracerStartsSpans(t *testing.T) {
	ctx, span := Tracer("test").Start(context.Background(), "unit")
	defer span.End()

	assert.NotNil(t, ctx)
}
