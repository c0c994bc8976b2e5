package tracing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

func TestSetup_Disabled(t *testing.T) {
	tp, err := Setup(context.Background(), Config{ServiceName: "orders", Version: "test"})
	require.NoError(t, err)
	defer func() {
		assert.NoError(t, tp.Shutdown(context.Background()))
	}()

	_, span := otel.Tracer("test").Start(context.Background(), "op")
	defer span.End()

	assert.True(t, span.SpanContext().IsValid())
}

func TestInjectExtract_RoundTrip(t *testing.T) {
	tp, err := Setup(context.Background(), Config{ServiceName: "orders", Version: "test"})
	require.NoError(t, err)
	defer func() {
		assert.NoError(t, tp.Shutdown(context.Background()))
	}()

	ctx, span := otel.Tracer("test").Start(context.Background(), "publish")
	defer span.End()

	headers := map[string]string{}
	Inject(ctx, headers)
	require.Contains(t, headers, "traceparent")

	extracted := Extract(context.Background(), headers)
	remote := trace.SpanContextFromContext(extracted)

	assert.True(t, remote.IsRemote())
	assert.Equal(t, span.SpanContext().TraceID(), remote.TraceID())
}

func TestExtract_NoHeaders(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, ctx, Extract(ctx, nil))
}
