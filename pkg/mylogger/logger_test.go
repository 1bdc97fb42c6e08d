package mylogger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestInfo_AttachesTraceIDs(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	logger := zap.New(core)

	tp := sdktrace.NewTracerProvider()
	ctx, span := tp.Tracer("test").Start(context.Background(), "op")
	defer span.End()

	Info(ctx, logger, "with span")
	Warn(context.Background(), logger, "without span")

	entries := logs.All()
	require.Len(t, entries, 2)
	require.Equal(t, span.SpanContext().TraceID().String(), entries[0].ContextMap()["trace_id"])
	require.NotContains(t, entries[1].ContextMap(), "trace_id")
}
