package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitDisabledInstallsNoop(t *testing.T) {
	require.NoError(t, Init(context.Background(), Options{}))
	defer Shutdown(context.Background())

	counter, err := Meter("").Int64Counter("carematch.test")
	require.NoError(t, err)
	counter.Add(context.Background(), 1)

	_, span := Tracer("").Start(context.Background(), "noop")
	assert.False(t, span.SpanContext().IsValid())
	span.End()
}

func TestInitEnabledWithoutExporters(t *testing.T) {
	require.NoError(t, Init(context.Background(), Options{Enabled: true, ServiceName: "carematch-test"}))
	defer Shutdown(context.Background())

	_, span := Tracer("").Start(context.Background(), "op")
	assert.True(t, span.SpanContext().IsValid())
	span.End()
}
