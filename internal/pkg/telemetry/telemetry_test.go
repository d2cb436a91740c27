package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitTracer_None(t *testing.T) {
	shutdown, err := InitTracer(context.Background(), "attendance-test", "none")
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestInitTracer_UnknownExporter(t *testing.T) {
	_, err := InitTracer(context.Background(), "attendance-test", "jaeger")
	assert.Error(t, err)
}

func TestStartSpan_EndRecordsError(t *testing.T) {
	ctx, span := StartSpan(context.Background(), "test.op")
	require.NotNil(t, ctx)
	End(span, errors.New("boom"))
	assert.False(t, span.IsRecording())
}
