package observability

import (
	"context"
	"testing"
	"time"

	"work-advisor/internal/common/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestObservability_RecordsSpans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	o := New(Options{
		ServiceName:   "work-advisor-test",
		TraceSampling: 1.0,
		SpanProcessor: recorder,
		Logger:        logger.NewTestLogger(t),
	})
	defer o.Shutdown()

	ctx, span := o.Tracer().Start(context.Background(), "prediction.batch")
	o.RecordBatchProcessed(ctx, "completed")
	o.RecordBatchDuration(ctx, 150*time.Millisecond, "completed")
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "prediction.batch", ended[0].Name())
}

func TestObservability_NilReceiverIsSafe(t *testing.T) {
	var o *Observability

	assert.NotPanics(t, func() {
		_, span := o.Tracer().Start(context.Background(), "noop")
		span.End()
		o.RecordBatchProcessed(context.Background(), "completed")
		o.RecordBatchDuration(context.Background(), time.Second, "completed")
		o.Shutdown()
	})
}
