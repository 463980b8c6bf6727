package tracer_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	"paam/pkg/platform/tracer"
)

func TestNoopReturnsContextUnchanged(t *testing.T) {
	ctx := context.Background()
	newCtx, span := tracer.NewNoop().Start(ctx, tracer.SpanKYCCreate, tracer.String(tracer.AttrCustomerID, "CUST-001"))

	assert.Equal(t, ctx, newCtx)
	require.NotNil(t, span)
	span.SetAttributes(tracer.Int(tracer.AttrResultCount, 3))
	span.AddEvent(tracer.EventOutboxAppended)
	span.End(errors.New("boom"))
}

func TestOTelWithInjectedProvider(t *testing.T) {
	tr := tracer.NewOTel(tracer.WithTracerProvider(noop.NewTracerProvider()))

	_, span := tr.Start(context.Background(), tracer.SpanKYCList,
		tracer.Int(tracer.AttrPage, 1),
		tracer.Bool("cached", false),
		tracer.Duration("elapsed", 1500*time.Millisecond),
	)
	require.NotNil(t, span)
	span.SetAttributes(tracer.String(tracer.AttrStatus, "PENDING"))
	span.End(nil)
}

func TestDurationAttributeIsMilliseconds(t *testing.T) {
	attr := tracer.Duration("elapsed", 2*time.Second)
	assert.Equal(t, int64(2000), attr.Value)
}
