package otel_test

import (
	"context"
	"errors"
	"fmt"
	"marketplace/infras/otel"
	"marketplace/shared/failure"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func newRecorder() (otel.Otel, *tracetest.SpanRecorder) {
	recorder := tracetest.NewSpanRecorder()
	provider := trace.NewTracerProvider(trace.WithSpanProcessor(recorder))

	return otel.NewWithProvider(provider), recorder
}

func TestScope_TraceIfError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus codes.Code
		wantEvent  string
	}{
		{name: "no error", wantStatus: codes.Unset},
		{name: "business rejection", err: failure.BidTooLow("bid must exceed 120.00"), wantStatus: codes.Unset, wantEvent: "rejected"},
		{name: "wrapped rejection", err: fmt.Errorf("place bid: %w", failure.AlreadyClosed("closed")), wantStatus: codes.Unset, wantEvent: "rejected"},
		{name: "untagged error", err: errors.New("connection reset"), wantStatus: codes.Error, wantEvent: "exception"},
		{name: "gateway failure", err: failure.Gateway("payment failed"), wantStatus: codes.Error, wantEvent: "exception"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracer, recorder := newRecorder()

			_, scope := tracer.NewScope(context.Background(), "test", "op")
			scope.TraceIfError(tt.err)
			scope.End()

			spans := recorder.Ended()
			require.Len(t, spans, 1)
			assert.Equal(t, tt.wantStatus, spans[0].Status().Code)

			if tt.wantEvent == "" {
				assert.Empty(t, spans[0].Events())

				return
			}

			require.Len(t, spans[0].Events(), 1)
			assert.Equal(t, tt.wantEvent, spans[0].Events()[0].Name)
		})
	}
}

func TestScope_SetAttributes(t *testing.T) {
	tracer, recorder := newRecorder()

	_, scope := tracer.NewScope(context.Background(), "test", "op")
	scope.SetAttributes(map[string]any{
		"bid.amount":   120.0,
		"auction.open": true,
		"bids":         3,
		"roles":        []string{"client", "admin"},
		"other":        struct{ A int }{A: 1},
	})
	scope.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)

	got := map[attribute.Key]attribute.Value{}
	for _, kv := range spans[0].Attributes() {
		got[kv.Key] = kv.Value
	}

	assert.InDelta(t, 120.0, got["bid.amount"].AsFloat64(), 1e-9)
	assert.True(t, got["auction.open"].AsBool())
	assert.Equal(t, int64(3), got["bids"].AsInt64())
	assert.Equal(t, []string{"client", "admin"}, got["roles"].AsStringSlice())
	assert.Equal(t, "{1}", got["other"].AsString())
}
