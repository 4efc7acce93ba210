package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func Test_ContextHandler_Handle(t *testing.T) {
	traceID := trace.TraceID{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09, 0x0a, 0x0b, 0x0c, 0x0d, 0x0e, 0x0f, 0x10}
	spanCtx := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: traceID,
		SpanID:  trace.SpanID{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08},
	})

	testCases := []struct {
		name              string
		ctx               context.Context
		expectedRequestID any
		expectedTraceID   any
	}{
		{
			name: "Empty context",
			ctx:  context.Background(),
		},
		{
			name:              "Request id only",
			ctx:               context.WithValue(context.Background(), middleware.RequestIDKey, "req-1"),
			expectedRequestID: "req-1",
		},
		{
			name: "Request id and span",
			ctx: trace.ContextWithSpanContext(
				context.WithValue(context.Background(), middleware.RequestIDKey, "req-2"), spanCtx),
			expectedRequestID: "req-2",
			expectedTraceID:   traceID.String(),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			var buf bytes.Buffer
			log := slog.New(NewContextHandler(slog.NewJSONHandler(&buf, nil))).With("component", "test")

			// when
			log.InfoContext(tc.ctx, "hello")

			// then
			var entry map[string]any
			require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
			assert.Equal(t, "test", entry["component"])
			assert.Equal(t, tc.expectedRequestID, entry["request_id"])
			assert.Equal(t, tc.expectedTraceID, entry["trace_id"])
		})
	}
}
