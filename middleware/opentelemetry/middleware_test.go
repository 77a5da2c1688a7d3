package opentelemetry

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/coderi421/adkit/web"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func TestMiddlewareBuilder_Build(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	server := web.NewHTTPServer()
	server.Use(MiddlewareBuilder{Tracer: tp.Tracer("test")}.Build())

	var inner trace.SpanContext
	server.Post("/panels/:panel", func(ctx *web.Context) {
		inner = trace.SpanContextFromContext(ctx.Req.Context())
		ctx.RespString(http.StatusBadGateway, "fault")
	})
	server.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/panels/orders", nil))

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	span := spans[0]
	assert.Equal(t, "/panels/:panel", span.Name())
	assert.Equal(t, trace.SpanKindServer, span.SpanKind())
	assert.Equal(t, codes.Error, span.Status().Code)
	assert.Contains(t, span.Attributes(), attribute.Int("http.status", http.StatusBadGateway))
	assert.Contains(t, span.Attributes(), attribute.String("http.method", http.MethodPost))
	assert.Equal(t, span.SpanContext().SpanID(), inner.SpanID())
}
