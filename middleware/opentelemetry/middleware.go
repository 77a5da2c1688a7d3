package opentelemetry

import (
	"net/http"

	"github.com/coderi421/adkit/web"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/coderi421/adkit/middleware/opentelemetry"

type MiddlewareBuilder struct {
	Tracer trace.Tracer
}

func (m MiddlewareBuilder) Build() web.Middleware {
	if m.Tracer == nil {
		m.Tracer = otel.GetTracerProvider().Tracer(instrumentationName)
	}
	return func(next web.HandleFunc) web.HandleFunc {
		return func(ctx *web.Context) {
			reqCtx := ctx.Req.Context()
			// 和客户端的 trace 连起来
			reqCtx = otel.GetTextMapPropagator().Extract(reqCtx, propagation.HeaderCarrier(ctx.Req.Header))

			reqCtx, span := m.Tracer.Start(reqCtx, "unknown", trace.WithSpanKind(trace.SpanKindServer))
			defer span.End()

			span.SetAttributes(
				attribute.String("http.method", ctx.Req.Method),
				attribute.String("http.url", ctx.Req.URL.String()),
				attribute.String("http.host", ctx.Req.Host),
			)

			// 下游的 soap 调用会挂在这个 span 下面
			ctx.Req = ctx.Req.WithContext(reqCtx)
			next(ctx)

			// 执行完 next 才有命中的路由
			if ctx.MatchedRoute != "" {
				span.SetName(ctx.MatchedRoute)
			}
			span.SetAttributes(attribute.Int("http.status", ctx.RespStatusCode))
			if ctx.RespStatusCode >= http.StatusInternalServerError {
				span.SetStatus(codes.Error, http.StatusText(ctx.RespStatusCode))
			}
		}
	}
}
