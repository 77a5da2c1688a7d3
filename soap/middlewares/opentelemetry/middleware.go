package opentelemetry

import (
	"context"

	"github.com/coderi421/adkit/soap"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/coderi421/adkit/soap/middlewares/opentelemetry"

type MiddlewareBuilder struct {
	Tracer trace.Tracer
}

func (m MiddlewareBuilder) Build() soap.Middleware {
	if m.Tracer == nil {
		m.Tracer = otel.GetTracerProvider().Tracer(instrumentationName)
	}
	return func(next soap.Handler) soap.Handler {
		return func(ctx context.Context, inv *soap.Invocation) *soap.Result {
			// span 名字例如 LabelService.getLabelsByStatement
			ctx, span := m.Tracer.Start(ctx, inv.Service+"."+inv.Operation, trace.WithSpanKind(trace.SpanKindClient))
			defer span.End()

			span.SetAttributes(
				attribute.String("rpc.system", "soap"),
				attribute.String("rpc.service", inv.Service),
				attribute.String("rpc.method", inv.Operation),
			)
			if inv.Statement != nil {
				span.SetAttributes(attribute.String("adkit.statement", inv.Statement.Query))
			}

			res := next(ctx, inv)
			err := res.Failure()
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
			}
			return res
		}
	}
}
