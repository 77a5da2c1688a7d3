package querylog

import (
	"context"
	"time"

	"github.com/coderi421/adkit/soap"
	"github.com/rs/zerolog"
)

// MiddlewareBuilder 记录每一次远程调用
type MiddlewareBuilder struct {
	logger  zerolog.Logger
	slowest time.Duration
}

func NewBuilder(logger zerolog.Logger) *MiddlewareBuilder {
	return &MiddlewareBuilder{logger: logger}
}

// SlowThreshold 超过阈值的调用用 Warn 级别输出，0 代表不区分
func (m *MiddlewareBuilder) SlowThreshold(d time.Duration) *MiddlewareBuilder {
	m.slowest = d
	return m
}

func (m *MiddlewareBuilder) Build() soap.Middleware {
	return func(next soap.Handler) soap.Handler {
		return func(ctx context.Context, inv *soap.Invocation) *soap.Result {
			start := time.Now()
			res := next(ctx, inv)
			err := res.Failure()
			duration := time.Since(start)

			var evt *zerolog.Event
			switch {
			case err != nil:
				evt = m.logger.Error().Err(err)
			case m.slowest > 0 && duration >= m.slowest:
				evt = m.logger.Warn()
			default:
				evt = m.logger.Debug()
			}
			evt = evt.Str("service", inv.Service).
				Str("operation", inv.Operation).
				Dur("duration", duration)
			if inv.Statement != nil {
				evt = evt.Str("statement", inv.Statement.String())
			}
			evt.Msg("soap call")
			return res
		}
	}
}
