package accesslog

import (
	"time"

	"github.com/coderi421/adkit/web"
	"github.com/rs/zerolog"
)

type MiddlewareBuilder struct {
	logger zerolog.Logger
	// 不记录的路径，例如 /static/*
	skip map[string]struct{}
}

func NewBuilder(logger zerolog.Logger) *MiddlewareBuilder {
	return &MiddlewareBuilder{
		logger: logger,
		skip:   map[string]struct{}{},
	}
}

// Skip 命中这些路由的请求不会记录，按 MatchedRoute 比较
func (m *MiddlewareBuilder) Skip(routes ...string) *MiddlewareBuilder {
	for _, r := range routes {
		m.skip[r] = struct{}{}
	}
	return m
}

func (m *MiddlewareBuilder) Build() web.Middleware {
	return func(next web.HandleFunc) web.HandleFunc {
		return func(ctx *web.Context) {
			start := time.Now()
			defer func() {
				if _, ok := m.skip[ctx.MatchedRoute]; ok {
					return
				}
				evt := m.logger.Info()
				if ctx.RespStatusCode >= 500 {
					evt = m.logger.Error()
				}
				evt.Str("host", ctx.Req.Host).
					Str("route", ctx.MatchedRoute).
					Str("http_method", ctx.Req.Method).
					Str("path", ctx.Req.URL.Path).
					Int("status", ctx.RespStatusCode).
					Int("size", len(ctx.RespData)).
					Dur("duration", time.Since(start)).
					Msg("access")
			}()
			next(ctx)
		}
	}
}
