package recovery

import (
	"net/http"
	"runtime/debug"

	"github.com/coderi421/adkit/web"
	"github.com/rs/zerolog"
)

// MiddlewareBuilder turns a panic in the handler into a fixed response.
type MiddlewareBuilder struct {
	StatusCode int
	Data       []byte
	Logger     zerolog.Logger
}

func NewBuilder(logger zerolog.Logger) *MiddlewareBuilder {
	return &MiddlewareBuilder{
		StatusCode: http.StatusInternalServerError,
		Data:       []byte("Internal Server Error"),
		Logger:     logger,
	}
}

func (m *MiddlewareBuilder) Build() web.Middleware {
	return func(next web.HandleFunc) web.HandleFunc {
		return func(ctx *web.Context) {
			defer func() {
				if err := recover(); err != nil {
					ctx.RespData = m.Data
					ctx.RespStatusCode = m.StatusCode
					// 万一日志也 panic，那也无能为力了
					m.Logger.Error().
						Interface("panic", err).
						Str("path", ctx.Req.URL.Path).
						Bytes("stack", debug.Stack()).
						Msg("recovered from panic")
				}
			}()
			next(ctx)
		}
	}
}
