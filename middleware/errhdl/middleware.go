package errhdl

import (
	"github.com/coderi421/adkit/web"
)

// MiddlewareBuilder replaces the body of responses with certain status
// codes, e.g. a friendly 404 page.
type MiddlewareBuilder struct {
	// 只能返回固定的内容，不能动态渲染
	resp        map[int][]byte
	contentType string
}

func NewMiddlewareBuilder() *MiddlewareBuilder {
	return &MiddlewareBuilder{
		resp:        map[int][]byte{},
		contentType: "text/html; charset=utf-8",
	}
}

// AddCode 注册需要拦截的响应码
func (m *MiddlewareBuilder) AddCode(status int, data []byte) *MiddlewareBuilder {
	m.resp[status] = data
	return m
}

func (m *MiddlewareBuilder) ContentType(ct string) *MiddlewareBuilder {
	m.contentType = ct
	return m
}

func (m *MiddlewareBuilder) Build() web.Middleware {
	return func(next web.HandleFunc) web.HandleFunc {
		return func(ctx *web.Context) {
			next(ctx)
			resp, ok := m.resp[ctx.RespStatusCode]
			if ok {
				// 只改 RespData，外层的中间件还能继续修改
				ctx.RespData = resp
				ctx.Resp.Header().Set("Content-Type", m.contentType)
			}
		}
	}
}
