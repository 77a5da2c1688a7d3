package soap

import (
	"context"
	"errors"

	"github.com/coderi421/adkit/statement"
)

// Invocation 中间件的上下文，冗余了 Statement，
// 是因为还没有发出请求前，有的中间件（例如 querylog）需要使用这些信息
type Invocation struct {
	// Service 例如 InventoryService
	Service string
	// Operation 例如 getAdUnitsByStatement
	Operation string
	// Request 会被编码为 <Operation> 元素的内容，nil 代表没有参数
	Request any
	// Response 是 rval 解码的目标，必须是指针，nil 代表忽略返回值
	Response any
	// Statement 可选，只用于中间件观察
	Statement *statement.Statement
}

type Result struct {
	// Response 就是 Invocation.Response，解码完成之后的结果
	Response any
	Err      error
}

// ErrNoResult is reported when a middleware answers with a nil *Result.
var ErrNoResult = errors.New("soap: middleware returned no result")

// Failure returns the call's error. A nil Result reports ErrNoResult.
func (r *Result) Failure() error {
	if r == nil {
		return ErrNoResult
	}
	return r.Err
}

type Handler func(ctx context.Context, inv *Invocation) *Result

type Middleware func(next Handler) Handler
