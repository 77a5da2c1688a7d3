package statement

import "github.com/coderi421/adkit/statement/internal/errs"

// 将内部的 sentinel error 暴露出去
var (
	// ErrMalformedClause 代表 LIMIT / OFFSET 子句无法被安全地改写
	ErrMalformedClause = errs.ErrMalformedClause
	// ErrUnsupportedValue 代表无法转换为绑定变量的 Go 类型
	ErrUnsupportedValue = errs.ErrUnsupportedValue
	ErrInvalidColumn    = errs.ErrInvalidColumn
	// ErrConflictingVariable 代表同一个名字绑定了两个不同的值
	ErrConflictingVariable = errs.ErrConflictingVariable
	ErrEmptyInList         = errs.ErrEmptyInList
)
