package errs

import (
	"errors"
	"fmt"
)

var (
	ErrMalformedClause       = errors.New("statement: malformed clause")
	ErrUnsupportedValue      = errors.New("statement: unsupported bind value")
	ErrInvalidColumn         = errors.New("statement: invalid column name")
	ErrConflictingVariable   = errors.New("statement: conflicting bind variable")
	ErrEmptyInList           = errors.New("statement: empty IN list")
	ErrUnsupportedExpression = errors.New("statement: unsupported expression")
)

// NewErrMalformedClause reports that kw could not be located or rewritten in query.
func NewErrMalformedClause(kw string, query string, reason string) error {
	return fmt.Errorf("%w: %s in %q: %s", ErrMalformedClause, kw, query, reason)
}

func NewErrUnsupportedValue(val any) error {
	return fmt.Errorf("%w: %T", ErrUnsupportedValue, val)
}

func NewErrInvalidColumn(name string) error {
	return fmt.Errorf("%w: %q", ErrInvalidColumn, name)
}

// NewErrConflictingVariable 同名的绑定变量出现了不同的值
func NewErrConflictingVariable(name string) error {
	return fmt.Errorf("%w: %s", ErrConflictingVariable, name)
}

func NewErrEmptyInList(col string) error {
	return fmt.Errorf("%w: %s", ErrEmptyInList, col)
}

func NewErrUnsupportedExpression(expr any) error {
	return fmt.Errorf("%w: %T", ErrUnsupportedExpression, expr)
}
