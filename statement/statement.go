// Package statement builds the filter statements the ad service accepts on
// its "get by statement" and "perform action" operations.
//
// A Statement is a query fragment such as
//
//	WHERE status = :status ORDER BY name LIMIT 500 OFFSET 1000
//
// plus the bind variables its placeholders refer to. The text is sent to the
// service verbatim; it is never parsed locally beyond the LIMIT and OFFSET
// clauses that pagination rewrites.
package statement

import (
	"fmt"
	"strings"
)

// BindVariable 代表一个命名的绑定变量，对应 query 里面的 :name
type BindVariable struct {
	Name  string
	Value Value
}

// Var creates a BindVariable from an already typed value.
func Var(name string, v Value) BindVariable {
	return BindVariable{Name: name, Value: v}
}

// Bind converts v with ValueOf and names it.
func Bind(name string, v any) (BindVariable, error) {
	val, err := ValueOf(v)
	if err != nil {
		return BindVariable{}, err
	}
	return Var(name, val), nil
}

// Statement is a filter clause plus its bind variables.
// Treat it as a value: every method returns a new Statement and never
// modifies the receiver.
type Statement struct {
	Query  string
	Values []BindVariable
}

// New creates a Statement from literal query text. A variable whose name was
// already given replaces the earlier value but keeps its position.
func New(query string, vars ...BindVariable) Statement {
	st := Statement{Query: query}
	for _, v := range vars {
		st = st.with(v)
	}
	return st
}

// Bind returns a copy of s with the variable name set to v.
// v is converted with ValueOf.
func (s Statement) Bind(name string, v any) (Statement, error) {
	val, err := ValueOf(v)
	if err != nil {
		return s, err
	}
	return s.with(Var(name, val)), nil
}

// Lookup returns the value bound to name.
func (s Statement) Lookup(name string) (Value, bool) {
	for _, v := range s.Values {
		if v.Name == name {
			return v.Value, true
		}
	}
	return nil, false
}

// with copies the variable slice before touching it, so statements derived
// from the same parent never share backing arrays.
func (s Statement) with(v BindVariable) Statement {
	vals := make([]BindVariable, len(s.Values), len(s.Values)+1)
	copy(vals, s.Values)
	for i := range vals {
		if vals[i].Name == v.Name {
			vals[i] = v
			return Statement{Query: s.Query, Values: vals}
		}
	}
	return Statement{Query: s.Query, Values: append(vals, v)}
}

// String is meant for logs.
func (s Statement) String() string {
	if len(s.Values) == 0 {
		return s.Query
	}
	var sb strings.Builder
	sb.WriteString(s.Query)
	sb.WriteString(" [")
	for i, v := range s.Values {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%s=%s", v.Name, render(v.Value))
	}
	sb.WriteByte(']')
	return sb.String()
}

func render(v Value) string {
	switch val := v.(type) {
	case TextValue:
		return fmt.Sprintf("%q", val.Value)
	case NumberValue:
		return val.Value
	case BooleanValue:
		return fmt.Sprintf("%t", val.Value)
	case DateValue:
		return val.Value.String()
	case DateTimeValue:
		return val.Value.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}
