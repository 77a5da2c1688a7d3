package statement

// RawExpr 代表一个原生表达式
// 意味着 builder 不会对它进行任何处理，只会把绑定变量合并进去
type RawExpr struct {
	raw  string
	vars []BindVariable
}

func (r RawExpr) expr() {}

func (r RawExpr) AsPredicate() Predicate {
	return Predicate{
		left: r,
	}
}

// Raw 创建一个 RawExpr，例如
// Raw("lastModifiedDateTime > :since", Var("since", DateTimeValue{...}))
func Raw(expr string, vars ...BindVariable) RawExpr {
	return RawExpr{
		raw:  expr,
		vars: vars,
	}
}

// value 会被渲染成自动命名的绑定变量 :value1, :value2 ...
type value struct {
	val any
}

func (v value) expr() {}

func valueOf(val any) value {
	return value{val: val}
}

// namedValue 使用用户指定的名字
type namedValue struct {
	name string
	val  any
}

func (n namedValue) expr() {}

// Named binds v under an explicit name instead of a generated one.
// Using the same name twice is allowed as long as the values are equal.
func Named(name string, v any) Expression {
	return namedValue{name: name, val: v}
}

// list 用于 IN (...)
type list struct {
	items []Expression
}

func (l list) expr() {}

type direction string

const (
	asc  direction = "ASC"
	desc direction = "DESC"
)

type OrderBy struct {
	col Column
	dir direction
}

func Asc(col string) OrderBy {
	return OrderBy{col: C(col), dir: asc}
}

func Desc(col string) OrderBy {
	return OrderBy{col: C(col), dir: desc}
}
