package statement

// Column 只用于拼接 WHERE / ORDER BY 中的列名
type Column struct {
	name string
}

func (c Column) expr() {}

func C(name string) Column {
	return Column{name: name}
}

// EQ 例如 C("id").EQ(12)
func (c Column) EQ(arg any) Predicate {
	return c.binary(opEQ, arg)
}

func (c Column) NEQ(arg any) Predicate {
	return c.binary(opNEQ, arg)
}

// LT 例如 C("id").LT(12)
func (c Column) LT(arg any) Predicate {
	return c.binary(opLT, arg)
}

func (c Column) LTE(arg any) Predicate {
	return c.binary(opLTE, arg)
}

func (c Column) GT(arg any) Predicate {
	return c.binary(opGT, arg)
}

func (c Column) GTE(arg any) Predicate {
	return c.binary(opGTE, arg)
}

// Like 例如 C("name").Like("sports%")
func (c Column) Like(pattern string) Predicate {
	return c.binary(opLike, pattern)
}

// In 例如 C("id").In(1, 2, 3)，每一个值都会变成一个绑定变量
func (c Column) In(args ...any) Predicate {
	items := make([]Expression, 0, len(args))
	for _, a := range args {
		items = append(items, exprOf(a))
	}
	return Predicate{
		left:  c,
		op:    opIn,
		right: list{items: items},
	}
}

func (c Column) IsNull() Predicate {
	return Predicate{left: c, op: opIsNull}
}

func (c Column) IsNotNull() Predicate {
	return Predicate{left: c, op: opIsNotNull}
}

func (c Column) binary(o op, arg any) Predicate {
	return Predicate{
		left:  c,
		op:    o,
		right: exprOf(arg), // 如果 arg 不是 Expression 类型 就让他变成这个类型
	}
}
