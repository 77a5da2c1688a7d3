package statement

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/coderi421/adkit/statement/internal/errs"
)

var columnPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.]*$`)

// Builder renders predicates, ordering and paging into a Statement.
// Values used in predicates become bind variables, so callers no longer
// concatenate ids into the query text.
//
//	st, err := NewBuilder().
//		Where(C("status").EQ("ACTIVE"), C("id").In(1, 2)).
//		OrderBy(Asc("name")).
//		Limit(500).
//		Build()
//
// produces
//
//	WHERE (status = :value1) AND (id IN (:value2,:value3)) ORDER BY name ASC LIMIT 500
type Builder struct {
	sb   strings.Builder
	vars []BindVariable
	seq  int

	where   []Predicate
	orderBy []OrderBy
	limit   int
	offset  int
}

func NewBuilder() *Builder {
	return &Builder{}
}

// Where 多次调用会被 AND 起来
func (b *Builder) Where(ps ...Predicate) *Builder {
	b.where = append(b.where, ps...)
	return b
}

func (b *Builder) OrderBy(obs ...OrderBy) *Builder {
	b.orderBy = append(b.orderBy, obs...)
	return b
}

// Limit 0 代表不输出 LIMIT
func (b *Builder) Limit(n int) *Builder {
	b.limit = n
	return b
}

// Offset 0 代表不输出 OFFSET
func (b *Builder) Offset(n int) *Builder {
	b.offset = n
	return b
}

// Build renders the statement. It can be called more than once.
func (b *Builder) Build() (Statement, error) {
	b.sb.Reset()
	b.vars = nil
	b.seq = 0

	if len(b.where) > 0 {
		b.sb.WriteString("WHERE ")
		if err := b.buildPredicates(b.where); err != nil {
			return Statement{}, err
		}
	}

	if len(b.orderBy) > 0 {
		b.space()
		b.sb.WriteString("ORDER BY ")
		for i, ob := range b.orderBy {
			if i > 0 {
				b.sb.WriteString(", ")
			}
			if err := b.buildColumn(ob.col); err != nil {
				return Statement{}, err
			}
			b.sb.WriteByte(' ')
			b.sb.WriteString(string(ob.dir))
		}
	}

	// PQL 只接受字面量的 LIMIT / OFFSET
	if b.limit > 0 {
		b.space()
		b.sb.WriteString("LIMIT ")
		b.sb.WriteString(strconv.Itoa(b.limit))
	}
	if b.offset > 0 {
		b.space()
		b.sb.WriteString("OFFSET ")
		b.sb.WriteString(strconv.Itoa(b.offset))
	}

	return Statement{Query: b.sb.String(), Values: b.vars}, nil
}

func (b *Builder) space() {
	if b.sb.Len() > 0 {
		b.sb.WriteByte(' ')
	}
}

// buildPredicates joins the predicates with AND before rendering them.
func (b *Builder) buildPredicates(ps []Predicate) error {
	p := ps[0]
	for i := 1; i < len(ps); i++ {
		p = p.And(ps[i])
	}
	return b.buildExpression(p)
}

// buildExpression 递归构造表达式
// Column 代表是列名，直接拼接列名
// value 代表参数，加入绑定变量列表
// Predicate 代表一个查询条件：子节点如果也是 Predicate，那么加上括号
func (b *Builder) buildExpression(e Expression) error {
	if e == nil {
		return nil
	}

	switch expr := e.(type) {
	case Column:
		return b.buildColumn(expr)
	case value:
		b.seq++
		return b.bind("value"+strconv.Itoa(b.seq), expr.val)
	case namedValue:
		return b.bind(expr.name, expr.val)
	case RawExpr:
		b.sb.WriteString(expr.raw)
		for _, v := range expr.vars {
			if err := b.addVar(v); err != nil {
				return err
			}
		}
	case list:
		if len(expr.items) == 0 {
			return errs.NewErrEmptyInList(b.sb.String())
		}
		b.sb.WriteByte('(')
		for i, item := range expr.items {
			if i > 0 {
				b.sb.WriteByte(',')
			}
			if err := b.buildExpression(item); err != nil {
				return err
			}
		}
		b.sb.WriteByte(')')
	case Predicate:
		if err := b.buildSubExpression(expr.left); err != nil {
			return err
		}
		if expr.op == "" {
			// 只有左边，例如 Raw(...).AsPredicate()
			return nil
		}
		if expr.left != nil {
			b.sb.WriteByte(' ')
		}
		b.sb.WriteString(expr.op.String())
		if expr.right == nil {
			// IS NULL 这类没有右边
			return nil
		}
		b.sb.WriteByte(' ')
		return b.buildSubExpression(expr.right)
	default:
		return errs.NewErrUnsupportedExpression(expr)
	}
	return nil
}

// buildSubExpression 如果是复杂结构，则在最外边套一层括号
func (b *Builder) buildSubExpression(e Expression) error {
	_, ok := e.(Predicate)
	if ok {
		b.sb.WriteByte('(')
	}
	if err := b.buildExpression(e); err != nil {
		return err
	}
	if ok {
		b.sb.WriteByte(')')
	}
	return nil
}

func (b *Builder) buildColumn(c Column) error {
	if !columnPattern.MatchString(c.name) {
		return errs.NewErrInvalidColumn(c.name)
	}
	b.sb.WriteString(c.name)
	return nil
}

func (b *Builder) bind(name string, val any) error {
	v, err := ValueOf(val)
	if err != nil {
		return err
	}
	b.sb.WriteByte(':')
	b.sb.WriteString(name)
	return b.addVar(Var(name, v))
}

func (b *Builder) addVar(v BindVariable) error {
	for _, exist := range b.vars {
		if exist.Name != v.Name {
			continue
		}
		if exist.Value != v.Value {
			return errs.NewErrConflictingVariable(v.Name)
		}
		return nil
	}
	if b.vars == nil {
		b.vars = make([]BindVariable, 0, 8)
	}
	b.vars = append(b.vars, v)
	return nil
}
