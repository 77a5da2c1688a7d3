package statement

import (
	"reflect"
	"strconv"
	"time"

	"github.com/coderi421/adkit/datetime"
	"github.com/coderi421/adkit/statement/internal/errs"
)

// Value is the typed payload of a bind variable. The concrete type decides
// which wire type the remote service sees.
type Value interface {
	// Type returns the wire type name, e.g. "TextValue".
	Type() string
	value()
}

type TextValue struct {
	Value string
}

func (TextValue) Type() string { return "TextValue" }
func (TextValue) value()       {}

// NumberValue keeps the decimal text as given so that large ids survive the
// round trip unchanged.
type NumberValue struct {
	Value string
}

func (NumberValue) Type() string { return "NumberValue" }
func (NumberValue) value()       {}

type BooleanValue struct {
	Value bool
}

func (BooleanValue) Type() string { return "BooleanValue" }
func (BooleanValue) value()       {}

type DateValue struct {
	Value datetime.Date
}

func (DateValue) Type() string { return "DateValue" }
func (DateValue) value()       {}

type DateTimeValue struct {
	Value datetime.DateTime
}

func (DateTimeValue) Type() string { return "DateTimeValue" }
func (DateTimeValue) value()       {}

type numeric interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

func Text(s string) TextValue { return TextValue{Value: s} }

func Bool(b bool) BooleanValue { return BooleanValue{Value: b} }

// Number 例如 Number(int64(12)) 或者 Number(0.5)
func Number[N numeric](n N) NumberValue {
	v, _ := numberOf(reflect.ValueOf(n))
	return v
}

// numberOf 按照 Kind 处理，这样 type ID int64 这种自定义类型也可以使用
func numberOf(rv reflect.Value) (NumberValue, bool) {
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return NumberValue{Value: strconv.FormatInt(rv.Int(), 10)}, true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return NumberValue{Value: strconv.FormatUint(rv.Uint(), 10)}, true
	case reflect.Float32:
		return NumberValue{Value: strconv.FormatFloat(rv.Float(), 'f', -1, 32)}, true
	case reflect.Float64:
		return NumberValue{Value: strconv.FormatFloat(rv.Float(), 'f', -1, 64)}, true
	default:
		return NumberValue{}, false
	}
}

// ValueOf converts a Go scalar into a Value.
// It accepts strings, every integer and float kind, bool, time.Time,
// datetime.Date, datetime.DateTime and values that already implement Value.
func ValueOf(val any) (Value, error) {
	switch v := val.(type) {
	case Value:
		return v, nil
	case string:
		return TextValue{Value: v}, nil
	case bool:
		return BooleanValue{Value: v}, nil
	case time.Time:
		return DateTimeValue{Value: datetime.ToDateTime(v)}, nil
	case datetime.Date:
		return DateValue{Value: v}, nil
	case datetime.DateTime:
		return DateTimeValue{Value: v}, nil
	}
	if val == nil {
		return nil, errs.NewErrUnsupportedValue(val)
	}
	if n, ok := numberOf(reflect.ValueOf(val)); ok {
		return n, nil
	}
	return nil, errs.NewErrUnsupportedValue(val)
}
