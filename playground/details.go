package playground

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

var errNotStruct = errors.New("playground: details need a struct")

// details 把一个实体展开成多行文本，显示在 [details] 下面。
// input 只能是结构体，或者结构体指针，可以是多重指针。
// 零值字段和不公开的字段都会被跳过
func details(input any) (string, error) {
	val := reflect.ValueOf(input)
	if !val.IsValid() {
		return "", errNotStruct
	}
	for val.Kind() == reflect.Pointer {
		if val.IsNil() {
			return "", errNotStruct
		}
		val = val.Elem()
	}
	if val.Kind() != reflect.Struct {
		return "", errNotStruct
	}

	var sb strings.Builder
	sb.WriteString(val.Type().Name())
	writeFields(&sb, val, 1)
	return sb.String(), nil
}

func writeFields(sb *strings.Builder, val reflect.Value, depth int) {
	typ := val.Type()
	indent := strings.Repeat("  ", depth)
	for i := 0; i < typ.NumField(); i++ {
		fd := typ.Field(i)
		if !fd.IsExported() {
			continue
		}
		fdVal := val.Field(i)
		if fdVal.IsZero() {
			continue
		}
		for fdVal.Kind() == reflect.Pointer {
			fdVal = fdVal.Elem()
		}

		sb.WriteByte('\n')
		sb.WriteString(indent)
		sb.WriteString(fd.Name)
		sb.WriteByte(':')
		// DateTime 之类的有自己的格式
		if s, ok := fdVal.Interface().(fmt.Stringer); ok {
			sb.WriteByte(' ')
			sb.WriteString(s.String())
			continue
		}
		if fdVal.Kind() == reflect.Struct {
			writeFields(sb, fdVal, depth+1)
			continue
		}
		fmt.Fprintf(sb, " %v", fdVal.Interface())
	}
}
