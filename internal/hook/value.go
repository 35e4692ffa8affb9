package hook

import (
	"reflect"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cast"
)

// LooseEqual 按值（而非身份）比较两个配置值。
//
// nil 与空值相等；任一侧为 bool 时按真值比较；两侧都像数字时按数值比较；
// 其余情况比较字符串形式。
func LooseEqual(a, b any) bool {
	if a == nil || b == nil {
		return IsEmpty(a) && IsEmpty(b)
	}
	if ab, ok := a.(bool); ok {
		return ab == truthy(b)
	}
	if bb, ok := b.(bool); ok {
		return bb == truthy(a)
	}
	if af, ok := number(a); ok {
		if bf, ok := number(b); ok {
			return af == bf
		}
	}
	return ToString(a) == ToString(b)
}

// IsEmpty 判断值是否为空：nil、""、false 或空集合。
func IsEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case bool:
		return !t
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len() == 0
	case reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

// Contains 判断 set 中是否有与 v 宽松相等的值。
func Contains(set []any, v any) bool {
	return lo.ContainsBy(set, func(item any) bool {
		return LooseEqual(item, v)
	})
}

// Union 合并多个值集合，去重并保留首次出现的顺序。
func Union(sets ...[]any) []any {
	var out []any
	for _, set := range sets {
		for _, v := range set {
			if !Contains(out, v) {
				out = append(out, v)
			}
		}
	}
	return out
}

// ToString 返回值的字符串形式，nil 为空串。
func ToString(v any) string {
	if v == nil {
		return ""
	}
	if s, err := cast.ToStringE(v); err == nil {
		return s
	}
	if items, ok := ToSlice(v); ok {
		return strings.Join(lo.Map(items, func(item any, _ int) string { return ToString(item) }), ",")
	}
	return reflect.ValueOf(v).String()
}

// ToSlice 把任意切片或数组转换为 []any。
func ToSlice(v any) ([]any, bool) {
	if v == nil {
		return nil, false
	}
	if items, ok := v.([]any); ok {
		return items, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

func truthy(v any) bool {
	if s, ok := v.(string); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
			return b
		}
		return s != "" && s != "0"
	}
	if b, err := cast.ToBoolE(v); err == nil {
		return b
	}
	return !IsEmpty(v)
}

func number(v any) (float64, bool) {
	switch t := v.(type) {
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	case bool:
		return 0, false
	}
	f, err := cast.ToFloat64E(v)
	return f, err == nil
}
