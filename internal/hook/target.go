package hook

import (
	"fmt"
	"regexp"
)

// TargetKind 区分条件或结果作用的对象。
type TargetKind int

const (
	// TargetField 作用于字段：无别名时为当前上下文值（条件）或字段自身（结果）。
	TargetField TargetKind = iota + 1
	// TargetValue 作用于外部传入的值（条件）或值推导（结果）。
	TargetValue
)

// Target 是带标签的引用：FieldSelf()、FieldNamed(alias) 或 Value()。
type Target struct {
	Kind  TargetKind
	Alias string
}

// FieldSelf 指向当前字段。
func FieldSelf() Target { return Target{Kind: TargetField} }

// FieldNamed 指向记录上的另一个属性。
func FieldNamed(alias string) Target { return Target{Kind: TargetField, Alias: alias} }

// Value 指向外部传入的值。
func Value() Target { return Target{Kind: TargetValue} }

// Named 判断是否引用了具名字段。
func (t Target) Named() bool {
	return t.Kind == TargetField && t.Alias != ""
}

func (t Target) String() string {
	switch t.Kind {
	case TargetField:
		if t.Alias != "" {
			return ":field:" + t.Alias
		}
		return ":field"
	case TargetValue:
		return ":value"
	}
	return fmt.Sprintf(":unknown(%d)", int(t.Kind))
}

var referencePattern = regexp.MustCompile(`^:([^:]+)(:(.+))?$`)

// ParseTarget 解析 ":field"、":field:<alias>" 与 ":value"。
func ParseTarget(what string) (Target, error) {
	m := referencePattern.FindStringSubmatch(what)
	if m == nil {
		return Target{}, fmt.Errorf("unparsable target %q", what)
	}
	switch m[1] {
	case "field":
		return Target{Kind: TargetField, Alias: m[3]}, nil
	case "value":
		if m[2] != "" {
			return Target{}, fmt.Errorf("target %q: :value takes no alias", what)
		}
		return Value(), nil
	}
	return Target{}, fmt.Errorf("unknown target type %q", m[1])
}

// fieldRef 是条件操作数中的 ":field:<alias>" 引用。
type fieldRef struct {
	alias string
}

// parseOperand 把形如 ":field:<alias>" 的字符串转换为字段引用，其余值原样返回。
func parseOperand(v any) (any, error) {
	s, ok := v.(string)
	if !ok {
		return v, nil
	}
	m := referencePattern.FindStringSubmatch(s)
	if m == nil {
		return v, nil
	}
	if m[1] != "field" {
		return nil, newError(ErrInvalidOperand, "unknown value type %q", m[1])
	}
	if m[3] == "" {
		return nil, newError(ErrInvalidOperand, ":field should be followed by an alias")
	}
	return fieldRef{alias: m[3]}, nil
}
