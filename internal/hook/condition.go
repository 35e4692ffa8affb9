package hook

import (
	"fmt"
	"regexp"

	"github.com/creamcroissant/fieldconf/internal/record"
)

// Operator 是条件运算符。
type Operator string

const (
	OpEq            Operator = "="
	OpNeq           Operator = "!="
	OpStartsWith    Operator = "^="
	OpNotStartsWith Operator = "!^="
	OpEndsWith      Operator = "$="
	OpNotEndsWith   Operator = "!$="
	OpMatch         Operator = "match"
	OpNotMatch      Operator = "!match"
	OpRequired      Operator = "required"
)

var operators = map[Operator]struct{}{
	OpEq: {}, OpNeq: {}, OpStartsWith: {}, OpNotStartsWith: {}, OpEndsWith: {},
	OpNotEndsWith: {}, OpMatch: {}, OpNotMatch: {}, OpRequired: {},
}

// ParseOperator 校验运算符名称。
func ParseOperator(op string) (Operator, error) {
	if _, ok := operators[Operator(op)]; !ok {
		return "", newError(ErrUnknownOperator, "%q", op)
	}
	return Operator(op), nil
}

// Condition 对记录、字段与上下文值求布尔谓词。
type Condition struct {
	subject  Target
	operator Operator
	operand  any
}

// NewCondition 构建条件；操作数为 ":field:<alias>" 时在求值时从记录读取。
func NewCondition(subject Target, op Operator, operand any) (Condition, error) {
	if _, ok := operators[op]; !ok {
		return Condition{}, newError(ErrUnknownOperator, "%q", op)
	}
	if subject.Kind != TargetField && subject.Kind != TargetValue {
		return Condition{}, newError(ErrUnknownConditionType, "%s", subject)
	}
	parsed, err := parseOperand(operand)
	if err != nil {
		return Condition{}, err
	}
	return Condition{subject: subject, operator: op, operand: parsed}, nil
}

// ParseCondition 从字符串形式构建条件，例如 (":field:country", "=", "FR")。
func ParseCondition(what, op string, operand any) (Condition, error) {
	subject, err := ParseTarget(what)
	if err != nil {
		return Condition{}, newError(ErrUnknownConditionType, "%v", err)
	}
	operator, err := ParseOperator(op)
	if err != nil {
		return Condition{}, err
	}
	return NewCondition(subject, operator, operand)
}

func (c Condition) Subject() Target { return c.subject }
func (c Condition) Operator() Operator { return c.operator }

func (c Condition) String() string {
	operand := c.operand
	if ref, ok := operand.(fieldRef); ok {
		operand = ":field:" + ref.alias
	}
	return fmt.Sprintf("Hook Condition %s %s %v", c.subject, c.operator, operand)
}

// Evaluate 判断条件是否成立。field 可为 nil（更新阶段），value 为上下文值。
func (c Condition) Evaluate(rec record.Record, field Field, value any) (bool, error) {
	switch c.subject.Kind {
	case TargetField:
		if c.subject.Alias != "" {
			if !rec.Has(c.subject.Alias) {
				return false, newError(ErrMissingField, "condition on %q", c.subject.Alias)
			}
			return c.applies(rec.Get(c.subject.Alias), rec, field)
		}
		return c.applies(value, rec, field)
	case TargetValue:
		if value == nil {
			return false, newError(ErrMissingValue, "value condition %s", c)
		}
		return c.applies(value, rec, field)
	}
	return false, newError(ErrUnknownConditionType, "%s", c.subject)
}

func (c Condition) applies(value any, rec record.Record, field Field) (bool, error) {
	switch c.operator {
	case OpEq, OpNeq:
		operand, err := c.resolve(rec)
		if err != nil {
			return false, err
		}
		return LooseEqual(value, operand) == (c.operator == OpEq), nil
	case OpStartsWith, OpNotStartsWith:
		ok, err := c.matches(value, rec, "^%s")
		return ok == (c.operator == OpStartsWith), err
	case OpEndsWith, OpNotEndsWith:
		ok, err := c.matches(value, rec, "%s$")
		return ok == (c.operator == OpEndsWith), err
	case OpMatch, OpNotMatch:
		ok, err := c.matches(value, rec, "%s")
		return ok == (c.operator == OpMatch), err
	case OpRequired:
		if field == nil {
			return false, newError(ErrFieldConditionNotAllowed, "%s needs a field", c)
		}
		expected := true
		if b, ok := c.operand.(bool); ok {
			expected = b
		}
		return field.Required() == expected, nil
	}
	return false, newError(ErrUnknownOperator, "%q", c.operator)
}

func (c Condition) matches(value any, rec record.Record, layout string) (bool, error) {
	operand, err := c.resolve(rec)
	if err != nil {
		return false, err
	}
	pattern := fmt.Sprintf(layout, ToString(operand))
	re, err := regexp.Compile(pattern)
	if err != nil {
		return false, newError(ErrInvalidPattern, "%q: %v", pattern, err)
	}
	return re.MatchString(ToString(value)), nil
}

// resolve 返回操作数，字段引用在此时从记录读取。
func (c Condition) resolve(rec record.Record) (any, error) {
	ref, ok := c.operand.(fieldRef)
	if !ok {
		return c.operand, nil
	}
	if !rec.Has(ref.alias) {
		return nil, newError(ErrMissingField, "operand %q", ref.alias)
	}
	return rec.Get(ref.alias), nil
}

// withNamespace 把具名字段引用改写为 <namespace>_<alias>。
func (c Condition) withNamespace(namespace string) Condition {
	if c.subject.Named() {
		c.subject.Alias = namespace + "_" + c.subject.Alias
	}
	if ref, ok := c.operand.(fieldRef); ok {
		c.operand = fieldRef{alias: namespace + "_" + ref.alias}
	}
	return c
}
