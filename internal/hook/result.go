package hook

import (
	"fmt"

	"github.com/spf13/cast"

	"github.com/creamcroissant/fieldconf/internal/record"
)

// Operation 是结果操作，取值集合固定。
type Operation string

const (
	OpDescription   Operation = "description"
	OpError         Operation = "error"
	OpForcedValue   Operation = "forcedvalue"
	OpSetRequired   Operation = "required"
	OpAllowedValues Operation = "values"
	OpDeriveValue   Operation = "value"
)

// DefaultError 是未给出信息时 error 结果写入的文案。
const DefaultError = ":fieldname has an unknown error"

// ValueSource 是值推导结果的载荷：Literal 或 Derive。
type ValueSource interface {
	resolve(rec record.Record, field Field) (any, error)
}

type literal struct {
	value any
}

func (l literal) resolve(record.Record, Field) (any, error) { return l.value, nil }

// DeriveFunc 依据记录与字段计算值。
type DeriveFunc func(rec record.Record, field Field) (any, error)

func (f DeriveFunc) resolve(rec record.Record, field Field) (any, error) { return f(rec, field) }

// Literal 返回固定值来源。
func Literal(v any) ValueSource { return literal{value: v} }

// Derive 返回计算值来源。
func Derive(fn func(rec record.Record, field Field) (any, error)) ValueSource {
	return DeriveFunc(fn)
}

// Result 是对字段描述或在途值的副作用。
type Result struct {
	subject   Target
	operation Operation
	payload   any
	source    ValueSource
}

// NewResult 构建作用于字段的结果。payload 为 nil 时使用操作的默认值。
func NewResult(subject Target, op Operation, payload any) (Result, error) {
	if subject.Kind == TargetValue {
		if src, ok := payload.(ValueSource); ok {
			return Result{subject: subject, operation: OpDeriveValue, source: src}, nil
		}
		return Result{subject: subject, operation: OpDeriveValue, source: Literal(payload)}, nil
	}
	if subject.Kind != TargetField {
		return Result{}, newError(ErrUnknownResultType, "%s", subject)
	}
	switch op {
	case OpDescription, OpError, OpForcedValue, OpSetRequired, OpAllowedValues:
	case OpDeriveValue:
		if src, ok := payload.(ValueSource); ok {
			return Result{subject: subject, operation: op, source: src}, nil
		}
		return Result{subject: subject, operation: op, payload: payload, source: Literal(payload)}, nil
	default:
		return Result{}, newError(ErrUnknownOperation, "%q", op)
	}
	return Result{subject: subject, operation: op, payload: payload}, nil
}

// ParseResult 从字符串形式构建结果，例如 (":field", "required", true)。
// ":value" 结果的 op 被忽略，载荷即推导来源。
func ParseResult(what, op string, payload any) (Result, error) {
	subject, err := ParseTarget(what)
	if err != nil {
		return Result{}, newError(ErrUnknownResultType, "%v", err)
	}
	return NewResult(subject, Operation(op), payload)
}

// SetDescription 修改字段描述。
func SetDescription(text string) Result {
	return Result{subject: FieldSelf(), operation: OpDescription, payload: text}
}

// SetError 给字段设置错误信息。
func SetError(msg string) Result {
	return Result{subject: FieldSelf(), operation: OpError, payload: msg}
}

// SetForcedValue 给字段设置强制值，nil 清除。
func SetForcedValue(v any) Result {
	return Result{subject: FieldSelf(), operation: OpForcedValue, payload: v}
}

// SetRequired 修改字段必填标记。
func SetRequired(required bool) Result {
	return Result{subject: FieldSelf(), operation: OpSetRequired, payload: required}
}

// SetAllowedValues 替换字段允许值集合。
func SetAllowedValues(values ...any) Result {
	return Result{subject: FieldSelf(), operation: OpAllowedValues, payload: values}
}

// DeriveValue 替换在途值。
func DeriveValue(src ValueSource) Result {
	return Result{subject: Value(), operation: OpDeriveValue, source: src}
}

func (r Result) Subject() Target { return r.subject }
func (r Result) Operation() Operation { return r.operation }

func (r Result) String() string {
	return fmt.Sprintf("Hook Result %s %s %v", r.subject, r.operation, r.payload)
}

// Apply 执行结果并返回（可能被替换的）上下文值。
func (r Result) Apply(rec record.Record, field Field, value any) (any, error) {
	switch r.subject.Kind {
	case TargetValue:
		if r.source == nil {
			return value, newError(ErrInvalidPayload, "%s has no value source", r)
		}
		return r.source.resolve(rec, field)
	case TargetField:
		if r.subject.Alias != "" {
			return value, newError(ErrUnsupportedFieldMutation, "result on %q", r.subject.Alias)
		}
		if field == nil {
			return value, newError(ErrFieldConditionNotAllowed, "%s needs a field", r)
		}
		return value, r.applyOperation(field)
	}
	return value, newError(ErrUnknownResultType, "%s", r.subject)
}

func (r Result) applyOperation(field Field) error {
	switch r.operation {
	case OpDescription:
		text, err := payloadString(r.payload, "")
		if err != nil {
			return err
		}
		field.SetDescription(text)
	case OpError:
		msg, err := payloadString(r.payload, DefaultError)
		if err != nil {
			return err
		}
		field.SetError(msg)
	case OpForcedValue:
		field.SetForcedValue(r.payload)
	case OpSetRequired:
		required := true
		if r.payload != nil {
			b, err := cast.ToBoolE(r.payload)
			if err != nil {
				return newError(ErrInvalidPayload, "required: %v", err)
			}
			required = b
		}
		field.SetRequired(required)
	case OpAllowedValues:
		values, err := payloadValues(r.payload)
		if err != nil {
			return err
		}
		field.SetValues(values)
	case OpDeriveValue:
		// 字段自身的值推导只为可能值集合提供候选。
	default:
		return newError(ErrUnknownOperation, "%q", r.operation)
	}
	return nil
}

// PossibleValues 返回该结果可能让字段取到的值。只统计作用于字段自身的 values 与字面值推导，
// ":value" 结果改写的是在途值，不计入。
func (r Result) PossibleValues() []any {
	if r.subject.Kind != TargetField {
		return nil
	}
	switch r.operation {
	case OpAllowedValues:
		values, _ := payloadValues(r.payload)
		return values
	case OpDeriveValue:
		if l, ok := r.source.(literal); ok && l.value != nil {
			return []any{l.value}
		}
	}
	return nil
}

func payloadString(payload any, def string) (string, error) {
	if payload == nil {
		return def, nil
	}
	s, err := cast.ToStringE(payload)
	if err != nil {
		return "", newError(ErrInvalidPayload, "%v", err)
	}
	return s, nil
}

func payloadValues(payload any) ([]any, error) {
	if payload == nil {
		return []any{}, nil
	}
	values, ok := ToSlice(payload)
	if !ok {
		return nil, newError(ErrInvalidPayload, "values must be a list, got %T", payload)
	}
	return append([]any(nil), values...), nil
}
