package hook

import (
	"errors"

	"github.com/creamcroissant/fieldconf/internal/record"
)

// Hook 把一组条件（全部成立）与一组结果（按序执行）配对。
type Hook struct {
	conditions []Condition
	results    []Result
	bypass     bool
	owner      Owner
	err        error
}

// New 返回空 hook，可链式追加条件与结果。
func New() *Hook {
	return &Hook{}
}

// Condition 以字符串形式追加条件；解析错误延后到 Err 返回。
func (h *Hook) Condition(what, op string, value any) *Hook {
	c, err := ParseCondition(what, op, value)
	if err != nil {
		h.err = errors.Join(h.err, err)
		return h
	}
	h.conditions = append(h.conditions, c)
	return h
}

// Result 以字符串形式追加结果；解析错误延后到 Err 返回。
func (h *Hook) Result(what, op string, value any) *Hook {
	r, err := ParseResult(what, op, value)
	if err != nil {
		h.err = errors.Join(h.err, err)
		return h
	}
	h.results = append(h.results, r)
	return h
}

// When 追加已构建的条件。
func (h *Hook) When(conditions ...Condition) *Hook {
	h.conditions = append(h.conditions, conditions...)
	return h
}

// Then 追加已构建的结果。
func (h *Hook) Then(results ...Result) *Hook {
	h.results = append(h.results, results...)
	return h
}

// Bypass 标记该校验 hook 触发后不阻止后续 hook。
func (h *Hook) Bypass() *Hook {
	h.bypass = true
	return h
}

// Err 返回构建期间累积的错误。
func (h *Hook) Err() error { return h.err }

func (h *Hook) Bypassed() bool { return h.bypass }
func (h *Hook) Conditions() []Condition { return append([]Condition(nil), h.conditions...) }
func (h *Hook) Results() []Result { return append([]Result(nil), h.results...) }

// AddNamespace 给所有条件中的具名字段加上命名空间前缀。
func (h *Hook) AddNamespace(namespace string) *Hook {
	for i := range h.conditions {
		h.conditions[i] = h.conditions[i].withNamespace(namespace)
	}
	return h
}

// Clone 返回不共享切片的副本，未关联任何 owner。
func (h *Hook) Clone() *Hook {
	return &Hook{
		conditions: append([]Condition(nil), h.conditions...),
		results:    append([]Result(nil), h.results...),
		bypass:     h.bypass,
		err:        h.err,
	}
}

// Run 在字段上执行 hook，返回是否触发。
func (h *Hook) Run(rec record.Record, field Field) (bool, error) {
	ok, err := h.holds(rec, field, nil)
	if err != nil || !ok {
		return false, err
	}
	for _, r := range h.results {
		if _, err := r.Apply(rec, field, nil); err != nil {
			return false, err
		}
	}
	return true, nil
}

// RunUpdate 以上下文值求条件（无字段上下文），成立时依次推导新值。
// field 为 nil 时使用 owner 的新快照。
func (h *Hook) RunUpdate(rec record.Record, field Field, value any) (any, bool, error) {
	ok, err := h.holds(rec, nil, value)
	if err != nil || !ok {
		return value, false, err
	}
	if field == nil && h.owner != nil {
		field = h.owner.State()
	}
	for _, r := range h.results {
		value, err = r.Apply(rec, field, value)
		if err != nil {
			return value, false, err
		}
	}
	return value, true, nil
}

// PossibleValues 汇总所有结果的可能值。
func (h *Hook) PossibleValues() []any {
	var values []any
	for _, r := range h.results {
		values = Union(values, r.PossibleValues())
	}
	return values
}

// holds 按顺序求值，遇到第一个不成立的条件即停止。
func (h *Hook) holds(rec record.Record, field Field, value any) (bool, error) {
	for _, c := range h.conditions {
		ok, err := c.Evaluate(rec, field, value)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}
