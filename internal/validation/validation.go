// 文件路径: internal/validation/validation.go
// 模块说明: 这是 internal 模块里的 validation 逻辑，下面的注释会用非常通俗的中文帮你理解每一步。
package validation

import (
	"fmt"
	"maps"
	"regexp"
	"sync"

	"github.com/creamcroissant/fieldconf/internal/hook"
	"github.com/creamcroissant/fieldconf/internal/record"
)

// 内置具名规则。
const (
	RuleNotEmpty = "not_empty"
	RuleRegex    = "regex"
)

// Func 是字段级回调规则。返回 false 表示拒绝，拒绝原因需自行通过 v.Error 上报；
// 返回 error 表示配置错误，会中止整个校验。
type Func func(v *Validation, alias string, value any, rec record.Record) (bool, error)

// ValueFunc 从记录读取字段的待校验值。
type ValueFunc func(rec record.Record) (any, error)

// Rule 是登记在字段上的一条规则：具名规则带位置参数，或是回调。
type Rule struct {
	Name string `json:"name" yaml:"name"`
	Args []any  `json:"args,omitempty" yaml:"args,omitempty"`
	Func Func   `json:"-" yaml:"-"`
}

// Validation 是一次性的校验规则容器，按字段登记顺序执行。
type Validation struct {
	namespace string
	order     []string
	rules     map[string][]Rule
	readers   map[string]ValueFunc
	errors    Errors
	external  Errors
	patterns  map[string]*regexp.Regexp
	mu        sync.Mutex
}

// New 创建命名空间为 namespace（通常是模型别名）的容器。
func New(namespace string) *Validation {
	return &Validation{
		namespace: namespace,
		rules:     make(map[string][]Rule),
		readers:   make(map[string]ValueFunc),
		patterns:  make(map[string]*regexp.Regexp),
	}
}

// Namespace 返回错误路径使用的命名空间。
func (v *Validation) Namespace() string { return v.namespace }

// Rule 给字段登记具名规则。
func (v *Validation) Rule(alias, name string, args ...any) *Validation {
	return v.add(alias, Rule{Name: name, Args: args})
}

// Callback 给字段登记回调规则。
func (v *Validation) Callback(alias string, fn Func) *Validation {
	return v.add(alias, Rule{Func: fn})
}

// Reader 指定字段取值方式，未指定时使用 rec.Get(alias)。关联字段需要通过它读取主键。
func (v *Validation) Reader(alias string, fn ValueFunc) *Validation {
	v.readers[alias] = fn
	return v
}

// Rules 返回字段已登记的规则副本。
func (v *Validation) Rules(alias string) []Rule {
	return append([]Rule(nil), v.rules[alias]...)
}

// Fields 返回已登记规则的字段，按首次登记顺序。
func (v *Validation) Fields() []string {
	return append([]string(nil), v.order...)
}

func (v *Validation) add(alias string, r Rule) *Validation {
	if _, ok := v.rules[alias]; !ok {
		v.order = append(v.order, alias)
	}
	v.rules[alias] = append(v.rules[alias], r)
	return v
}

// Error 上报字段拒绝，实现 hook.Reporter。
func (v *Validation) Error(alias, code string, params map[string]string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.errors = append(v.errors, FieldError{
		Namespace: v.namespace,
		Field:     alias,
		Code:      code,
		Params:    maps.Clone(params),
	})
}

// AddExternal 记录来自容器之外的拒绝，例如存储层的唯一性冲突。
func (v *Validation) AddExternal(alias, code string, params map[string]string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.external = append(v.external, FieldError{
		Namespace: v.namespace,
		Field:     alias,
		Code:      code,
		Params:    maps.Clone(params),
		External:  true,
	})
}

// Errors 返回字段拒绝，外部拒绝排在最后。
func (v *Validation) Errors() Errors {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make(Errors, 0, len(v.errors)+len(v.external))
	out = append(out, v.errors...)
	return append(out, v.external...)
}

// Check 依次校验每个字段；字段遇到第一条失败的规则即停止。
// 返回值表示是否全部通过；error 只用于配置错误。
func (v *Validation) Check(rec record.Record) (bool, error) {
	v.mu.Lock()
	v.errors = nil
	v.mu.Unlock()

	for _, alias := range v.order {
		value, err := v.value(alias, rec)
		if err != nil {
			return false, fmt.Errorf("validate %s.%s: %w", v.namespace, alias, err)
		}
		for _, r := range v.rules[alias] {
			ok, err := v.apply(r, alias, value, rec)
			if err != nil {
				return false, fmt.Errorf("validate %s.%s: %w", v.namespace, alias, err)
			}
			if !ok {
				break
			}
		}
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.errors) == 0 && len(v.external) == 0, nil
}

func (v *Validation) value(alias string, rec record.Record) (any, error) {
	if fn, ok := v.readers[alias]; ok {
		return fn(rec)
	}
	return rec.Get(alias), nil
}

func (v *Validation) apply(r Rule, alias string, value any, rec record.Record) (bool, error) {
	if r.Func != nil {
		return r.Func(v, alias, value, rec)
	}
	switch r.Name {
	case RuleNotEmpty:
		if hook.IsEmpty(value) {
			v.Error(alias, RuleNotEmpty, nil)
			return false, nil
		}
		return true, nil
	case RuleRegex:
		if len(r.Args) == 0 {
			return false, fmt.Errorf("%w: regex needs a pattern", ErrUnknownRule)
		}
		pattern := hook.ToString(r.Args[0])
		re, err := v.compile(pattern)
		if err != nil {
			return false, err
		}
		if !re.MatchString(hook.ToString(value)) {
			v.Error(alias, RuleRegex, map[string]string{":pattern": pattern})
			return false, nil
		}
		return true, nil
	}
	return false, fmt.Errorf("%w: %q", ErrUnknownRule, r.Name)
}

func (v *Validation) compile(pattern string) (*regexp.Regexp, error) {
	if re, ok := v.patterns[pattern]; ok {
		return re, nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("compile %q: %w", pattern, err)
	}
	v.patterns[pattern] = re
	return re, nil
}
