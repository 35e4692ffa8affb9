// 文件路径: internal/field/descriptor.go
// 模块说明: 这是 internal 模块里的 descriptor 逻辑，下面的注释会用非常通俗的中文帮你理解每一步。
package field

import (
	"errors"
	"fmt"
	"maps"
	"strings"

	"github.com/spf13/cast"

	"github.com/creamcroissant/fieldconf/internal/hook"
	"github.com/creamcroissant/fieldconf/internal/record"
	"github.com/creamcroissant/fieldconf/internal/validation"
)

// 表单参数中有特殊含义的键。
const (
	ParamDefaultValue = "default_value"
	ParamScripts      = "scripts"
	ParamJSCode       = "js_code"
)

// Descriptor 是一个字段的配置与 hook 管理器。
// 加载之后不可变，所有校验与更新都在 Snapshot 返回的快照上进行。
type Descriptor struct {
	alias   string
	config  Config
	manager *hook.Manager
}

var _ hook.Owner = (*Descriptor)(nil)

// New 创建字段并登记配置中的 hook。
func New(alias string, cfg Config) (*Descriptor, error) {
	if strings.TrimSpace(alias) == "" {
		return nil, fmt.Errorf("field: empty alias")
	}
	d := &Descriptor{alias: alias, config: cfg.clone()}
	d.manager = hook.NewManager(d)
	if len(cfg.Hooks) > 0 {
		if err := d.manager.AddHooks(cfg.Hooks); err != nil {
			return nil, fmt.Errorf("field %s: %w", alias, err)
		}
	}
	return d, nil
}

func (d *Descriptor) Alias() string { return d.alias }
func (d *Descriptor) Label() string { return d.config.Label }
func (d *Descriptor) Kind() Kind { return d.config.Kind }
func (d *Descriptor) Manager() *hook.Manager { return d.manager }

// Config 返回配置副本。
func (d *Descriptor) Config() Config { return d.config.clone() }

// Snapshot 返回一份已重置的独立状态。
func (d *Descriptor) Snapshot() *State {
	return (&State{desc: d}).Reset()
}

// State 实现 hook.Owner。
func (d *Descriptor) State() hook.Field {
	return d.Snapshot()
}

// AddValidationRules 把字段的 hook 校验回调以及配置声明的规则登记到容器，返回登记数量。
// 回调排在最前，hook 给出的错误码优先于正则规则。
func (d *Descriptor) AddValidationRules(v *validation.Validation) int {
	v.Reader(d.alias, d.validationValue)
	v.Callback(d.alias, func(v *validation.Validation, alias string, value any, rec record.Record) (bool, error) {
		return d.manager.Check(v, alias, value, rec)
	})
	n := 1
	for _, r := range d.config.Rules {
		v.Rule(d.alias, r.Name, r.Args...)
		n++
	}
	if r, ok := d.hookedValuesRule(d.config.Required); ok {
		v.Rule(d.alias, r.Name, r.Args...)
		n++
	}
	return n
}

// hookedValuesRule 返回字段可能取到的全部值的包含正则。非必填字段或候选值含空串时允许空值。
func (d *Descriptor) hookedValuesRule(required bool) (validation.Rule, bool) {
	candidates := hook.Union(d.manager.PossibleValues(), d.config.Values)
	if len(candidates) == 0 {
		return validation.Rule{}, false
	}
	optional := ""
	if !required {
		optional = "?"
	}
	values := make([]any, 0, len(candidates))
	for _, v := range candidates {
		if hook.ToString(v) == "" {
			optional = "?"
			continue
		}
		values = append(values, v)
	}
	return regexRule(alternation(values), optional), true
}

// RawValue 按字段类别从记录读取当前值。
func (d *Descriptor) RawValue(rec record.Record) (any, error) {
	switch d.config.Kind {
	case BelongsTo:
		keys, err := rec.RelatedKeys(d.alias)
		if err != nil {
			return nil, err
		}
		if len(keys) == 0 {
			return "", nil
		}
		return keys[0], nil
	case ManyToMany:
		keys, err := rec.RelatedKeys(d.alias)
		if err != nil {
			return nil, err
		}
		return strings.Join(keys, ","), nil
	}
	return rec.Get(d.alias), nil
}

// validationValue 按类别读取待校验值；记录上没有该关联属性时视为空值。
func (d *Descriptor) validationValue(rec record.Record) (any, error) {
	value, err := d.RawValue(rec)
	if errors.Is(err, record.ErrUnknownAttribute) {
		return nil, nil
	}
	return value, err
}

// FormoValue 返回表单展示用的值：按类别读取、经过 formovalue hook，
// 仍为空时使用表单参数 default_value。
func (d *Descriptor) FormoValue(rec record.Record) (any, error) {
	value, err := d.RawValue(rec)
	if err != nil {
		return nil, fmt.Errorf("field %s: %w", d.alias, err)
	}
	value, err = d.manager.FormoValue(rec, d.Snapshot(), value)
	if err != nil {
		return nil, fmt.Errorf("field %s: %w", d.alias, err)
	}
	if def, ok := d.config.FormoParams[ParamDefaultValue]; ok && hook.LooseEqual(value, "") {
		value = def
	}
	return value, nil
}

// UpdateValue 先在快照上执行校验 hook，再让更新 hook 依次改写 value，
// 最后写回记录。返回字段是否带有更新 hook。
func (d *Descriptor) UpdateValue(rec record.Record, value any) (bool, error) {
	snapshot := d.Snapshot()
	if err := d.manager.Run(rec, snapshot); err != nil {
		return false, fmt.Errorf("field %s: %w", d.alias, err)
	}
	value, hooked, err := d.manager.UpdateValue(rec, snapshot, value)
	if err != nil {
		return false, fmt.Errorf("field %s: %w", d.alias, err)
	}
	d.write(rec, value)
	return hooked, nil
}

func (d *Descriptor) write(rec record.Record, value any) {
	if rel, ok := rec.(record.Relational); ok && d.config.Kind.Relational() {
		var keys []string
		for _, k := range strings.Split(hook.ToString(value), ",") {
			if k = strings.TrimSpace(k); k != "" {
				keys = append(keys, k)
			}
		}
		if d.config.Kind == BelongsTo && len(keys) > 1 {
			keys = keys[:1]
		}
		rel.SetRelated(d.alias, keys...)
		return
	}
	rec.Set(d.alias, value)
}

// Definition 是交给存储层的字段定义。
type Definition struct {
	Alias  string            `json:"alias"`
	Driver string            `json:"driver"`
	Kind   Kind              `json:"kind"`
	Label  string            `json:"label"`
	Name   string            `json:"name"`
	Rules  []validation.Rule `json:"rules"`
	Params map[string]any    `json:"params,omitempty"`
}

// Definition 基于声明式状态生成字段定义。
func (d *Descriptor) Definition() Definition {
	s := d.Snapshot()
	return Definition{
		Alias:  d.alias,
		Driver: d.config.Driver,
		Kind:   d.config.Kind,
		Label:  d.config.Label,
		Name:   d.config.Label,
		Rules:  s.Rules(),
		Params: maps.Clone(d.config.ExtraParams),
	}
}

// Scripts 返回表单参数中声明的脚本，键为脚本别名。
func (d *Descriptor) Scripts() map[string]string {
	raw, ok := d.config.FormoParams[ParamScripts]
	if !ok {
		return nil
	}
	return cast.ToStringMapString(raw)
}

// JSCode 返回表单参数中的内联脚本。
func (d *Descriptor) JSCode() string {
	return cast.ToString(d.config.FormoParams[ParamJSCode])
}
