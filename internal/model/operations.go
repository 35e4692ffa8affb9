package model

import (
	"fmt"
	"maps"
	"regexp"
	"strings"
	"time"

	"github.com/creamcroissant/fieldconf/internal/field"
	"github.com/creamcroissant/fieldconf/internal/hook"
	"github.com/creamcroissant/fieldconf/internal/record"
	"github.com/creamcroissant/fieldconf/internal/validation"
)

// 可翻译的错误码。
const (
	CodeUnique = "unique"
)

// translation keys
const (
	keyRequired   = "jconfig.required"
	keyNotAllowed = "jconfig.not_allowed"
	keyUnique     = "jconfig.unique"
)

// errorPathPattern 匹配 jconfig/<model>/<field>.<code> 与 jconfig/<model>/_external.<field>.<code>。
var errorPathPattern = regexp.MustCompile(`^jconfig/[^/.]+[/.](_external\.)?([^.]+)\.(.+)$`)

// GetValidationRules 创建新的校验容器并登记所选字段的规则；aliases 为空时登记全部字段。
func (c *Config) GetValidationRules(aliases ...string) *validation.Validation {
	v := validation.New(c.alias)
	for _, d := range c.selected(aliases) {
		d.AddValidationRules(v)
	}
	return v
}

// Validate 校验记录，返回全部拒绝。error 只表示配置错误。
func (c *Config) Validate(rec record.Record, aliases ...string) (validation.Errors, error) {
	start := time.Now()
	v := c.GetValidationRules(aliases...)
	valid, err := v.Check(rec)
	if err != nil {
		return nil, err
	}
	errs := v.Errors()
	for _, fe := range errs {
		c.opts.Metrics.Rejected(c.alias, fe.Field, fe.Code)
	}
	c.opts.Metrics.Validated(c.alias, valid, time.Since(start))
	return errs, nil
}

// FormoFields 按给定顺序返回字段的表单视图。
func (c *Config) FormoFields(rec record.Record, aliases ...string) ([]field.View, error) {
	if len(aliases) == 0 {
		aliases = c.order
	}
	views := make([]field.View, 0, len(aliases))
	for _, alias := range aliases {
		d, err := c.Field(alias)
		if err != nil {
			return nil, err
		}
		view, err := d.FormoView(rec)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

// FormoValues 返回所选字段的表单值；未声明的别名被忽略。
func (c *Config) FormoValues(rec record.Record, aliases ...string) (map[string]any, error) {
	out := make(map[string]any, len(aliases))
	for _, d := range c.selected(aliases) {
		v, err := d.FormoValue(rec)
		if err != nil {
			return nil, err
		}
		out[d.Alias()] = v
	}
	return out, nil
}

// UpdateValues 把 values 写入记录。字段按声明顺序处理，带有触发更新 hook 的字段
// 在第一遍结束后再写一次，让依赖其他字段最终值的推导得到正确结果。
func (c *Config) UpdateValues(rec record.Record, values map[string]any) error {
	var redo []*field.Descriptor
	written := 0
	for _, d := range c.selected(nil) {
		value, ok := values[d.Alias()]
		if !ok {
			continue
		}
		hooked, err := d.UpdateValue(rec, value)
		if err != nil {
			return err
		}
		written++
		if hooked {
			redo = append(redo, d)
		}
	}
	c.opts.Metrics.Updated(c.alias, "first", written)

	for _, d := range redo {
		c.opts.Logger.Debug("redo postponed field update", "model", c.alias, "field", d.Alias())
		if _, err := d.UpdateValue(rec, values[d.Alias()]); err != nil {
			return err
		}
	}
	c.opts.Metrics.Updated(c.alias, "redo", len(redo))
	return nil
}

// TranslateError 把错误路径翻译为带字段标签的文本。
// 不匹配的路径与未知错误码原样返回。
func (c *Config) TranslateError(lang, path string) (string, error) {
	m := errorPathPattern.FindStringSubmatch(path)
	if m == nil {
		return path, nil
	}
	alias, code := m[2], m[3]

	var key string
	switch code {
	case hook.CodeRequired:
		key = keyRequired
	case hook.CodeMismatchingForcedValue, hook.CodeValueNotAllowed:
		key = keyNotAllowed
	case CodeUnique:
		key = keyUnique
	default:
		return code, nil
	}

	d, err := c.Field(alias)
	if err != nil {
		return "", fmt.Errorf("translate %q: %w", path, err)
	}
	return c.opts.Translator.Translate(lang, key, d.Label()), nil
}

// Definitions 按声明顺序返回全部字段定义。
func (c *Config) Definitions() []field.Definition {
	out := make([]field.Definition, 0, len(c.order))
	for _, d := range c.selected(nil) {
		out = append(out, d.Definition())
	}
	return out
}

// Scripts 汇总所选字段声明的脚本，后出现的同名脚本覆盖先出现的。
func (c *Config) Scripts(aliases ...string) map[string]string {
	out := make(map[string]string)
	for _, d := range c.selected(aliases) {
		maps.Copy(out, d.Scripts())
	}
	return out
}

// JSCode 按声明顺序拼接所选字段的内联脚本。
func (c *Config) JSCode(aliases ...string) string {
	var b strings.Builder
	for _, d := range c.selected(aliases) {
		b.WriteString(d.JSCode())
	}
	return b.String()
}
