package field

import (
	"fmt"
	"maps"
	"strings"

	"github.com/samber/lo"

	"github.com/creamcroissant/fieldconf/internal/hook"
	"github.com/creamcroissant/fieldconf/internal/validation"
)

// State 是字段的一份独立可变快照，hook 结果只作用于它。
type State struct {
	desc        *Descriptor
	description string
	help        string
	err         string
	hasErr      bool
	required    bool
	forced      any
	values      []any
	extraParams map[string]any
	formoParams map[string]any
	rules       []validation.Rule
}

var _ hook.Field = (*State)(nil)

// Reset 从声明式配置恢复全部状态并重建规则，丢弃 hook 造成的修改。
func (s *State) Reset() *State {
	cfg := s.desc.config
	s.description = cfg.Description
	s.help = cfg.Help
	s.err, s.hasErr = "", false
	s.required = cfg.Required
	s.forced = cfg.ForcedValue
	s.values = append([]any(nil), cfg.Values...)
	s.extraParams = maps.Clone(cfg.ExtraParams)
	s.formoParams = maps.Clone(cfg.FormoParams)
	s.rebuildRules()
	return s
}

// Clone 返回不共享任何可变部分的副本。
func (s *State) Clone() *State {
	c := *s
	c.values = append([]any(nil), s.values...)
	c.extraParams = maps.Clone(s.extraParams)
	c.formoParams = maps.Clone(s.formoParams)
	c.rules = append([]validation.Rule(nil), s.rules...)
	return &c
}

func (s *State) Alias() string { return s.desc.alias }
func (s *State) Label() string { return s.desc.config.Label }
func (s *State) Help() string { return s.help }
func (s *State) Required() bool { return s.required }
func (s *State) SetRequired(required bool) { s.required = required }
func (s *State) Description() string { return s.description }
func (s *State) SetDescription(text string) { s.description = text }
func (s *State) Error() (string, bool) { return s.err, s.hasErr }
func (s *State) ForcedValue() any { return s.forced }
func (s *State) SetForcedValue(v any) { s.forced = v }
func (s *State) Values() []any { return append([]any(nil), s.values...) }
func (s *State) SetValues(values []any) { s.values = append([]any(nil), values...) }

// SetError 把字段置为错误状态。
func (s *State) SetError(msg string) {
	s.err, s.hasErr = msg, true
}

// Rules 返回最近一次重建的规则列表。
func (s *State) Rules() []validation.Rule {
	return append([]validation.Rule(nil), s.rules...)
}

// ExtraParams 返回传给存储层字段定义的额外参数。
func (s *State) ExtraParams() map[string]any { return maps.Clone(s.extraParams) }

// FormoParams 返回表单参数。
func (s *State) FormoParams() map[string]any { return maps.Clone(s.formoParams) }

// rebuildRules 按固定顺序生成规则：配置声明的规则、必填、允许值、hook 可能值。
func (s *State) rebuildRules() {
	rules := append([]validation.Rule(nil), s.desc.config.Rules...)
	if s.required {
		rules = append(rules, validation.Rule{Name: validation.RuleNotEmpty})
	}
	if len(s.values) > 0 {
		optional := ""
		if !s.required {
			optional = "?"
		}
		rules = append(rules, regexRule(alternation(s.values), optional))
	}
	if r, ok := s.desc.hookedValuesRule(s.required); ok {
		rules = append(rules, r)
	}
	s.rules = rules
}

var metaEscaper = strings.NewReplacer(`/`, `\/`, `+`, `\+`)

// alternation 把候选值拼成 a|b|c，并转义其中的 / 与 +。
func alternation(values []any) string {
	return strings.Join(lo.Map(values, func(v any, _ int) string {
		return metaEscaper.Replace(hook.ToString(v))
	}), "|")
}

func regexRule(alt, optional string) validation.Rule {
	return validation.Rule{
		Name: validation.RuleRegex,
		Args: []any{fmt.Sprintf("^(%s)%s$", alt, optional)},
	}
}
