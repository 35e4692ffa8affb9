package field

import (
	"maps"

	"github.com/creamcroissant/fieldconf/internal/hook"
	"github.com/creamcroissant/fieldconf/internal/validation"
)

// Config 是字段的声明式配置块，加载后不再修改。
type Config struct {
	Driver      string
	Kind        Kind
	Label       string
	Description string
	Help        string
	Required    bool
	Values      []any
	ForcedValue any
	ExtraParams map[string]any
	FormoParams map[string]any
	Rules       []validation.Rule
	Hooks       map[hook.Phase][]*hook.Hook
}

// AddNamespace 返回 hook 条件中具名字段全部加上命名空间前缀的副本。
func (c Config) AddNamespace(namespace string) Config {
	out := c.clone()
	for phase, hooks := range out.Hooks {
		for i, h := range hooks {
			if h != nil {
				hooks[i] = h.Clone().AddNamespace(namespace)
			}
		}
		out.Hooks[phase] = hooks
	}
	return out
}

func (c Config) clone() Config {
	out := c
	out.Values = append([]any(nil), c.Values...)
	out.ExtraParams = maps.Clone(c.ExtraParams)
	out.FormoParams = maps.Clone(c.FormoParams)
	out.Rules = append([]validation.Rule(nil), c.Rules...)
	if c.Hooks != nil {
		out.Hooks = make(map[hook.Phase][]*hook.Hook, len(c.Hooks))
		for phase, hooks := range c.Hooks {
			out.Hooks[phase] = append([]*hook.Hook(nil), hooks...)
		}
	}
	return out
}
