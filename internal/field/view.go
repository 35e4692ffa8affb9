package field

import (
	"fmt"

	"github.com/microcosm-cc/bluemonday"

	"github.com/creamcroissant/fieldconf/internal/hook"
	"github.com/creamcroissant/fieldconf/internal/record"
	"github.com/creamcroissant/fieldconf/internal/validation"
)

// textPolicy 清理帮助与描述文本中的不安全 HTML。
var textPolicy = bluemonday.UGCPolicy()

// Option 是下拉选项。
type Option struct {
	Label string `json:"label"`
	Value any    `json:"value"`
}

// View 是面向表单渲染的字段配置。
type View struct {
	Alias       string            `json:"alias"`
	Label       string            `json:"label"`
	Required    bool              `json:"required"`
	Editable    bool              `json:"editable"`
	Rules       []validation.Rule `json:"rules"`
	Help        string            `json:"help,omitempty"`
	Description string            `json:"description,omitempty"`
	Options     []Option          `json:"options,omitempty"`
	Value       any               `json:"value,omitempty"`
	Params      map[string]any    `json:"params,omitempty"`
}

// FormoView 在新快照上执行校验 hook，然后生成表单视图。
// 可选字段的选项前会插入一个空白项；带强制值的字段不可编辑并预填该值。
func (d *Descriptor) FormoView(rec record.Record) (View, error) {
	s := d.Snapshot()
	if err := d.manager.Run(rec, s); err != nil {
		return View{}, fmt.Errorf("field %s: %w", d.alias, err)
	}
	s.rebuildRules()

	view := View{
		Alias:       d.alias,
		Label:       d.config.Label,
		Required:    s.required,
		Editable:    true,
		Rules:       s.Rules(),
		Help:        textPolicy.Sanitize(s.help),
		Description: textPolicy.Sanitize(s.description),
		Params:      s.FormoParams(),
	}

	if len(s.values) > 0 {
		if !s.required {
			view.Options = append(view.Options, Option{Label: "", Value: ""})
		}
		for _, v := range s.values {
			view.Options = append(view.Options, Option{Label: hook.ToString(v), Value: v})
		}
	}

	if forced := s.ForcedValue(); forced != nil {
		view.Editable = false
		view.Value = forced
	}
	return view, nil
}
