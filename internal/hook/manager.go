// 文件路径: internal/hook/manager.go
// 模块说明: 这是 internal 模块里的 manager 逻辑，下面的注释会用非常通俗的中文帮你理解每一步。
package hook

import (
	"strings"
	"sync"

	"github.com/samber/lo"

	"github.com/creamcroissant/fieldconf/internal/record"
)

// Phase 决定运行哪一组 hook 以及是否短路。
type Phase string

const (
	PhaseValidation Phase = "validation"
	PhaseUpdate     Phase = "update"
	PhaseFormoValue Phase = "formovalue"
)

// Phases 列出全部阶段。
var Phases = []Phase{PhaseValidation, PhaseUpdate, PhaseFormoValue}

// 校验失败时上报的错误码。
const (
	CodeRequired               = "required"
	CodeMismatchingForcedValue = "mismatching_forced_value"
	CodeValueNotAllowed        = "value_not_allowed"
)

// Reporter 接收校验失败，由外部校验容器实现。
type Reporter interface {
	Error(alias, code string, params map[string]string)
}

// Manager 保存一个字段按阶段分组的 hook，并按注册顺序执行。
type Manager struct {
	owner Owner
	mu    sync.RWMutex
	hooks map[Phase][]*Hook
}

// NewManager 返回挂在 owner 上的空管理器。
func NewManager(owner Owner) *Manager {
	return &Manager{
		owner: owner,
		hooks: map[Phase][]*Hook{
			PhaseValidation: nil,
			PhaseUpdate:     nil,
			PhaseFormoValue: nil,
		},
	}
}

// ParsePhase 规范化阶段名称，兼容 "formo-value" 写法。
func ParsePhase(name string) (Phase, error) {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "-", "")
	for _, p := range Phases {
		if string(p) == key {
			return p, nil
		}
	}
	return "", newError(ErrUnknownPhase, "%q", name)
}

// Owner 返回 manager 所属字段。
func (m *Manager) Owner() Owner {
	return m.owner
}

// AddHooks 按阶段登记 hook。每个 hook 会被复制并关联到 owner；
// 同一阶段再次登记会替换原有列表。
func (m *Manager) AddHooks(hooks map[Phase][]*Hook) error {
	staged := make(map[Phase][]*Hook, len(hooks))
	for phase, list := range hooks {
		if _, err := ParsePhase(string(phase)); err != nil {
			return err
		}
		copies := make([]*Hook, 0, len(list))
		for _, h := range list {
			if h == nil {
				continue
			}
			if err := h.Err(); err != nil {
				return err
			}
			c := h.Clone()
			c.owner = m.owner
			copies = append(copies, c)
		}
		staged[phase] = copies
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for phase, list := range staged {
		m.hooks[phase] = list
	}
	return nil
}

// Hooks 返回指定阶段的 hook 副本列表。
func (m *Manager) Hooks(phase Phase) []*Hook {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*Hook(nil), m.hooks[phase]...)
}

// Run 依序执行校验阶段 hook，第一个触发的 hook 之后停止（bypass hook 除外）。
func (m *Manager) Run(rec record.Record, field Field) error {
	for _, h := range m.Hooks(PhaseValidation) {
		fired, err := h.Run(rec, field)
		if err != nil {
			return err
		}
		if fired && !h.bypass {
			return nil
		}
	}
	return nil
}

// UpdateValue 依序执行全部更新阶段 hook，值在 hook 之间链式传递。
// 第二个返回值表示字段是否带有更新 hook（不论本次是否触发），批量更新据此决定是否重做。
func (m *Manager) UpdateValue(rec record.Record, field Field, value any) (any, bool, error) {
	hooks := m.Hooks(PhaseUpdate)
	value, err := chain(hooks, rec, field, value)
	return value, len(hooks) > 0, err
}

// FormoValue 依序执行全部读取阶段 hook。
func (m *Manager) FormoValue(rec record.Record, field Field, value any) (any, error) {
	return chain(m.Hooks(PhaseFormoValue), rec, field, value)
}

func chain(hooks []*Hook, rec record.Record, field Field, value any) (any, error) {
	for _, h := range hooks {
		next, _, err := h.RunUpdate(rec, field, value)
		if err != nil {
			return value, err
		}
		value = next
	}
	return value, nil
}

// Check 是接入外部校验框架的桥：在 owner 的新快照上执行校验 hook，
// 再按固定优先级判定：hook 错误、必填、强制值、允许值。
func (m *Manager) Check(reporter Reporter, alias string, value any, rec record.Record) (bool, error) {
	field := m.owner.State()
	if err := m.Run(rec, field); err != nil {
		return false, err
	}

	if msg, ok := field.Error(); ok {
		reporter.Error(alias, msg, nil)
		return false, nil
	}

	if field.Required() && IsEmpty(value) {
		reporter.Error(alias, CodeRequired, nil)
		return false, nil
	}

	if forced := field.ForcedValue(); forced != nil && !LooseEqual(value, forced) {
		reporter.Error(alias, CodeMismatchingForcedValue, map[string]string{
			":forcedvalue": ToString(forced),
		})
		return false, nil
	}

	if values := field.Values(); len(values) > 0 && !Contains(values, value) {
		if !field.Required() && IsEmpty(value) {
			return true, nil
		}
		reporter.Error(alias, CodeValueNotAllowed, map[string]string{
			":allowedvalues": joinValues(values, ", "),
		})
		return false, nil
	}

	return true, nil
}

// PossibleValues 汇总全部校验阶段 hook 的可能值。
func (m *Manager) PossibleValues() []any {
	var values []any
	for _, h := range m.Hooks(PhaseValidation) {
		values = Union(values, h.PossibleValues())
	}
	return values
}

func joinValues(values []any, sep string) string {
	return strings.Join(lo.Map(values, func(v any, _ int) string { return ToString(v) }), sep)
}
