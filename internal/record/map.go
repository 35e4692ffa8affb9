package record

import (
	"fmt"
	"maps"
	"slices"
	"sort"
)

// Map 是基于普通 map 的内存记录，标量属性与关联主键分开保存。
type Map struct {
	values    map[string]any
	relations map[string][]string
}

// New 用 values 初始化记录；values 会被复制。
func New(values map[string]any) *Map {
	m := &Map{
		values:    make(map[string]any, len(values)),
		relations: make(map[string][]string),
	}
	for k, v := range values {
		m.values[k] = v
	}
	return m
}

func (m *Map) Has(alias string) bool {
	if _, ok := m.values[alias]; ok {
		return true
	}
	_, ok := m.relations[alias]
	return ok
}

func (m *Map) Get(alias string) any {
	return m.values[alias]
}

func (m *Map) Set(alias string, value any) {
	m.values[alias] = value
}

// SetRelated 替换关联属性的全部主键。
func (m *Map) SetRelated(alias string, keys ...string) {
	m.relations[alias] = slices.Clone(keys)
}

func (m *Map) RelatedKeys(alias string) ([]string, error) {
	keys, ok := m.relations[alias]
	if !ok {
		if _, isValue := m.values[alias]; isValue {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %s", ErrUnknownAttribute, alias)
	}
	return slices.Clone(keys), nil
}

// Values 返回标量属性的副本。
func (m *Map) Values() map[string]any {
	return maps.Clone(m.values)
}

// Relations 返回关联属性的副本。
func (m *Map) Relations() map[string][]string {
	out := make(map[string][]string, len(m.relations))
	for k, v := range m.relations {
		out[k] = slices.Clone(v)
	}
	return out
}

// Aliases 返回全部属性名，已排序。
func (m *Map) Aliases() []string {
	seen := make(map[string]struct{}, len(m.values)+len(m.relations))
	for k := range m.values {
		seen[k] = struct{}{}
	}
	for k := range m.relations {
		seen[k] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
