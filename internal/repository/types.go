// 文件路径: internal/repository/types.go
// 模块说明: 这是 internal 模块里的 types 逻辑，下面的注释会用非常通俗的中文帮你理解每一步。
package repository

import (
	"github.com/creamcroissant/fieldconf/internal/record"
)

// StoredRecord 是持久化的记录：标量属性与关联主键分开保存。
type StoredRecord struct {
	Model     string
	ID        string
	Values    map[string]any
	Relations map[string][]string
	UpdatedAt int64
}

// Record 把存储记录转换为引擎使用的内存记录。
func (s *StoredRecord) Record() *record.Map {
	m := record.New(s.Values)
	for alias, keys := range s.Relations {
		m.SetRelated(alias, keys...)
	}
	return m
}

// FromRecord 从内存记录构造存储记录。
func FromRecord(model, id string, m *record.Map) *StoredRecord {
	return &StoredRecord{
		Model:     model,
		ID:        id,
		Values:    m.Values(),
		Relations: m.Relations(),
	}
}
