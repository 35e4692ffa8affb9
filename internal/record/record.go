// Package record 定义引擎读写的记录抽象。
//
// 引擎只依赖按名称读写属性的能力，以及关联字段的主键枚举；
// 具体的 ORM 或存储实现由调用方提供。
package record

import "errors"

// ErrUnknownAttribute 表示记录上不存在该属性。
var ErrUnknownAttribute = errors.New("record: unknown attribute / 未知属性")

// Record 是字段配置引擎使用的记录。
type Record interface {
	// Has 判断属性是否存在于记录上（值可以为空）。
	Has(alias string) bool
	// Get 返回属性当前值，不存在时返回 nil。
	Get(alias string) any
	// Set 写入属性值。
	Set(alias string, value any)
	// RelatedKeys 返回关联属性指向的记录主键，按关联顺序排列。
	RelatedKeys(alias string) ([]string, error)
}

// Relational 由能够改写关联属性的记录实现。
type Relational interface {
	SetRelated(alias string, keys ...string)
}
