// 文件路径: internal/repository/filters.go
// 模块说明: 这是 internal 模块里的 filters 逻辑，下面的注释会用非常通俗的中文帮你理解每一步。
package repository

// RecordFilter constrains record listings.
type RecordFilter struct {
	Model  string
	Limit  int // 0 = no limit
	Offset int
}
