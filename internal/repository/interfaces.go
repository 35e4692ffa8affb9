// 文件路径: internal/repository/interfaces.go
// 模块说明: 这是 internal 模块里的 interfaces 逻辑，下面的注释会用非常通俗的中文帮你理解每一步。
package repository

import "context"

// Store 暴露每个聚合根对应的仓储接口。
type Store interface {
	Records() RecordRepository
}

// RecordRepository 定义记录的存取方法。记录是不透明的属性包，不映射到具体表结构。
type RecordRepository interface {
	Find(ctx context.Context, model, id string) (*StoredRecord, error)
	// Save 插入或覆盖记录；ID 为空时分配新的 UUID 并写回 rec.ID。
	Save(ctx context.Context, rec *StoredRecord) error
	Delete(ctx context.Context, model, id string) error
	List(ctx context.Context, filter RecordFilter) ([]*StoredRecord, error)
	Count(ctx context.Context, model string) (int64, error)
}
