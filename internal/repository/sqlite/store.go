// 文件路径: internal/repository/sqlite/store.go
// 模块说明: 这是 internal 模块里的 store 逻辑，下面的注释会用非常通俗的中文帮你理解每一步。
package sqlite

import (
	"database/sql"

	"github.com/creamcroissant/fieldconf/internal/repository"
)

// Store wires SQLite-backed repository implementations.
type Store struct {
	db      *sql.DB
	records repository.RecordRepository
}

// NewStore constructs a SQLite-backed repository store.
func NewStore(db *sql.DB) *Store {
	return &Store{
		db:      db,
		records: newRecordRepo(db),
	}
}

func (s *Store) Records() repository.RecordRepository {
	return s.records
}

var _ repository.Store = (*Store)(nil)
