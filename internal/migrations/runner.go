// 文件路径: internal/migrations/runner.go
// 模块说明: 这是 internal 模块里的 runner 逻辑，下面的注释会用非常通俗的中文帮你理解每一步。
package migrations

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/pressly/goose/v3"
)

var setupOnce sync.Once
var setupErr error

func setup() error {
	setupOnce.Do(func() {
		goose.SetBaseFS(SQLite)
		setupErr = goose.SetDialect("sqlite3")
	})
	return setupErr
}

// Up migrates the record store schema to the latest version.
func Up(ctx context.Context, db *sql.DB) error {
	if err := setup(); err != nil {
		return err
	}
	if err := goose.UpContext(ctx, db, "sqlite"); err != nil {
		return fmt.Errorf("migrate up: %w", err)
	}
	return nil
}

// Down rolls back a single migration.
func Down(ctx context.Context, db *sql.DB) error {
	if err := setup(); err != nil {
		return err
	}
	if err := goose.DownContext(ctx, db, "sqlite"); err != nil {
		return fmt.Errorf("migrate down: %w", err)
	}
	return nil
}

// Status logs migration status through goose's logger.
func Status(ctx context.Context, db *sql.DB) error {
	if err := setup(); err != nil {
		return err
	}
	return goose.StatusContext(ctx, db, "sqlite")
}

// Version returns the current schema version.
func Version(ctx context.Context, db *sql.DB) (int64, error) {
	if err := setup(); err != nil {
		return 0, err
	}
	return goose.GetDBVersionContext(ctx, db)
}
