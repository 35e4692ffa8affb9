package bootstrap

import (
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/creamcroissant/fieldconf/internal/config"
)

// OpenSQLite 打开记录库。父目录不存在时自动创建；外键、忙等待与日志模式都通过 DSN 的
// _pragma 参数设置，对连接池里的每个连接都生效。
func OpenSQLite(cfg config.DBConfig) (*sql.DB, error) {
	if cfg.Driver != "" && cfg.Driver != "sqlite" {
		return nil, fmt.Errorf("不支持的数据库驱动 / unsupported database driver %q", cfg.Driver)
	}
	if cfg.Path == "" {
		return nil, fmt.Errorf("SQLite 路径不能为空 / SQLite path is required")
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return nil, fmt.Errorf("create sqlite dir: %w", err)
	}

	db, err := sql.Open("sqlite", sqliteDSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return db, nil
}

func sqliteDSN(cfg config.DBConfig) string {
	pragmas := url.Values{}
	pragmas.Add("_pragma", "foreign_keys(1)")
	if cfg.BusyTimeout > 0 {
		pragmas.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", cfg.BusyTimeout.Milliseconds()))
	}
	if mode := strings.TrimSpace(cfg.JournalMode); mode != "" {
		pragmas.Add("_pragma", fmt.Sprintf("journal_mode(%s)", strings.ToUpper(mode)))
	}
	return "file:" + cfg.Path + "?" + pragmas.Encode()
}
