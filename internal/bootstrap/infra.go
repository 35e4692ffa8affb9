// 文件路径: internal/bootstrap/infra.go
// 模块说明: 这是 internal 模块里的 infra 逻辑，下面的注释会用非常通俗的中文帮你理解每一步。
package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/creamcroissant/fieldconf/internal/cache"
	"github.com/creamcroissant/fieldconf/internal/config"
	"github.com/creamcroissant/fieldconf/internal/hook"
	"github.com/creamcroissant/fieldconf/internal/metrics"
	"github.com/creamcroissant/fieldconf/internal/migrations"
	"github.com/creamcroissant/fieldconf/internal/record"
	"github.com/creamcroissant/fieldconf/internal/registry"
	"github.com/creamcroissant/fieldconf/internal/repository"
	"github.com/creamcroissant/fieldconf/internal/repository/sqlite"
	"github.com/creamcroissant/fieldconf/internal/source"
	"github.com/creamcroissant/fieldconf/internal/support/i18n"
)

// Engine bundles the components a command needs to work with model configurations.
type Engine struct {
	Config   *config.Config
	Logger   *slog.Logger
	I18n     *i18n.Manager
	Metrics  *metrics.Collector
	Gatherer prometheus.Gatherer
	Cache    cache.Store
	Registry *registry.Registry
}

// BuildEngine wires translator/metrics/cache/registry from the application config.
func BuildEngine(cfg *config.Config, logger *slog.Logger) (*Engine, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required / 配置不能为空")
	}
	if logger == nil {
		logger = slog.Default()
	}

	translator, err := i18n.NewManager(
		i18n.WithLogger(logger),
		i18n.WithDefaultLang(cfg.I18n.DefaultLang),
	)
	if err != nil {
		return nil, fmt.Errorf("i18n manager: %w", err)
	}
	if cfg.I18n.Dir != "" {
		if err := translator.LoadFromDir(cfg.I18n.Dir); err != nil {
			return nil, fmt.Errorf("load translations: %w", err)
		}
	}

	var (
		collector *metrics.Collector
		gatherer  prometheus.Gatherer
	)
	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		collector = metrics.New(metrics.Config{
			Namespace: cfg.Metrics.Namespace,
			Subsystem: cfg.Metrics.Subsystem,
			Buckets:   cfg.Metrics.Buckets,
		}, reg)
		gatherer = reg
	}

	cacheStore := cache.NewStore(cache.Options{
		Prefix:          "fieldconf",
		DefaultTTL:      cache.NoExpiration,
		CleanupInterval: time.Minute,
	})

	src := source.NewYAMLDir(cfg.Models.Dir, Derivers()...)
	reg := registry.New(src,
		registry.WithLogger(logger),
		registry.WithMetrics(collector),
		registry.WithTranslator(translator),
		registry.WithStore(cacheStore),
	)
	if len(cfg.Models.Preload) > 0 {
		if err := reg.Preload(cfg.Models.Preload...); err != nil {
			return nil, fmt.Errorf("preload models: %w", err)
		}
	}

	return &Engine{
		Config:   cfg,
		Logger:   logger,
		I18n:     translator,
		Metrics:  collector,
		Gatherer: gatherer,
		Cache:    cacheStore,
		Registry: reg,
	}, nil
}

// Derivers 返回 YAML 配置中可用 derive: <name> 引用的内置值推导函数。
//   - uuid: 新的随机 UUID
//   - now:  当前 Unix 时间戳（秒）
func Derivers() []source.YAMLOption {
	return []source.YAMLOption{
		source.WithDeriver("uuid", func(record.Record, hook.Field) (any, error) {
			return uuid.NewString(), nil
		}),
		source.WithDeriver("now", func(record.Record, hook.Field) (any, error) {
			return time.Now().Unix(), nil
		}),
	}
}

// OpenStore opens the record database, applies migrations and returns the repository store.
// The caller owns the returned *sql.DB.
func (e *Engine) OpenStore(ctx context.Context) (repository.Store, *sql.DB, error) {
	db, err := OpenSQLite(e.Config.DB)
	if err != nil {
		return nil, nil, err
	}
	if err := migrations.Up(ctx, db); err != nil {
		db.Close()
		return nil, nil, err
	}
	return sqlite.NewStore(db), db, nil
}
