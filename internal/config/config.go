package config

import (
	"log/slog"
	"time"

	"github.com/creamcroissant/fieldconf/internal/support/logging"
)

// Config 汇总应用的全部配置。
type Config struct {
	Log     LogConfig     `mapstructure:"log"`
	Models  ModelsConfig  `mapstructure:"models"`
	I18n    I18nConfig    `mapstructure:"i18n"`
	DB      DBConfig      `mapstructure:"database"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// LogConfig 定义日志配置。
type LogConfig struct {
	Level     string `mapstructure:"level"`
	Format    string `mapstructure:"format"`
	AddSource bool   `mapstructure:"add_source"`
}

// ModelsConfig 定义模型配置块（YAML 文件）所在目录。
type ModelsConfig struct {
	Dir     string   `mapstructure:"dir"`
	Preload []string `mapstructure:"preload"`
}

// I18nConfig 定义错误信息翻译。Dir 为空时只使用内嵌的语言包。
type I18nConfig struct {
	DefaultLang string `mapstructure:"default_lang"`
	Dir         string `mapstructure:"dir"`
}

// DBConfig 定义记录存储的数据库配置。
type DBConfig struct {
	Driver      string        `mapstructure:"driver"`
	Path        string        `mapstructure:"path"`
	BusyTimeout time.Duration `mapstructure:"busy_timeout"`
	JournalMode string        `mapstructure:"journal_mode"`
}

// MetricsConfig 定义 Prometheus 指标配置。
type MetricsConfig struct {
	Enabled   bool      `mapstructure:"enabled"`
	Namespace string    `mapstructure:"namespace"`
	Subsystem string    `mapstructure:"subsystem"`
	Buckets   []float64 `mapstructure:"buckets"`
}

func (c LogConfig) SlogLevel() slog.Level {
	return logging.ParseLevel(c.Level)
}
