package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix 是环境变量前缀，例如 FIELDCONF_DATABASE_PATH 覆盖 database.path。
const EnvPrefix = "FIELDCONF"

// Load 读取配置。path 为空时依次在当前目录与 /etc/fieldconf/ 查找 fieldconf.yaml，
// 找不到文件不算错误，此时只使用默认值与环境变量。
func Load(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("fieldconf")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/fieldconf/")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.add_source", false)

	v.SetDefault("models.dir", "models")
	v.SetDefault("models.preload", []string{})

	v.SetDefault("i18n.default_lang", "en-US")
	v.SetDefault("i18n.dir", "")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "data/fieldconf.db")
	v.SetDefault("database.busy_timeout", "30s")
	v.SetDefault("database.journal_mode", "wal")

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.namespace", "fieldconf")
	v.SetDefault("metrics.subsystem", "engine")
}
