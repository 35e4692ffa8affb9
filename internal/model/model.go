// 文件路径: internal/model/model.go
// 模块说明: 这是 internal 模块里的 model 逻辑，下面的注释会用非常通俗的中文帮你理解每一步。
package model

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/creamcroissant/fieldconf/internal/field"
	"github.com/creamcroissant/fieldconf/internal/metrics"
	"github.com/creamcroissant/fieldconf/internal/source"
	"github.com/creamcroissant/fieldconf/internal/support/i18n"
)

var (
	// ErrModelConfigNotFound 表示来源中没有该模型的配置块。
	ErrModelConfigNotFound = errors.New("model configuration not found / 未找到模型配置")
	// ErrUnknownField 表示模型没有声明该字段。
	ErrUnknownField = errors.New("unknown model field / 模型未声明该字段")
	// ErrDuplicateField 表示配置块中同一字段出现了两次。
	ErrDuplicateField = errors.New("duplicate model field / 模型字段重复")
)

// Translator 把翻译键转换为指定语言的文本。
type Translator interface {
	Translate(lang, key string, args ...any) string
}

// Options 是模型运行所需的协作者。
type Options struct {
	Logger     *slog.Logger
	Metrics    *metrics.Collector
	Translator Translator
}

func (o Options) withDefaults() Options {
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.Translator == nil {
		o.Translator = i18n.Default()
	}
	return o
}

// Config 是一个模型的字段集合，字段按声明顺序保存。
type Config struct {
	alias  string
	source source.Source
	opts   Options

	mu        sync.Mutex
	loaded    bool
	tableName string
	order     []string
	fields    map[string]*field.Descriptor
}

// New 创建尚未加载的模型。
func New(alias string, src source.Source, opts Options) *Config {
	return &Config{
		alias:  alias,
		source: src,
		opts:   opts.withDefaults(),
	}
}

// Load 创建并加载模型。
func Load(alias string, src source.Source, opts Options) (*Config, error) {
	c := New(alias, src, opts)
	if err := c.Load(); err != nil {
		return nil, err
	}
	return c, nil
}

// Load 读取配置块并为每个字段创建描述符；已加载时不做任何事。
func (c *Config) Load() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loaded {
		return nil
	}

	err := c.load()
	c.opts.Metrics.ModelLoaded(c.alias, err)
	return err
}

func (c *Config) load() error {
	block, err := c.source.Block(c.alias)
	if err != nil {
		if errors.Is(err, source.ErrNotFound) {
			return fmt.Errorf("%w: %s: %w", ErrModelConfigNotFound, c.alias, err)
		}
		return fmt.Errorf("load model %s: %w", c.alias, err)
	}

	order := make([]string, 0, len(block.Fields))
	fields := make(map[string]*field.Descriptor, len(block.Fields))
	for _, entry := range block.Fields {
		if _, dup := fields[entry.Alias]; dup {
			return fmt.Errorf("load model %s: %w: %s", c.alias, ErrDuplicateField, entry.Alias)
		}
		d, err := field.New(entry.Alias, entry.Config)
		if err != nil {
			return fmt.Errorf("load model %s: %w", c.alias, err)
		}
		order = append(order, entry.Alias)
		fields[entry.Alias] = d
	}

	c.tableName = block.TableName
	c.order = order
	c.fields = fields
	c.loaded = true
	c.opts.Logger.Debug("model configuration loaded", "model", c.alias, "fields", len(order))
	return nil
}

// Loaded 判断模型是否已加载。
func (c *Config) Loaded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loaded
}

func (c *Config) Alias() string { return c.alias }
func (c *Config) TableName() string { return c.tableName }

// Fields 按声明顺序返回字段别名。
func (c *Config) Fields() []string {
	return append([]string(nil), c.order...)
}

// Field 返回字段描述符。
func (c *Config) Field(alias string) (*field.Descriptor, error) {
	d, ok := c.fields[alias]
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", ErrUnknownField, c.alias, alias)
	}
	return d, nil
}

// selected 返回按声明顺序排列的字段；aliases 为空时返回全部。未声明的别名被忽略。
func (c *Config) selected(aliases []string) []*field.Descriptor {
	if len(aliases) == 0 {
		out := make([]*field.Descriptor, 0, len(c.order))
		for _, alias := range c.order {
			out = append(out, c.fields[alias])
		}
		return out
	}
	want := make(map[string]struct{}, len(aliases))
	for _, a := range aliases {
		want[a] = struct{}{}
	}
	var out []*field.Descriptor
	for _, alias := range c.order {
		if _, ok := want[alias]; ok {
			out = append(out, c.fields[alias])
		}
	}
	return out
}
