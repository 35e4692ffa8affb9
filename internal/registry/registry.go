// 文件路径: internal/registry/registry.go
// 模块说明: 这是 internal 模块里的 registry 逻辑，下面的注释会用非常通俗的中文帮你理解每一步。
package registry

import (
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"sync"

	"github.com/creamcroissant/fieldconf/internal/cache"
	"github.com/creamcroissant/fieldconf/internal/field"
	"github.com/creamcroissant/fieldconf/internal/metrics"
	"github.com/creamcroissant/fieldconf/internal/model"
	"github.com/creamcroissant/fieldconf/internal/record"
	"github.com/creamcroissant/fieldconf/internal/source"
	"github.com/creamcroissant/fieldconf/internal/validation"
)

// modelPathPattern 从错误路径中取出模型别名。
var modelPathPattern = regexp.MustCompile(`^jconfig/([^/]+)/`)

// Registry 按别名记住已加载的模型。模型只加载一次，加载后只读，可在多个 goroutine 间共享。
type Registry struct {
	source source.Source
	opts   model.Options
	store  cache.Store
	mu     sync.Mutex
}

// Option 配置 Registry。
type Option func(*Registry)

// WithLogger 设置日志实例。
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		r.opts.Logger = logger
	}
}

// WithMetrics 设置指标收集器。
func WithMetrics(c *metrics.Collector) Option {
	return func(r *Registry) {
		r.opts.Metrics = c
	}
}

// WithTranslator 设置错误翻译器。
func WithTranslator(t model.Translator) Option {
	return func(r *Registry) {
		r.opts.Translator = t
	}
}

// WithStore 使用外部缓存保存模型，便于与其他组件共享同一个缓存。
func WithStore(store cache.Store) Option {
	return func(r *Registry) {
		r.store = store
	}
}

// New 创建注册表。
func New(src source.Source, opts ...Option) *Registry {
	r := &Registry{source: src}
	for _, opt := range opts {
		opt(r)
	}
	if r.opts.Logger == nil {
		r.opts.Logger = slog.Default()
	}
	if r.store == nil {
		r.store = cache.NewStore(cache.Options{})
	}
	r.store = r.store.Namespace("models")
	return r
}

// Load 返回已加载的模型，首次访问时从来源加载。加载失败不会被记住。
func (r *Registry) Load(alias string) (*model.Config, error) {
	if m, ok := r.cached(alias); ok {
		return m, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.cached(alias); ok {
		return m, nil
	}

	m, err := model.Load(alias, r.source, r.opts)
	if err != nil {
		r.opts.Logger.Warn("load model configuration failed", "model", alias, "error", err)
		return nil, err
	}
	r.store.Set(alias, m, cache.NoExpiration)
	r.opts.Logger.Debug("model registered", "model", alias)
	return m, nil
}

// Model 是 Load 的别名，用于只读访问。
func (r *Registry) Model(alias string) (*model.Config, error) {
	return r.Load(alias)
}

// Loaded 判断模型是否已加载。
func (r *Registry) Loaded(alias string) bool {
	_, ok := r.cached(alias)
	return ok
}

// Aliases 返回已加载的模型别名。
func (r *Registry) Aliases() []string {
	return r.store.Keys()
}

// Preload 预先加载模型；未给出别名且来源可枚举时加载全部模型。
func (r *Registry) Preload(aliases ...string) error {
	if len(aliases) == 0 {
		lister, ok := r.source.(source.Lister)
		if !ok {
			return nil
		}
		all, err := lister.Aliases()
		if err != nil {
			return fmt.Errorf("list models: %w", err)
		}
		aliases = all
	}
	var errs []error
	for _, alias := range aliases {
		if _, err := r.Load(alias); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (r *Registry) cached(alias string) (*model.Config, bool) {
	v, ok := r.store.Get(alias)
	if !ok {
		return nil, false
	}
	m, ok := v.(*model.Config)
	return m, ok
}

// GetValidationRules 返回模型的校验容器。
func (r *Registry) GetValidationRules(alias string, fields ...string) (*validation.Validation, error) {
	m, err := r.Load(alias)
	if err != nil {
		return nil, err
	}
	return m.GetValidationRules(fields...), nil
}

// Validate 校验记录。
func (r *Registry) Validate(alias string, rec record.Record, fields ...string) (validation.Errors, error) {
	m, err := r.Load(alias)
	if err != nil {
		return nil, err
	}
	return m.Validate(rec, fields...)
}

// FormoFields 返回字段表单视图。
func (r *Registry) FormoFields(alias string, rec record.Record, fields ...string) ([]field.View, error) {
	m, err := r.Load(alias)
	if err != nil {
		return nil, err
	}
	return m.FormoFields(rec, fields...)
}

// FormoValues 返回字段表单值。
func (r *Registry) FormoValues(alias string, rec record.Record, fields ...string) (map[string]any, error) {
	m, err := r.Load(alias)
	if err != nil {
		return nil, err
	}
	return m.FormoValues(rec, fields...)
}

// UpdateValues 两遍写入字段值。
func (r *Registry) UpdateValues(alias string, rec record.Record, values map[string]any) error {
	m, err := r.Load(alias)
	if err != nil {
		return err
	}
	return m.UpdateValues(rec, values)
}

// TranslateError 根据路径中的模型别名分派翻译；其他路径原样返回。
func (r *Registry) TranslateError(lang, path string) (string, error) {
	sub := modelPathPattern.FindStringSubmatch(path)
	if sub == nil {
		return path, nil
	}
	m, err := r.Load(sub[1])
	if err != nil {
		return "", err
	}
	return m.TranslateError(lang, path)
}

// ParseErrors 翻译全部拒绝并按字段分组；外部拒绝归入其字段。
func (r *Registry) ParseErrors(lang string, errs validation.Errors) (map[string][]string, error) {
	out := make(map[string][]string)
	for _, fe := range errs {
		msg, err := r.TranslateError(lang, fe.Path())
		if err != nil {
			return nil, err
		}
		out[fe.Field] = append(out[fe.Field], msg)
	}
	return out, nil
}
