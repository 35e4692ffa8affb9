// 文件路径: internal/source/yaml.go
// 模块说明: 这是 internal 模块里的 yaml 逻辑，下面的注释会用非常通俗的中文帮你理解每一步。
package source

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/creamcroissant/fieldconf/internal/field"
	"github.com/creamcroissant/fieldconf/internal/hook"
	"github.com/creamcroissant/fieldconf/internal/validation"
)

// ErrUnknownDeriver 表示 YAML 中引用了未登记的值推导函数。
var ErrUnknownDeriver = errors.New("unknown value deriver / 未登记的值推导函数")

// ErrImportCycle 表示模型之间的 imports 形成了环。
var ErrImportCycle = errors.New("model import cycle / 模型导入存在环")

// YAML 从文件系统读取 <alias>.yaml（或 .yml）配置块。
type YAML struct {
	fsys     fs.FS
	derivers map[string]hook.DeriveFunc
}

// YAMLOption 配置 YAML 来源。
type YAMLOption func(*YAML)

// WithDeriver 登记可在 YAML 结果中以 derive: <name> 引用的值推导函数。
func WithDeriver(name string, fn hook.DeriveFunc) YAMLOption {
	return func(y *YAML) {
		y.derivers[name] = fn
	}
}

// NewYAMLDir 读取目录 dir 下的配置文件。
func NewYAMLDir(dir string, opts ...YAMLOption) *YAML {
	return NewYAMLFS(os.DirFS(dir), opts...)
}

// NewYAMLFS 读取 fsys 根目录下的配置文件。
func NewYAMLFS(fsys fs.FS, opts ...YAMLOption) *YAML {
	y := &YAML{fsys: fsys, derivers: make(map[string]hook.DeriveFunc)}
	for _, opt := range opts {
		opt(y)
	}
	return y
}

type blockDoc struct {
	TableName string      `yaml:"tablename"`
	Imports   []importDoc `yaml:"imports"`
	Fields    []fieldDoc  `yaml:"fields"`
}

type importDoc struct {
	Model     string `yaml:"model"`
	Namespace string `yaml:"namespace"`
}

type fieldDoc struct {
	Alias       string               `yaml:"alias"`
	Driver      string               `yaml:"driver"`
	Kind        string               `yaml:"kind"`
	Label       string               `yaml:"label"`
	Description string               `yaml:"description"`
	Help        string               `yaml:"help"`
	Required    bool                 `yaml:"required"`
	Values      []any                `yaml:"values"`
	ForcedValue any                  `yaml:"forcedvalue"`
	ExtraParams map[string]any       `yaml:"extraparams"`
	FormoParams map[string]any       `yaml:"formo_params"`
	Rules       []ruleDoc            `yaml:"rules"`
	Hooks       map[string][]hookDoc `yaml:"hooks"`
}

type ruleDoc struct {
	Name string `yaml:"name"`
	Args []any  `yaml:"args"`
}

type hookDoc struct {
	Conditions []conditionDoc `yaml:"conditions"`
	Results    []resultDoc    `yaml:"results"`
	Bypass     bool           `yaml:"bypass"`
}

type conditionDoc struct {
	Target string `yaml:"target"`
	Op     string `yaml:"op"`
	Value  any    `yaml:"value"`
}

type resultDoc struct {
	Target string `yaml:"target"`
	Op     string `yaml:"op"`
	Value  any    `yaml:"value"`
	Derive string `yaml:"derive"`
}

// Block 解析配置块，并把 imports 中的模型字段以 <namespace>_<alias> 追加到末尾。
func (y *YAML) Block(alias string) (Block, error) {
	return y.load(alias, nil)
}

// Aliases 列出根目录中的全部配置块。
func (y *YAML) Aliases() ([]string, error) {
	entries, err := fs.ReadDir(y.fsys, ".")
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if ext := path.Ext(name); ext == ".yaml" || ext == ".yml" {
			out = append(out, strings.TrimSuffix(name, ext))
		}
	}
	sort.Strings(out)
	return out, nil
}

func (y *YAML) load(alias string, stack []string) (Block, error) {
	for _, seen := range stack {
		if seen == alias {
			return Block{}, fmt.Errorf("%w: %s", ErrImportCycle, strings.Join(append(stack, alias), " -> "))
		}
	}
	stack = append(stack, alias)

	data, err := y.read(alias)
	if err != nil {
		return Block{}, err
	}
	var doc blockDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Block{}, fmt.Errorf("parse %s: %w", alias, err)
	}

	block := Block{Alias: alias, TableName: doc.TableName}
	for i, fd := range doc.Fields {
		if fd.Alias == "" {
			return Block{}, fmt.Errorf("parse %s: field #%d has no alias", alias, i)
		}
		cfg, err := y.fieldConfig(fd)
		if err != nil {
			return Block{}, fmt.Errorf("parse %s.%s: %w", alias, fd.Alias, err)
		}
		block.Fields = append(block.Fields, FieldEntry{Alias: fd.Alias, Config: cfg})
	}

	for _, imp := range doc.Imports {
		imported, err := y.load(imp.Model, stack)
		if err != nil {
			return Block{}, fmt.Errorf("import %s into %s: %w", imp.Model, alias, err)
		}
		ns := imp.Namespace
		if ns == "" {
			ns = imp.Model
		}
		for _, entry := range imported.Fields {
			block.Fields = append(block.Fields, FieldEntry{
				Alias:  ns + "_" + entry.Alias,
				Config: entry.Config.AddNamespace(ns),
			})
		}
	}
	return block, nil
}

func (y *YAML) read(alias string) ([]byte, error) {
	for _, ext := range []string{".yaml", ".yml"} {
		data, err := fs.ReadFile(y.fsys, alias+ext)
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read %s: %w", alias, err)
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, alias)
}

func (y *YAML) fieldConfig(fd fieldDoc) (field.Config, error) {
	kind, err := field.ParseKind(fd.Kind)
	if err != nil {
		return field.Config{}, err
	}
	cfg := field.Config{
		Driver:      fd.Driver,
		Kind:        kind,
		Label:       fd.Label,
		Description: fd.Description,
		Help:        fd.Help,
		Required:    fd.Required,
		Values:      fd.Values,
		ForcedValue: fd.ForcedValue,
		ExtraParams: fd.ExtraParams,
		FormoParams: fd.FormoParams,
	}
	for _, r := range fd.Rules {
		cfg.Rules = append(cfg.Rules, validation.Rule{Name: r.Name, Args: r.Args})
	}
	if len(fd.Hooks) > 0 {
		cfg.Hooks = make(map[hook.Phase][]*hook.Hook, len(fd.Hooks))
	}
	for name, docs := range fd.Hooks {
		phase, err := hook.ParsePhase(name)
		if err != nil {
			return field.Config{}, err
		}
		for _, hd := range docs {
			h, err := y.buildHook(hd)
			if err != nil {
				return field.Config{}, fmt.Errorf("%s hook: %w", phase, err)
			}
			cfg.Hooks[phase] = append(cfg.Hooks[phase], h)
		}
	}
	return cfg, nil
}

func (y *YAML) buildHook(hd hookDoc) (*hook.Hook, error) {
	h := hook.New()
	for _, c := range hd.Conditions {
		h.Condition(c.Target, c.Op, c.Value)
	}
	for _, r := range hd.Results {
		if r.Derive == "" {
			h.Result(r.Target, r.Op, r.Value)
			continue
		}
		fn, ok := y.derivers[r.Derive]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownDeriver, r.Derive)
		}
		target := r.Target
		if target == "" {
			target = ":value"
		}
		h.Result(target, string(hook.OpDeriveValue), hook.ValueSource(fn))
	}
	if hd.Bypass {
		h.Bypass()
	}
	return h, h.Err()
}
