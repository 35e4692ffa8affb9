// Package source 提供模型配置块的来源：Go 代码中的静态定义，或目录中的 YAML 文件。
package source

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/creamcroissant/fieldconf/internal/field"
)

// ErrNotFound 表示来源中没有该模型的配置块。
var ErrNotFound = errors.New("model configuration not found / 未找到模型配置")

// FieldEntry 是配置块中的一个字段，保留声明顺序。
type FieldEntry struct {
	Alias  string
	Config field.Config
}

// Block 是一个模型的配置块。
type Block struct {
	Alias     string
	TableName string
	Fields    []FieldEntry
}

// Source 按模型别名返回配置块。
type Source interface {
	Block(alias string) (Block, error)
}

// Lister 由能够枚举模型别名的来源实现。
type Lister interface {
	Aliases() ([]string, error)
}

// Static 是内存中的配置来源。
type Static struct {
	mu     sync.RWMutex
	blocks map[string]Block
}

// NewStatic 以给定配置块创建静态来源。
func NewStatic(blocks ...Block) *Static {
	s := &Static{blocks: make(map[string]Block, len(blocks))}
	for _, b := range blocks {
		s.Add(b)
	}
	return s
}

// Add 登记或替换配置块。
func (s *Static) Add(b Block) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blocks[b.Alias] = b
}

func (s *Static) Block(alias string) (Block, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.blocks[alias]
	if !ok {
		return Block{}, fmt.Errorf("%w: %s", ErrNotFound, alias)
	}
	b.Fields = append([]FieldEntry(nil), b.Fields...)
	return b, nil
}

func (s *Static) Aliases() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.blocks))
	for alias := range s.blocks {
		out = append(out, alias)
	}
	sort.Strings(out)
	return out, nil
}
