package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/language"
)

//go:embed locales/*.json
var embeddedLocales embed.FS

// Manager 管理翻译内容。
type Manager struct {
	defaultLang  string
	translations map[string]map[string]string
	logger       *slog.Logger
	mu           sync.RWMutex
}

// Option 用于配置 Manager。
type Option func(*Manager)

// WithLogger 设置 Manager 使用的日志实例。
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithDefaultLang 设置默认语言。
func WithDefaultLang(lang string) Option {
	return func(m *Manager) {
		m.defaultLang = normalize(lang)
	}
}

// NewManager 创建 i18n Manager。
func NewManager(opts ...Option) (*Manager, error) {
	m := &Manager{
		defaultLang:  "en-US",
		translations: make(map[string]map[string]string),
		logger:       slog.Default(),
	}

	for _, opt := range opts {
		opt(m)
	}

	if err := m.loadEmbeddedTranslations(); err != nil {
		return nil, err
	}

	return m, nil
}

var defaultManager = sync.OnceValue(func() *Manager {
	m, err := NewManager()
	if err != nil {
		panic(fmt.Sprintf("i18n: embedded locales: %v", err))
	}
	return m
})

// Default 返回只含内置语言包的共享 Manager。
func Default() *Manager {
	return defaultManager()
}

func (m *Manager) loadEmbeddedTranslations() error {
	entries, err := embeddedLocales.ReadDir("locales")
	if err != nil {
		return fmt.Errorf("failed to read locales directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		data, err := embeddedLocales.ReadFile("locales/" + entry.Name())
		if err != nil {
			return fmt.Errorf("failed to read locale file %s: %w", entry.Name(), err)
		}

		var content map[string]string
		if err := json.Unmarshal(data, &content); err != nil {
			return fmt.Errorf("failed to unmarshal locale file %s: %w", entry.Name(), err)
		}

		m.merge(strings.TrimSuffix(entry.Name(), ".json"), content)
	}

	return nil
}

// LoadFromDir 从外部目录加载翻译文件，同名键覆盖内置内容。
func (m *Manager) LoadFromDir(dir string) error {
	files, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // 外部目录不存在也可以继续。
		}
		return fmt.Errorf("failed to read external locales directory: %w", err)
	}

	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".json") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, file.Name()))
		if err != nil {
			m.logger.Warn("failed to read external locale file", "file", file.Name(), "error", err)
			continue
		}

		var content map[string]string
		if err := json.Unmarshal(data, &content); err != nil {
			m.logger.Warn("failed to unmarshal external locale file", "file", file.Name(), "error", err)
			continue
		}

		m.merge(strings.TrimSuffix(file.Name(), ".json"), content)
	}
	return nil
}

func (m *Manager) merge(lang string, content map[string]string) {
	lang = normalize(lang)
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.translations[lang]; !exists {
		m.translations[lang] = make(map[string]string, len(content))
	}
	for k, v := range content {
		m.translations[lang][k] = v
	}
}

// Translate 按语言与键名返回翻译内容。
// 查找顺序：精确语言、同一基础语言（"fr" 命中 "fr-FR"）、默认语言，最后回退为 key。
func (m *Manager) Translate(lang, key string, args ...any) string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, candidate := range m.candidates(lang) {
		if trans, ok := m.translations[candidate]; ok {
			if val, ok := trans[key]; ok {
				if len(args) > 0 {
					return fmt.Sprintf(val, args...)
				}
				return val
			}
		}
	}

	// 回退为原始 key
	return key
}

func (m *Manager) candidates(lang string) []string {
	out := make([]string, 0, 3)
	tag, err := language.Parse(lang)
	if err == nil {
		out = append(out, tag.String())
		base, _ := tag.Base()
		for _, known := range m.sortedLanguages() {
			if known == tag.String() {
				continue
			}
			if kt, err := language.Parse(known); err == nil {
				if kb, _ := kt.Base(); kb == base {
					out = append(out, known)
					break
				}
			}
		}
	}
	return append(out, m.defaultLang)
}

// GetSupportedLanguages 返回支持的语言列表。
func (m *Manager) GetSupportedLanguages() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sortedLanguages()
}

func (m *Manager) sortedLanguages() []string {
	langs := make([]string, 0, len(m.translations))
	for k := range m.translations {
		langs = append(langs, k)
	}
	sort.Strings(langs)
	return langs
}

// GetTranslations 返回指定语言的完整翻译表。
func (m *Manager) GetTranslations(lang string) map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if trans, ok := m.translations[normalize(lang)]; ok {
		// 返回副本，避免外部修改
		out := make(map[string]string, len(trans))
		for k, v := range trans {
			out[k] = v
		}
		return out
	}
	return nil
}

func normalize(lang string) string {
	if tag, err := language.Parse(lang); err == nil {
		return tag.String()
	}
	return lang
}
