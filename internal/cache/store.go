// 文件路径: internal/cache/store.go
// 模块说明: 这是 internal 模块里的 store 逻辑，下面的注释会用非常通俗的中文帮你理解每一步。
package cache

import (
	"sort"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// NoExpiration 表示条目永不过期。
const NoExpiration = gocache.NoExpiration

// Store 是带命名空间的进程内缓存，注册表用它记住已加载的模型。
type Store interface {
	Set(key string, value any, ttl time.Duration)
	// Add 仅在 key 不存在时写入，返回是否写入成功。
	Add(key string, value any, ttl time.Duration) bool
	Get(key string) (any, bool)
	Delete(key string)
	// Keys 返回当前命名空间下未过期的 key（不含前缀），已排序。
	Keys() []string
	Namespace(prefix string) Store
}

// Options 配置内存缓存行为。
type Options struct {
	// DefaultTTL 为 0 时条目永不过期。
	DefaultTTL      time.Duration
	CleanupInterval time.Duration
	Prefix          string
}

// NewStore 创建基于 go-cache 的缓存实现，并支持命名空间。
func NewStore(opts Options) Store {
	defaultTTL := opts.DefaultTTL
	if defaultTTL <= 0 {
		defaultTTL = NoExpiration
	}
	cleanup := opts.CleanupInterval
	if cleanup <= 0 && defaultTTL > 0 {
		cleanup = defaultTTL
	}
	backend := gocache.New(defaultTTL, cleanup)

	return &goCacheStore{
		backend:    backend,
		defaultTTL: defaultTTL,
		prefix:     normalizePrefix(opts.Prefix),
	}
}

type goCacheStore struct {
	backend    *gocache.Cache
	defaultTTL time.Duration
	prefix     string
}

func (s *goCacheStore) Set(key string, value any, ttl time.Duration) {
	s.backend.Set(s.prefixed(key), value, s.normalizeTTL(ttl))
}

func (s *goCacheStore) Add(key string, value any, ttl time.Duration) bool {
	return s.backend.Add(s.prefixed(key), value, s.normalizeTTL(ttl)) == nil
}

func (s *goCacheStore) Get(key string) (any, bool) {
	return s.backend.Get(s.prefixed(key))
}

func (s *goCacheStore) Delete(key string) {
	s.backend.Delete(s.prefixed(key))
}

func (s *goCacheStore) Keys() []string {
	var keys []string
	for k := range s.backend.Items() {
		switch {
		case s.prefix == "":
			keys = append(keys, k)
		case strings.HasPrefix(k, s.prefix+":"):
			keys = append(keys, strings.TrimPrefix(k, s.prefix+":"))
		}
	}
	sort.Strings(keys)
	return keys
}

func (s *goCacheStore) Namespace(prefix string) Store {
	return &goCacheStore{
		backend:    s.backend,
		defaultTTL: s.defaultTTL,
		prefix:     joinPrefixes(s.prefix, prefix),
	}
}

func (s *goCacheStore) prefixed(key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return s.prefix
	}
	if s.prefix == "" {
		return key
	}
	return s.prefix + ":" + key
}

func (s *goCacheStore) normalizeTTL(ttl time.Duration) time.Duration {
	if ttl == 0 {
		return s.defaultTTL
	}
	return ttl
}

func normalizePrefix(prefix string) string {
	return strings.Trim(prefix, ": ")
}

func joinPrefixes(parts ...string) string {
	var normalized []string
	for _, part := range parts {
		trimmed := normalizePrefix(part)
		if trimmed != "" {
			normalized = append(normalized, trimmed)
		}
	}
	return strings.Join(normalized, ":")
}
