package viewcache

import (
	"context"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
)

const keySeparator = "\x00"

type Memory struct {
	cache *cache.Cache
}

func NewMemory(ttl time.Duration) *Memory {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &Memory{cache: cache.New(ttl, ttl+ttl/2)}
}

func (m *Memory) Get(_ context.Context, path, key string) ([]byte, bool, error) {
	v, ok := m.cache.Get(path + keySeparator + key)
	if !ok {
		return nil, false, nil
	}
	raw, ok := v.([]byte)
	return raw, ok, nil
}

func (m *Memory) Set(_ context.Context, path, key string, value []byte) error {
	m.cache.Set(path+keySeparator+key, value, cache.DefaultExpiration)
	return nil
}

func (m *Memory) InvalidatePath(_ context.Context, path string) error {
	prefix := path + keySeparator
	for k := range m.cache.Items() {
		if strings.HasPrefix(k, prefix) {
			m.cache.Delete(k)
		}
	}
	return nil
}

var _ Cache = (*Memory)(nil)
