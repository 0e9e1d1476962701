package session

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
)

// MemoryBackend keeps sessions in process memory. Entries never expire;
// they live until cleared or the process exits.
type MemoryBackend struct {
	cache *cache.Cache
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		cache: cache.New(cache.NoExpiration, 10*time.Minute),
	}
}

func (b *MemoryBackend) Get(_ context.Context, key string) (string, error) {
	v, ok := b.cache.Get(key)
	if !ok {
		return "", ErrNotFound
	}
	s, _ := v.(string)
	return s, nil
}

func (b *MemoryBackend) Set(_ context.Context, key, value string) error {
	b.cache.Set(key, value, cache.NoExpiration)
	return nil
}

func (b *MemoryBackend) Delete(_ context.Context, key string) error {
	b.cache.Delete(key)
	return nil
}

func (b *MemoryBackend) Name() string {
	return "memory"
}
