package kv

import (
	"context"

	"github.com/patrickmn/go-cache"
)

// Memory keeps values for the lifetime of the process.
type Memory struct {
	c *cache.Cache
}

func NewMemory() *Memory {
	// no expiry, no janitor
	return &Memory{c: cache.New(cache.NoExpiration, 0)}
}

func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	v, found := m.c.Get(key)
	if !found {
		return "", false, nil
	}
	s, _ := v.(string)
	return s, true, nil
}

func (m *Memory) Set(_ context.Context, key, value string) error {
	m.c.Set(key, value, cache.NoExpiration)
	return nil
}
