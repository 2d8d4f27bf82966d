package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// Cache stores JSON encoded values under string keys for a fixed TTL.
type Cache interface {
	// Get decodes the cached value into out and reports whether it was found.
	Get(ctx context.Context, key string, out any) (bool, error)
	Set(ctx context.Context, key string, val any) error
	Delete(ctx context.Context, keys ...string) error

	// Generation reads a counter; a counter never bumped reads 0.
	Generation(ctx context.Context, key string) (int64, error)
	// Bump increments a counter and returns the new value.
	Bump(ctx context.Context, key string) (int64, error)
}

// Memory is the in-process Cache used when no redis is configured.
type Memory struct {
	mu  sync.RWMutex
	ttl time.Duration
	m   map[string]entry
	gen map[string]int64
	now func() time.Time
}

type entry struct {
	val []byte
	exp time.Time
}

func NewMemory(ttl time.Duration) *Memory {
	if ttl <= 0 {
		ttl = 5 * time.Second
	}

	return &Memory{
		ttl: ttl,
		m:   make(map[string]entry),
		gen: make(map[string]int64),
		now: time.Now,
	}
}

func (c *Memory) Get(_ context.Context, key string, out any) (bool, error) {
	now := c.now()
	c.mu.RLock()
	e, ok := c.m[key]
	c.mu.RUnlock()
	if !ok {
		return false, nil
	}

	if now.After(e.exp) {
		c.mu.Lock()
		delete(c.m, key)
		c.mu.Unlock()
		return false, nil
	}

	if err := json.Unmarshal(e.val, out); err != nil {
		return false, err
	}
	return true, nil
}

func (c *Memory) Set(_ context.Context, key string, val any) error {
	b, err := json.Marshal(val)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.m[key] = entry{val: b, exp: c.now().Add(c.ttl)}
	c.mu.Unlock()
	return nil
}

func (c *Memory) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	for _, k := range keys {
		delete(c.m, k)
	}
	c.mu.Unlock()
	return nil
}

func (c *Memory) Generation(_ context.Context, key string) (int64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.gen[key], nil
}

func (c *Memory) Bump(_ context.Context, key string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen[key]++
	return c.gen[key], nil
}
