package fixer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/maypok86/otter"
)

// CachingService memoizes successful replies for identical prompts within
// the process lifetime. Failures are never cached.
type CachingService struct {
	inner Service
	cache otter.Cache[string, string]
}

// NewCachingService wraps inner with an in-memory cache of the given
// capacity whose entries expire after ttl.
func NewCachingService(inner Service, capacity int, ttl time.Duration) (*CachingService, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("cache capacity must be positive, got %d", capacity)
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("cache ttl must be positive, got %s", ttl)
	}

	cache, err := otter.MustBuilder[string, string](capacity).
		WithTTL(ttl).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build response cache: %w", err)
	}

	return &CachingService{inner: inner, cache: cache}, nil
}

// Generate implements Service.
func (c *CachingService) Generate(ctx context.Context, prompt Prompt) (string, error) {
	key := c.key(prompt)
	if text, ok := c.cache.Get(key); ok {
		return text, nil
	}

	text, err := c.inner.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	c.cache.Set(key, text)
	return text, nil
}

// Name implements Service.
func (c *CachingService) Name() string {
	return c.inner.Name()
}

// Close releases the cache.
func (c *CachingService) Close() {
	c.cache.Close()
}

func (c *CachingService) key(p Prompt) string {
	h := sha256.New()
	for _, part := range []string{c.inner.Name(), string(p.Format), p.System, p.User} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
