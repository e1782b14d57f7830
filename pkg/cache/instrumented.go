package cache

import (
	"context"
	"strings"
	"time"

	"github.com/matzehuels/clustergraph/pkg/observability"
)

// Instrumented reports hits, misses and writes of the wrapped cache to the
// registered [observability.CacheHooks]. The key type passed to the hooks is
// the key without its trailing content hash ("render:svg").
type Instrumented struct {
	Cache
}

// WithHooks wraps c so that its traffic is reported to the cache hooks.
func WithHooks(c Cache) Cache {
	if c == nil {
		c = NewNullCache()
	}
	return Instrumented{Cache: c}
}

// Get retrieves a value and reports a hit or miss.
func (c Instrumented) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, hit, err := c.Cache.Get(ctx, key)
	if err != nil {
		return nil, false, err
	}
	if hit {
		observability.Cache().OnCacheHit(ctx, keyType(key))
	} else {
		observability.Cache().OnCacheMiss(ctx, keyType(key))
	}
	return data, hit, nil
}

// Set stores a value and reports its size.
func (c Instrumented) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if err := c.Cache.Set(ctx, key, data, ttl); err != nil {
		return err
	}
	observability.Cache().OnCacheSet(ctx, keyType(key), len(data))
	return nil
}

func keyType(key string) string {
	i := strings.LastIndexByte(key, ':')
	if i <= 0 {
		return "unknown"
	}
	// Drop the trailing content hash: "render:svg:<hash>" reports "render:svg".
	return key[:i]
}
