package links

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"
)

// CachingProvider wraps another Provider with a bounded TTL cache. Lookup
// errors are never cached; concurrent lookups for the same URL are
// collapsed into a single upstream call.
type CachingProvider struct {
	base  Provider
	cache *expirable.LRU[string, Metadata]
	group singleflight.Group
}

// NewCachingProvider returns a Provider that caches up to size successful
// lookups for the provided TTL.
func NewCachingProvider(base Provider, size int, ttl time.Duration) *CachingProvider {
	if size <= 0 {
		size = 512
	}
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &CachingProvider{
		base:  base,
		cache: expirable.NewLRU[string, Metadata](size, nil, ttl),
	}
}

// Lookup returns cached metadata when available, otherwise it delegates to
// the underlying provider and stores the result.
func (c *CachingProvider) Lookup(ctx context.Context, url string) (Metadata, error) {
	if c == nil || c.base == nil {
		return Metadata{}, ErrProviderUnavailable
	}

	if metadata, ok := c.cache.Get(url); ok {
		return metadata, nil
	}

	result, err, _ := c.group.Do(url, func() (any, error) {
		if metadata, ok := c.cache.Get(url); ok {
			return metadata, nil
		}
		metadata, err := c.base.Lookup(ctx, url)
		if err != nil {
			return Metadata{}, err
		}
		c.cache.Add(url, metadata)
		return metadata, nil
	})
	if err != nil {
		return Metadata{}, err
	}

	return result.(Metadata), nil
}
