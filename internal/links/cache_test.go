package links

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type countingProvider struct {
	mu       sync.Mutex
	metadata Metadata
	err      error
	delay    time.Duration
	calls    int
}

func (p *countingProvider) Lookup(ctx context.Context, url string) (Metadata, error) {
	p.mu.Lock()
	p.calls++
	p.mu.Unlock()
	if p.delay > 0 {
		select {
		case <-time.After(p.delay):
		case <-ctx.Done():
			return Metadata{}, ctx.Err()
		}
	}
	if p.err != nil {
		return Metadata{}, p.err
	}
	return p.metadata, nil
}

func (p *countingProvider) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

func TestCachingProviderLookup(t *testing.T) {
	base := &countingProvider{metadata: Metadata{Title: "Test", Author: "Author"}}
	cache := NewCachingProvider(base, 8, time.Minute)

	ctx := context.Background()

	meta, err := cache.Lookup(ctx, "https://youtu.be/abc")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if meta.Title != "Test" || meta.Author != "Author" {
		t.Fatalf("unexpected metadata: %+v", meta)
	}

	if _, err := cache.Lookup(ctx, "https://youtu.be/abc"); err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if base.callCount() != 1 {
		t.Fatalf("expected cached result, got %d calls", base.callCount())
	}

	if _, err := cache.Lookup(ctx, "https://youtu.be/other"); err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if base.callCount() != 2 {
		t.Fatalf("expected distinct URLs to miss, got %d calls", base.callCount())
	}
}

func TestCachingProviderErrorsNotCached(t *testing.T) {
	base := &countingProvider{err: errors.New("boom")}
	cache := NewCachingProvider(base, 8, time.Minute)

	if _, err := cache.Lookup(context.Background(), "https://youtu.be/abc"); err == nil {
		t.Fatal("expected error")
	}
	if _, err := cache.Lookup(context.Background(), "https://youtu.be/abc"); err == nil {
		t.Fatal("expected error")
	}
	if base.callCount() != 2 {
		t.Fatalf("errors must not be cached, got %d calls", base.callCount())
	}
}

func TestCachingProviderNilBase(t *testing.T) {
	var cache *CachingProvider
	if _, err := cache.Lookup(context.Background(), "https://youtu.be/abc"); !errors.Is(err, ErrProviderUnavailable) {
		t.Fatalf("expected ErrProviderUnavailable, got %v", err)
	}

	cache = NewCachingProvider(nil, 8, time.Minute)
	if _, err := cache.Lookup(context.Background(), "https://youtu.be/abc"); !errors.Is(err, ErrProviderUnavailable) {
		t.Fatalf("expected ErrProviderUnavailable, got %v", err)
	}
}

func TestCachingProviderCollapsesConcurrentLookups(t *testing.T) {
	base := &countingProvider{metadata: Metadata{Title: "Test"}, delay: 20 * time.Millisecond}
	cache := NewCachingProvider(base, 8, time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := cache.Lookup(context.Background(), "https://youtu.be/abc"); err != nil {
				t.Errorf("lookup: %v", err)
			}
		}()
	}
	wg.Wait()

	if base.callCount() != 1 {
		t.Fatalf("expected single upstream call, got %d", base.callCount())
	}
}
