package links

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type appliedRecorder struct {
	mu      sync.Mutex
	applied []Metadata
	urls    []string
}

func (r *appliedRecorder) apply(url string, metadata Metadata) {
	r.mu.Lock()
	r.applied = append(r.applied, metadata)
	r.urls = append(r.urls, url)
	r.mu.Unlock()
}

func (r *appliedRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.applied)
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

func TestAutoFillDebouncesKeystrokes(t *testing.T) {
	provider := &countingProvider{metadata: Metadata{Title: "Song", Author: "Artist"}}
	recorder := &appliedRecorder{}
	autofill := NewAutoFill(provider, 100*time.Millisecond, recorder.apply, nil)
	defer autofill.Stop()

	// Simulate typing the URL character by character, faster than the window.
	full := "https://youtu.be/dQw4w9WgXcQ"
	for i := len("https://youtu.be/"); i <= len(full); i++ {
		autofill.SetURL(full[:i])
		time.Sleep(time.Millisecond)
	}

	waitFor(t, time.Second, func() bool { return recorder.count() == 1 })

	if provider.callCount() != 1 {
		t.Fatalf("expected exactly one lookup, got %d", provider.callCount())
	}
	recorder.mu.Lock()
	defer recorder.mu.Unlock()
	if recorder.urls[0] != full {
		t.Fatalf("lookup used %q want final url %q", recorder.urls[0], full)
	}
	if recorder.applied[0].Title != "Song" {
		t.Fatalf("unexpected metadata applied: %+v", recorder.applied[0])
	}
}

func TestAutoFillSkipsNonYouTube(t *testing.T) {
	provider := &countingProvider{metadata: Metadata{Title: "Song"}}
	recorder := &appliedRecorder{}
	autofill := NewAutoFill(provider, 5*time.Millisecond, recorder.apply, nil)
	defer autofill.Stop()

	autofill.SetURL("https://open.spotify.com/track/11dFghVXANMlKmJXsNCbNl")
	autofill.SetURL("https://example.com/song")
	autofill.SetURL("")

	time.Sleep(30 * time.Millisecond)

	if provider.callCount() != 0 {
		t.Fatalf("expected no lookups, got %d", provider.callCount())
	}
	if recorder.count() != 0 {
		t.Fatalf("expected nothing applied, got %d", recorder.count())
	}
}

func TestAutoFillAtMostOncePerURL(t *testing.T) {
	provider := &countingProvider{metadata: Metadata{Title: "Song"}}
	recorder := &appliedRecorder{}
	autofill := NewAutoFill(provider, 5*time.Millisecond, recorder.apply, nil)
	defer autofill.Stop()

	url := "https://youtu.be/dQw4w9WgXcQ"
	autofill.SetURL(url)
	waitFor(t, time.Second, func() bool { return recorder.count() == 1 })

	// Re-submitting the same value must not trigger another lookup.
	autofill.SetURL(url)
	time.Sleep(30 * time.Millisecond)
	if provider.callCount() != 1 {
		t.Fatalf("expected one lookup for unchanged url, got %d", provider.callCount())
	}

	// Editing to a new URL resets the flag and fetches again.
	autofill.SetURL("https://youtu.be/abc123XYZ99")
	waitFor(t, time.Second, func() bool { return recorder.count() == 2 })
	if provider.callCount() != 2 {
		t.Fatalf("expected second lookup after edit, got %d", provider.callCount())
	}
}

func TestAutoFillManualEditWins(t *testing.T) {
	release := make(chan struct{})
	provider := ProviderFunc(func(ctx context.Context, url string) (Metadata, error) {
		select {
		case <-release:
			return Metadata{Title: "From Lookup"}, nil
		case <-ctx.Done():
			return Metadata{}, ctx.Err()
		}
	})
	recorder := &appliedRecorder{}
	autofill := NewAutoFill(provider, time.Millisecond, recorder.apply, nil)
	defer autofill.Stop()

	autofill.SetURL("https://youtu.be/dQw4w9WgXcQ")
	time.Sleep(20 * time.Millisecond)

	// User types a title by hand while the lookup is still in flight.
	autofill.MarkManualEdit()
	close(release)

	time.Sleep(30 * time.Millisecond)
	if recorder.count() != 0 {
		t.Fatalf("late lookup must not clobber manual edit, applied %d times", recorder.count())
	}
}

func TestAutoFillDropsStaleResults(t *testing.T) {
	first := make(chan struct{})
	var mu sync.Mutex
	calls := 0
	provider := ProviderFunc(func(ctx context.Context, url string) (Metadata, error) {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()
		if n == 1 {
			// First lookup stalls until after the URL has changed.
			select {
			case <-first:
			case <-ctx.Done():
				return Metadata{}, ctx.Err()
			}
			return Metadata{Title: "Stale"}, nil
		}
		return Metadata{Title: "Fresh"}, nil
	})

	recorder := &appliedRecorder{}
	autofill := NewAutoFill(provider, time.Millisecond, recorder.apply, nil)
	defer autofill.Stop()

	autofill.SetURL("https://youtu.be/firstvideo1")
	time.Sleep(20 * time.Millisecond)

	autofill.SetURL("https://youtu.be/secondvideo")
	close(first)

	waitFor(t, time.Second, func() bool { return recorder.count() >= 1 })
	time.Sleep(20 * time.Millisecond)

	recorder.mu.Lock()
	defer recorder.mu.Unlock()
	if len(recorder.applied) != 1 {
		t.Fatalf("expected exactly one applied result, got %d", len(recorder.applied))
	}
	if recorder.applied[0].Title != "Fresh" {
		t.Fatalf("stale result applied: %+v", recorder.applied[0])
	}
	if recorder.urls[0] != "https://youtu.be/secondvideo" {
		t.Fatalf("unexpected applied url: %q", recorder.urls[0])
	}
}

func TestAutoFillLookupFailureIsSilent(t *testing.T) {
	provider := &countingProvider{err: errors.New("oembed returned status 500")}
	recorder := &appliedRecorder{}
	autofill := NewAutoFill(provider, time.Millisecond, recorder.apply, nil)
	defer autofill.Stop()

	autofill.SetURL("https://youtu.be/dQw4w9WgXcQ")

	waitFor(t, time.Second, func() bool { return provider.callCount() == 1 })
	time.Sleep(10 * time.Millisecond)

	if recorder.count() != 0 {
		t.Fatalf("failed lookup must not apply, applied %d times", recorder.count())
	}
}
