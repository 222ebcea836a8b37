package links

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// ApplyFunc receives metadata fetched for the URL that was current when the
// lookup fired. It is only invoked when the URL is still current and no
// auto-fill or manual edit has claimed the form since.
type ApplyFunc func(url string, metadata Metadata)

// AutoFill schedules metadata lookups for an edited URL field. Every edit
// cancels the pending task before a new one is scheduled, so the provider
// is hit exactly once per quiescent URL. Results for superseded URLs are
// dropped on arrival rather than applied.
type AutoFill struct {
	provider Provider
	window   time.Duration
	apply    ApplyFunc
	logger   *slog.Logger

	mu      sync.Mutex
	url     string
	filled  bool
	timer   *time.Timer
	cancel  context.CancelFunc
	pending sync.WaitGroup
}

// NewAutoFill constructs an auto-fill controller for a single form instance.
func NewAutoFill(provider Provider, window time.Duration, apply ApplyFunc, logger *slog.Logger) *AutoFill {
	if window <= 0 {
		window = 500 * time.Millisecond
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AutoFill{
		provider: provider,
		window:   window,
		apply:    apply,
		logger:   logger,
	}
}

// SetURL records an edit to the URL field. Any pending debounce timer and
// in-flight lookup for the previous value are cancelled. A new lookup is
// scheduled after the quiescence window, but only for YouTube URLs that
// have not already been auto-filled.
func (a *AutoFill) SetURL(url string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if url != a.url {
		a.filled = false
	}
	a.url = url
	a.cancelPendingLocked()

	if a.provider == nil || a.filled || Classify(url) != PlatformYouTube {
		return
	}

	a.timer = time.AfterFunc(a.window, func() {
		a.fire(url)
	})
}

// MarkManualEdit records that the user has hand-edited the title or artist
// fields. Late-arriving lookups for the current URL will be discarded
// instead of clobbering the edit.
func (a *AutoFill) MarkManualEdit() {
	a.mu.Lock()
	a.filled = true
	a.cancelPendingLocked()
	a.mu.Unlock()
}

// Stop cancels any scheduled or in-flight lookup and waits for it to drain.
func (a *AutoFill) Stop() {
	a.mu.Lock()
	a.cancelPendingLocked()
	a.mu.Unlock()
	a.pending.Wait()
}

// cancelPendingLocked stops the debounce timer and cancels the lookup
// context. Callers must hold a.mu.
func (a *AutoFill) cancelPendingLocked() {
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
}

// fire runs after the quiescence window elapses for url.
func (a *AutoFill) fire(url string) {
	a.mu.Lock()
	if url != a.url || a.filled {
		a.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel
	a.pending.Add(1)
	a.mu.Unlock()

	go func() {
		defer a.pending.Done()
		defer cancel()

		metadata, err := a.provider.Lookup(ctx, url)
		if err != nil {
			a.logger.Debug("metadata lookup failed", "url", url, "error", err)
			return
		}

		a.mu.Lock()
		if url != a.url || a.filled {
			a.mu.Unlock()
			return
		}
		a.filled = true
		apply := a.apply
		a.mu.Unlock()

		if apply != nil {
			apply(url, metadata)
		}
	}()
}
