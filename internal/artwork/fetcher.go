package artwork

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultMaxImageBytes = 5 * 1024 * 1024

// Doer executes HTTP requests; *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// HTTPFetcher downloads thumbnail images over HTTP with a size cap.
type HTTPFetcher struct {
	Client   Doer
	Timeout  time.Duration
	MaxBytes int64
}

// NewHTTPFetcher constructs a fetcher with the provided request timeout.
func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &HTTPFetcher{
		Client:   &http.Client{Timeout: timeout},
		Timeout:  timeout,
		MaxBytes: defaultMaxImageBytes,
	}
}

// Fetch downloads the image at url and returns its bytes and content type.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, string, error) {
	if f == nil || f.Client == nil {
		return nil, "", ErrFetcherUnavailable
	}

	reqCtx, cancel := context.WithTimeout(ctx, f.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, "", fmt.Errorf("build artwork request: %w", err)
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("fetch artwork: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("artwork fetch returned status %d", resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType != "" && !strings.HasPrefix(contentType, "image/") {
		return nil, "", fmt.Errorf("unexpected artwork content type %q", contentType)
	}

	maxBytes := f.MaxBytes
	if maxBytes <= 0 {
		maxBytes = defaultMaxImageBytes
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("read artwork body: %w", err)
	}
	if int64(len(data)) > maxBytes {
		return nil, "", fmt.Errorf("artwork exceeds %d byte limit", maxBytes)
	}

	return data, contentType, nil
}
