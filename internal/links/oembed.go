package links

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultOEmbedEndpoint = "https://www.youtube.com/oembed"

// Doer executes HTTP requests. It matches *http.Client so tests can swap in
// a stub without a network.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// OEmbedProvider fetches title and author metadata for YouTube links from
// the public oEmbed endpoint.
type OEmbedProvider struct {
	Endpoint string
	Client   Doer
	Timeout  time.Duration
}

// NewOEmbedProvider constructs a Provider backed by the YouTube oEmbed API.
func NewOEmbedProvider(endpoint string, timeout time.Duration) *OEmbedProvider {
	if strings.TrimSpace(endpoint) == "" {
		endpoint = defaultOEmbedEndpoint
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &OEmbedProvider{
		Endpoint: endpoint,
		Client:   &http.Client{Timeout: timeout},
		Timeout:  timeout,
	}
}

// Lookup requests oEmbed metadata for the provided URL. Only YouTube links
// are supported; classification happens here so callers cannot accidentally
// hit the endpoint with foreign URLs. Missing response fields default to
// empty strings.
func (p *OEmbedProvider) Lookup(ctx context.Context, rawURL string) (Metadata, error) {
	if p == nil {
		return Metadata{}, ErrProviderUnavailable
	}
	if Classify(rawURL) != PlatformYouTube {
		return Metadata{}, ErrLookupUnsupported
	}
	if p.Client == nil {
		p.Client = &http.Client{Timeout: p.Timeout}
	}

	reqCtx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()

	reqURL := fmt.Sprintf("%s?url=%s&format=json", p.Endpoint, url.QueryEscape(rawURL))
	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return Metadata{}, fmt.Errorf("build oembed request: %w", err)
	}

	resp, err := p.Client.Do(req)
	if err != nil {
		return Metadata{}, fmt.Errorf("oembed request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Metadata{}, fmt.Errorf("oembed returned status %d", resp.StatusCode)
	}

	var payload struct {
		Title      string `json:"title"`
		AuthorName string `json:"author_name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Metadata{}, fmt.Errorf("parse oembed response: %w", err)
	}

	return Metadata{
		Title:  payload.Title,
		Author: payload.AuthorName,
	}, nil
}
