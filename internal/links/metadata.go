package links

import "context"

// Metadata captures the title and author fetched for a shared link.
type Metadata struct {
	Title  string
	Author string
}

// Provider returns metadata for the supplied link URL.
type Provider interface {
	Lookup(ctx context.Context, url string) (Metadata, error)
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func(ctx context.Context, url string) (Metadata, error)

// Lookup implements Provider.
func (f ProviderFunc) Lookup(ctx context.Context, url string) (Metadata, error) {
	return f(ctx, url)
}
