package links

import "errors"

var (
	// ErrProviderUnavailable indicates the metadata provider is not configured.
	ErrProviderUnavailable = errors.New("link metadata provider unavailable")
	// ErrLookupUnsupported indicates the URL's platform has no metadata endpoint.
	ErrLookupUnsupported = errors.New("metadata lookup not supported for platform")
)
