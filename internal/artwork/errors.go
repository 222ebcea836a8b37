package artwork

import "errors"

var (
	// ErrStorageUnavailable indicates no object storage is configured.
	ErrStorageUnavailable = errors.New("artwork storage unavailable")
	// ErrFetcherUnavailable indicates the image fetcher is not configured.
	ErrFetcherUnavailable = errors.New("artwork fetcher unavailable")
)
