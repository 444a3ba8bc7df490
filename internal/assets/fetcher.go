package assets

import "net/http"

// Fetcher resolves a request to a static asset and returns an HTTP response.
// Implementations may block while resolving; cancellation is carried by the
// request's context. A missing asset is a 404 response, not an error: the
// error return is reserved for failures the caller cannot act on.
type Fetcher interface {
	Fetch(req *http.Request) (*http.Response, error)

	// Name identifies the asset source in logs and metrics.
	Name() string
}
