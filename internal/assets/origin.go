package assets

import (
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/angeloszaimis/static-gateway/internal/circuitbreaker"
)

// OriginFetcher resolves assets against an upstream origin server. A circuit
// breaker short-circuits fetches while the origin is failing, and a health
// flag tracks the origin's availability as seen by the health watcher.
type OriginFetcher struct {
	origin  *url.URL
	client  *http.Client
	breaker *circuitbreaker.CircuitBreaker
	mutex   sync.Mutex
	healthy bool
}

// NewOriginFetcher creates a fetcher that relays requests to the given origin.
// The origin starts in a healthy state. The breaker may be nil to disable
// short-circuiting.
func NewOriginFetcher(origin *url.URL, timeout time.Duration, breaker *circuitbreaker.CircuitBreaker) *OriginFetcher {
	return &OriginFetcher{
		origin: origin,
		client: &http.Client{
			Timeout: timeout,
		},
		breaker: breaker,
		healthy: true,
	}
}

// Name returns the origin URL as the asset source identifier.
func (o *OriginFetcher) Name() string {
	return o.origin.String()
}

// URL returns the configured origin URL.
func (o *OriginFetcher) URL() *url.URL {
	return o.origin
}

// Fetch relays the request to the origin, preserving method, path, query,
// headers, and body.
func (o *OriginFetcher) Fetch(req *http.Request) (*http.Response, error) {
	if o.breaker != nil && !o.breaker.Allow() {
		return nil, fmt.Errorf("origin %s: circuit open", o.origin.Host)
	}

	target := o.origin.ResolveReference(&url.URL{
		Path:     req.URL.Path,
		RawQuery: req.URL.RawQuery,
	})

	upstream, err := http.NewRequestWithContext(req.Context(), req.Method, target.String(), req.Body)
	if err != nil {
		o.recordFailure()
		return nil, fmt.Errorf("build origin request: %w", err)
	}
	upstream.Header = req.Header.Clone()

	res, err := o.client.Do(upstream)
	if err != nil {
		o.recordFailure()
		return nil, fmt.Errorf("fetch %s: %w", target, err)
	}

	o.recordSuccess()
	return res, nil
}

// IsHealthy returns true if the origin is currently considered healthy.
func (o *OriginFetcher) IsHealthy() bool {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	return o.healthy
}

// SetHealthy updates the origin's health status.
// Returns true if the status changed, false if it was already in that state.
func (o *OriginFetcher) SetHealthy(healthy bool) (changed bool) {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	if o.healthy == healthy {
		return false
	}

	o.healthy = healthy
	return true
}

func (o *OriginFetcher) recordFailure() {
	if o.breaker != nil {
		o.breaker.RecordFailure()
	}
}

func (o *OriginFetcher) recordSuccess() {
	if o.breaker != nil {
		o.breaker.RecordSuccess()
	}
}
