// Package metrics collects serving statistics per asset source: request
// counts, fetch errors, response latency percentiles, status code
// distribution, and origin health. Events flow through a buffered channel so
// the request path never blocks on bookkeeping.
package metrics
