package handler

import (
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/angeloszaimis/static-gateway/internal/assets"
	"github.com/angeloszaimis/static-gateway/internal/metrics"
)

// GatewayHandler normalizes incoming request paths and delegates asset
// resolution to the bound fetcher. A bare root path is rewritten to the
// configured index file; any fetch failure becomes a plain-text 500 response
// carrying the error description.
type GatewayHandler struct {
	logger           *slog.Logger
	fetcher          assets.Fetcher
	indexFile        string
	metricsCollector *metrics.Collector
}

func (g *GatewayHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	g.logger.Info("Received request",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("proto", r.Proto),
		slog.String("host", r.Host),
		slog.String("user_agent", r.UserAgent()))

	g.emitEvent(metrics.MetricEvent{
		Type:      metrics.EventRequestReceived,
		Timestamp: time.Now(),
		Source:    g.fetcher.Name(),
	})

	start := time.Now()

	res, err := g.fetcher.Fetch(g.normalize(r))
	if err != nil {
		g.logger.Error("Asset fetch failed",
			slog.String("path", r.URL.Path),
			slog.Any("err", err))

		g.emitEvent(metrics.MetricEvent{
			Type:      metrics.EventFetchFailed,
			Timestamp: time.Now(),
			Source:    g.fetcher.Name(),
		})

		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	defer res.Body.Close()

	copyHeader(w.Header(), res.Header)
	w.WriteHeader(res.StatusCode)

	if _, err := io.Copy(w, res.Body); err != nil {
		// Headers are already on the wire, all we can do is log.
		g.logger.Warn("Failed to relay asset body",
			slog.String("path", r.URL.Path),
			slog.Any("err", err))
	}

	g.emitEvent(metrics.MetricEvent{
		Type:       metrics.EventResponseCompleted,
		Timestamp:  time.Now(),
		Source:     g.fetcher.Name(),
		Duration:   time.Since(start),
		StatusCode: res.StatusCode,
	})
}

// normalize maps the bare root path to the configured index file. The
// incoming request is cloned, never mutated in place; only the URL path
// changes, query and fragment stay intact. Any other path passes through
// untouched.
func (g *GatewayHandler) normalize(r *http.Request) *http.Request {
	if r.URL.Path != "/" {
		return r
	}

	normalized := r.Clone(r.Context())
	normalized.URL.Path = "/" + g.indexFile
	normalized.URL.RawPath = ""

	return normalized
}

func (g *GatewayHandler) emitEvent(event metrics.MetricEvent) {
	if g.metricsCollector == nil {
		return
	}

	select {
	case g.metricsCollector.EventChannel() <- event:
	default:
	}
}

func copyHeader(dst, src http.Header) {
	for key, values := range src {
		for _, value := range values {
			dst.Add(key, value)
		}
	}
}

func NewGatewayHandler(logger *slog.Logger, fetcher assets.Fetcher, indexFile string, collector *metrics.Collector) *GatewayHandler {
	return &GatewayHandler{
		logger:           logger,
		fetcher:          fetcher,
		indexFile:        indexFile,
		metricsCollector: collector,
	}
}
