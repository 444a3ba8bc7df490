package healthcheck

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/angeloszaimis/static-gateway/internal/assets"
	"github.com/angeloszaimis/static-gateway/internal/metrics"
)

// Watch periodically probes the origin by sending HTTP GET requests to the
// given probe path. The origin's health flag is updated based on the
// response, and transitions are logged and reported to the collector.
func Watch(
	ctx context.Context,
	origin *assets.OriginFetcher,
	probePath string,
	interval time.Duration,
	collector *metrics.Collector,
	logger *slog.Logger,
) {
	client := &http.Client{
		Timeout: 5 * time.Second,
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Origin health watch stopped",
				slog.String("origin", origin.Name()))
			return

		case <-ticker.C:
			probeURL := origin.URL().ResolveReference(&url.URL{Path: probePath})

			req, err := http.NewRequestWithContext(
				ctx, http.MethodGet, probeURL.String(), nil)
			if err != nil {
				continue
			}

			healthy := false
			res, err := client.Do(req)
			if err == nil {
				io.Copy(io.Discard, res.Body)
				res.Body.Close()
				healthy = res.StatusCode == http.StatusOK
			}

			changed := origin.SetHealthy(healthy)
			if !changed {
				continue
			}

			if healthy {
				logger.Info("Origin is back up",
					slog.String("origin", origin.Name()))
			} else {
				logger.Warn("Origin is down",
					slog.String("origin", origin.Name()))
			}

			emitEvent(collector, metrics.MetricEvent{
				Type:      metrics.EventHealthChanged,
				Timestamp: time.Now(),
				Source:    origin.Name(),
				Healthy:   healthy,
			})
		}
	}
}

func emitEvent(collector *metrics.Collector, event metrics.MetricEvent) {
	if collector == nil {
		return
	}

	select {
	case collector.EventChannel() <- event:
	default:
	}
}
