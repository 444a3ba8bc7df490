package metrics_test

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/angeloszaimis/static-gateway/internal/metrics"
)

var _ = Describe("Collector", func() {
	var (
		collector *metrics.Collector
		log       *slog.Logger
	)

	BeforeEach(func() {
		log = slog.New(slog.NewTextHandler(os.Stdout, nil))
		collector = metrics.NewCollector(16, log)
	})

	It("should process events from the channel", func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		collector.Start(ctx)

		collector.EventChannel() <- metrics.MetricEvent{
			Type:      metrics.EventRequestReceived,
			Timestamp: time.Now(),
			Source:    "./public",
		}
		collector.EventChannel() <- metrics.MetricEvent{
			Type:       metrics.EventResponseCompleted,
			Timestamp:  time.Now(),
			Source:     "./public",
			Duration:   5 * time.Millisecond,
			StatusCode: 200,
		}

		Eventually(func() int64 {
			return collector.Snapshot("filesystem").TotalRequests
		}, "1s", "10ms").Should(Equal(int64(1)))

		Eventually(func() int64 {
			return collector.Snapshot("filesystem").Sources["./public"].StatusCodes[200]
		}, "1s", "10ms").Should(Equal(int64(1)))
	})

	It("should record fetch failures", func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		collector.Start(ctx)

		collector.EventChannel() <- metrics.MetricEvent{
			Type:      metrics.EventFetchFailed,
			Timestamp: time.Now(),
			Source:    "http://origin:8081",
		}

		Eventually(func() int64 {
			return collector.Snapshot("origin").Sources["http://origin:8081"].FetchErrors
		}, "1s", "10ms").Should(Equal(int64(1)))
	})

	It("should record health changes", func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		collector.Start(ctx)

		collector.EventChannel() <- metrics.MetricEvent{
			Type:      metrics.EventHealthChanged,
			Timestamp: time.Now(),
			Source:    "http://origin:8081",
			Healthy:   true,
		}

		Eventually(func() bool {
			return collector.Snapshot("origin").Sources["http://origin:8081"].Healthy
		}, "1s", "10ms").Should(BeTrue())
	})

	Describe("Handler", func() {
		It("should serve a JSON snapshot", func() {
			req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
			w := httptest.NewRecorder()

			collector.Handler("filesystem")(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Header().Get("Content-Type")).To(Equal("application/json"))
			Expect(w.Body.String()).To(ContainSubstring(`"mode":"filesystem"`))
		})
	})
})
