package assets_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/angeloszaimis/static-gateway/internal/assets"
	"github.com/angeloszaimis/static-gateway/internal/circuitbreaker"
)

var _ = Describe("OriginFetcher", func() {
	var (
		origin        *httptest.Server
		originHandler func(w http.ResponseWriter, r *http.Request)
		fetcher       *assets.OriginFetcher
	)

	BeforeEach(func() {
		originHandler = func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Origin", "yes")
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(r.Method + " " + r.URL.RequestURI()))
		}

		origin = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			originHandler(w, r)
		}))

		fetcher = assets.NewOriginFetcher(mustParseURL(origin.URL), 2*time.Second, nil)
	})

	AfterEach(func() {
		origin.Close()
	})

	It("should report the origin URL as its name", func() {
		Expect(fetcher.Name()).To(Equal(origin.URL))
	})

	It("should relay method, path, and query to the origin", func() {
		req := httptest.NewRequest(http.MethodGet, "https://example.com/index.html?x=1", nil)

		res, err := fetcher.Fetch(req)
		Expect(err).NotTo(HaveOccurred())
		defer res.Body.Close()

		body, err := io.ReadAll(res.Body)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(body)).To(Equal("GET /index.html?x=1"))
	})

	It("should relay the origin's headers and status", func() {
		req := httptest.NewRequest(http.MethodGet, "https://example.com/index.html", nil)

		res, err := fetcher.Fetch(req)
		Expect(err).NotTo(HaveOccurred())
		defer res.Body.Close()

		Expect(res.StatusCode).To(Equal(http.StatusOK))
		Expect(res.Header.Get("X-Origin")).To(Equal("yes"))
	})

	It("should relay request headers to the origin", func() {
		var seen string
		originHandler = func(w http.ResponseWriter, r *http.Request) {
			seen = r.Header.Get("If-None-Match")
			w.WriteHeader(http.StatusNotModified)
		}

		req := httptest.NewRequest(http.MethodGet, "https://example.com/index.html", nil)
		req.Header.Set("If-None-Match", `"etag-123"`)

		res, err := fetcher.Fetch(req)
		Expect(err).NotTo(HaveOccurred())
		defer res.Body.Close()

		Expect(seen).To(Equal(`"etag-123"`))
		Expect(res.StatusCode).To(Equal(http.StatusNotModified))
	})

	It("should return an error when the origin is unreachable", func() {
		origin.Close()

		req := httptest.NewRequest(http.MethodGet, "https://example.com/index.html", nil)

		res, err := fetcher.Fetch(req)
		Expect(err).To(HaveOccurred())
		Expect(res).To(BeNil())
	})

	Describe("health flag", func() {
		It("should start healthy", func() {
			Expect(fetcher.IsHealthy()).To(BeTrue())
		})

		It("should report status changes", func() {
			Expect(fetcher.SetHealthy(false)).To(BeTrue())
			Expect(fetcher.IsHealthy()).To(BeFalse())
			Expect(fetcher.SetHealthy(false)).To(BeFalse())
			Expect(fetcher.SetHealthy(true)).To(BeTrue())
		})
	})

	Describe("with a circuit breaker", func() {
		var breaker *circuitbreaker.CircuitBreaker

		BeforeEach(func() {
			breaker = circuitbreaker.NewCircuitBreaker(2, time.Minute)
			fetcher = assets.NewOriginFetcher(mustParseURL(origin.URL), 2*time.Second, breaker)
		})

		It("should open the breaker after repeated failures", func() {
			origin.Close()

			req := httptest.NewRequest(http.MethodGet, "https://example.com/index.html", nil)

			_, err := fetcher.Fetch(req)
			Expect(err).To(HaveOccurred())
			_, err = fetcher.Fetch(req)
			Expect(err).To(HaveOccurred())

			Expect(breaker.State()).To(Equal(circuitbreaker.StateOpen))

			_, err = fetcher.Fetch(req)
			Expect(err).To(MatchError(ContainSubstring("circuit open")))
		})

		It("should close the breaker again after a success", func() {
			breaker.RecordFailure()

			req := httptest.NewRequest(http.MethodGet, "https://example.com/index.html", nil)

			res, err := fetcher.Fetch(req)
			Expect(err).NotTo(HaveOccurred())
			res.Body.Close()

			Expect(breaker.State()).To(Equal(circuitbreaker.StateClosed))
		})
	})
})

func mustParseURL(rawURL string) *url.URL {
	u, err := url.Parse(rawURL)
	if err != nil {
		panic(err)
	}
	return u
}
