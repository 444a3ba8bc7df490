package main

import (
	"net/http"

	"github.com/angeloszaimis/static-gateway/internal/handler"
	"github.com/angeloszaimis/static-gateway/internal/metrics"
)

func setupRouter(gateway *handler.GatewayHandler, metricsCollector *metrics.Collector, mode string) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/", gateway.ServeHTTP)
	mux.HandleFunc("/metrics", metricsCollector.Handler(mode))

	return mux
}
