// Package main is the entry point of the application
package main

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (app *application) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", app.handleHealth)
	mux.HandleFunc("GET /ws", app.authenticate(app.handleWebSocket))
	mux.Handle("GET /metrics", promhttp.HandlerFor(app.Metrics, promhttp.HandlerOpts{}))

	return mux
}
