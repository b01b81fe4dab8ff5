// Package main is the entry point of the application
package main

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"
)

type healthResponse struct {
	Status      string `json:"status"`
	Uptime      string `json:"uptime"`
	Sessions    int    `json:"sessions"`
	Connections int    `json:"connections"`
}

// handleHealth handles the GET /health endpoint
func (app *application) handleHealth(w http.ResponseWriter, _ *http.Request) {
	resp := healthResponse{
		Status:      "ok",
		Uptime:      time.Since(app.StartTime).Round(time.Second).String(),
		Sessions:    app.Registry.Len(),
		Connections: app.Hub.Count(),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		app.Logger.Warn("writing health response", zap.Error(err))
	}
}
