// Package main is the entry point of the application
package main

import (
	"net/http"
	"slices"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/tecu23/chess-arena/pkg/server"
)

func (app *application) upgrader() *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,

		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" || len(app.Config.AllowedOrigins) == 0 {
				return true
			}
			return slices.Contains(app.Config.AllowedOrigins, origin)
		},
	}
}

// handleWebSocket handles WebSocket connections
func (app *application) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	// Upgrade HTTP connection to WebSocket
	ws, err := app.upgrader().Upgrade(w, r, nil)
	if err != nil {
		app.Logger.Warn("Failed to upgrade to WebSocket", zap.Error(err))
		return
	}

	// Create and register connection
	conn := server.NewConnection(ws, app.Hub, app.Logger)
	app.Hub.Register(conn)

	app.Logger.Info("WebSocket connection established",
		zap.String("connection_id", conn.ID),
		zap.String("remote_addr", r.RemoteAddr))

	// Start connection read/write goroutines
	go conn.WritePump()
	go conn.ReadPump()
}
