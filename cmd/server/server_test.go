package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tecu23/chess-arena/internal/auth"
	"github.com/tecu23/chess-arena/internal/config"
	"github.com/tecu23/chess-arena/internal/messages"
	"github.com/tecu23/chess-arena/pkg/chess"
	"github.com/tecu23/chess-arena/pkg/events"
	"github.com/tecu23/chess-arena/pkg/repository"
	"github.com/tecu23/chess-arena/pkg/server"
)

func newTestApp(t *testing.T, keys ...string) *application {
	t.Helper()

	logger := zap.NewNop()
	publisher := events.NewPublisher()
	registry := repository.NewInMemoryRegistry(chess.NewTimeControl(600), logger)

	return &application{
		Auth:      auth.NewAPIKeyAuth(keys),
		Logger:    logger,
		Config:    config.Default(),
		Publisher: publisher,
		Registry:  registry,
		Hub:       server.NewHub(publisher, logger),
		Metrics:   prometheus.NewRegistry(),
		StartTime: time.Now(),
	}
}

func TestHealth(t *testing.T) {
	app := newTestApp(t)
	_, err := app.Registry.Create("p1")
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	app.routes().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	var body healthResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, 1, body.Sessions)
	assert.Equal(t, 0, body.Connections)
}

func TestWebSocketRequiresKeyWhenConfigured(t *testing.T) {
	app := newTestApp(t, "secret")

	rr := httptest.NewRecorder()
	app.routes().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/ws", nil))

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "APIKey", rr.Header().Get("WWW-Authenticate"))
}

func TestAuthenticateAcceptsHeaderOrQuery(t *testing.T) {
	app := newTestApp(t, "secret")
	ok := app.authenticate(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusTeapot) })

	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	req.Header.Set("X-Api-Key", "secret")
	rr := httptest.NewRecorder()
	ok(rr, req)
	assert.Equal(t, http.StatusTeapot, rr.Code)

	rr = httptest.NewRecorder()
	ok(rr, httptest.NewRequest(http.MethodGet, "/ws?api_key=secret", nil))
	assert.Equal(t, http.StatusTeapot, rr.Code)
}

func TestCheckOrigin(t *testing.T) {
	app := newTestApp(t)
	app.Config.AllowedOrigins = []string{"http://localhost:3000"}
	check := app.upgrader().CheckOrigin

	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	assert.True(t, check(req))

	req.Header.Set("Origin", "http://localhost:3000")
	assert.True(t, check(req))

	req.Header.Set("Origin", "http://evil.example")
	assert.False(t, check(req))
}

func TestMetricsEndpoint(t *testing.T) {
	app := newTestApp(t)

	rr := httptest.NewRecorder()
	app.routes().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestShutdownStopsHub(t *testing.T) {
	app := newTestApp(t)
	ctx, cancel := context.WithCancel(context.Background())
	app.stopHub = cancel
	go app.Hub.Run(ctx, nopHandler{})

	app.Shutdown()

	select {
	case <-app.Hub.Done():
	default:
		t.Fatal("hub still running")
	}
}

type nopHandler struct{}

func (nopHandler) HandleMessage(string, messages.InboundMessage) {}
func (nopHandler) Malformed(string, error)                      {}
func (nopHandler) Disconnect(string)                            {}
func (nopHandler) Tick(time.Time)                               {}
