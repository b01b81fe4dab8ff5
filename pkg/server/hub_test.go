package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tecu23/chess-arena/internal/config"
	"github.com/tecu23/chess-arena/internal/messages"
	"github.com/tecu23/chess-arena/internal/msgcat"
	"github.com/tecu23/chess-arena/pkg/chess"
	"github.com/tecu23/chess-arena/pkg/events"
	"github.com/tecu23/chess-arena/pkg/manager"
	"github.com/tecu23/chess-arena/pkg/repository"
)

type frame struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

type client struct {
	t  *testing.T
	ws *websocket.Conn
	id string
}

func startServer(t *testing.T) (*Hub, string) {
	t.Helper()

	logger := zap.NewNop()
	publisher := events.NewPublisher(events.Synchronous())
	registry := repository.NewInMemoryRegistry(chess.NewTimeControl(600), logger)
	hub := NewHub(publisher, logger, WithTickInterval(time.Hour))
	gm := manager.NewManager(registry, hub, publisher, msgcat.Default(), manager.Settings{
		ClockMode: config.ClockServer,
		Retention: time.Minute,
	}, logger)

	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx, gm)

	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		conn := NewConnection(ws, hub, logger)
		hub.Register(conn)
		go conn.WritePump()
		go conn.ReadPump()
	}))

	t.Cleanup(func() {
		cancel()
		<-hub.Done()
		srv.Close()
		registry.Shutdown()
	})

	return hub, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, url string) *client {
	t.Helper()

	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { ws.Close() })

	c := &client{t: t, ws: ws}

	var connected messages.ConnectedPayload
	c.expect(messages.EventConnected, &connected)
	require.NotEmpty(t, connected.ConnectionID)
	c.id = connected.ConnectionID

	return c
}

func (c *client) send(typ string, payload any) {
	c.t.Helper()

	raw, err := json.Marshal(payload)
	require.NoError(c.t, err)
	require.NoError(c.t, c.ws.WriteJSON(messages.InboundMessage{Type: typ, Payload: raw}))
}

// expect reads frames until one with the given event arrives
func (c *client) expect(event string, into any) {
	c.t.Helper()

	require.NoError(c.t, c.ws.SetReadDeadline(time.Now().Add(5*time.Second)))
	for {
		var f frame
		require.NoError(c.t, c.ws.ReadJSON(&f))
		if f.Event != event {
			continue
		}
		if into != nil {
			require.NoError(c.t, json.Unmarshal(f.Payload, into))
		}
		return
	}
}

func TestTwoPlayersStartAGame(t *testing.T) {
	hub, url := startServer(t)

	p1 := dial(t, url)
	p2 := dial(t, url)
	assert.NotEqual(t, p1.id, p2.id)

	p1.send(messages.TypeCreateGame, struct{}{})
	var created messages.GameCreatedPayload
	p1.expect(messages.EventGameCreated, &created)
	assert.Regexp(t, `^[A-Z0-9]{6}$`, created.GameID)
	assert.Equal(t, "white", string(created.Color))

	p2.send(messages.TypeJoinGame, messages.GameRequest{GameID: created.GameID})
	var joined messages.GameJoinedPayload
	p2.expect(messages.EventGameJoined, &joined)
	assert.Equal(t, "black", string(joined.Color))

	var opponent messages.OpponentJoinedPayload
	p1.expect(messages.EventOpponentJoined, &opponent)
	assert.Equal(t, "black", string(opponent.Color))

	for _, c := range []*client{p1, p2} {
		var start messages.StartGamePayload
		c.expect(messages.EventStartGame, &start)
		assert.Equal(t, created.GameID, start.GameID)
		assert.Equal(t, "white", string(start.CurrentPlayer))
	}

	p1.send(messages.TypeMove, map[string]any{"gameId": created.GameID, "move": "e2e4"})
	var mv messages.MovePayload
	p2.expect(messages.EventMove, &mv)
	assert.Equal(t, "e2", mv.Move.From)
	assert.Equal(t, "e4", mv.Move.To)
	assert.Equal(t, p1.id, mv.FromSocketID)

	assert.Equal(t, 2, hub.Count())
}

func TestDisconnectForfeitsOverTheWire(t *testing.T) {
	_, url := startServer(t)

	p1 := dial(t, url)
	p2 := dial(t, url)

	p1.send(messages.TypeCreateGame, struct{}{})
	var created messages.GameCreatedPayload
	p1.expect(messages.EventGameCreated, &created)

	p2.send(messages.TypeJoinGame, messages.GameRequest{GameID: created.GameID})
	p2.expect(messages.EventStartGame, nil)

	require.NoError(t, p1.ws.Close())

	var over struct {
		Winner  *string `json:"winner"`
		Message string  `json:"message"`
	}
	p2.expect(messages.EventGameOver, &over)
	require.NotNil(t, over.Winner)
	assert.Equal(t, "black", *over.Winner)
	assert.Equal(t, "White disconnected. Black wins!", over.Message)
}

func TestMalformedFrameGetsError(t *testing.T) {
	_, url := startServer(t)
	p1 := dial(t, url)

	require.NoError(t, p1.ws.WriteMessage(websocket.TextMessage, []byte("not json")))

	var e messages.ErrorPayload
	p1.expect(messages.EventError, &e)
	assert.Equal(t, "Invalid message payload", e.Message)
}

func TestSendToUnknownConnection(t *testing.T) {
	hub := NewHub(events.NewPublisher(), zap.NewNop())

	assert.False(t, hub.Send("nobody", messages.OutboundMessage{Event: messages.EventError}))
}
