// Package metrics exposes Prometheus collectors fed by domain events
package metrics

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/tecu23/chess-arena/pkg/events"
)

// Options configures the collectors
type Options struct {
	Registerer prometheus.Registerer
	Namespace  string
}

// Metrics holds the server collectors
type Metrics struct {
	SessionsLive  prometheus.Gauge
	GamesStarted  prometheus.Counter
	GamesFinished *prometheus.CounterVec
	Moves         prometheus.Counter
	Spectators    prometheus.Counter
	Connections   prometheus.Gauge
	Rejected      *prometheus.CounterVec
}

// New constructs the collectors and registers them with the provided registerer
func New(opts Options) (*Metrics, error) {
	namespace := opts.Namespace
	if namespace == "" {
		namespace = "chess_arena"
	}

	reg := opts.Registerer
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{}
	var err error

	if m.SessionsLive, err = register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "sessions_live",
		Help:      "Number of sessions held in memory.",
	})); err != nil {
		return nil, err
	}

	if m.GamesStarted, err = register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "games_started_total",
		Help:      "Games that reached the active state.",
	})); err != nil {
		return nil, err
	}

	if m.GamesFinished, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "games_finished_total",
		Help:      "Finished games partitioned by how they ended.",
	}, []string{"reason"})); err != nil {
		return nil, err
	}

	if m.Moves, err = register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "moves_total",
		Help:      "Accepted moves.",
	})); err != nil {
		return nil, err
	}

	if m.Spectators, err = register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "spectator_joins_total",
		Help:      "Spectators admitted to a room.",
	})); err != nil {
		return nil, err
	}

	if m.Connections, err = register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "connections",
		Help:      "Open websocket connections.",
	})); err != nil {
		return nil, err
	}

	if m.Rejected, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rejected_actions_total",
		Help:      "Client actions answered with an error, partitioned by action and reason.",
	}, []string{"action", "reason"})); err != nil {
		return nil, err
	}

	return m, nil
}

// register adds c to reg, reusing an identical collector that is already registered
func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if !errors.As(err, &already) {
			return c, fmt.Errorf("register collector: %w", err)
		}

		existing, ok := already.ExistingCollector.(T)
		if !ok {
			return c, fmt.Errorf("existing collector has unexpected type %T", already.ExistingCollector)
		}
		return existing, nil
	}

	return c, nil
}

// Attach subscribes the collectors to the publisher
func (m *Metrics) Attach(p *events.Publisher) {
	if m == nil {
		return
	}

	p.Subscribe(events.EventGameCreated, func(events.Event) { m.SessionsLive.Inc() })
	p.Subscribe(events.EventSessionDeleted, func(events.Event) { m.SessionsLive.Dec() })
	p.Subscribe(events.EventGameStarted, func(events.Event) { m.GamesStarted.Inc() })
	p.Subscribe(events.EventMoveAccepted, func(events.Event) { m.Moves.Inc() })
	p.Subscribe(events.EventSpectatorJoined, func(events.Event) { m.Spectators.Inc() })
	p.Subscribe(events.EventConnectionOpened, func(events.Event) { m.Connections.Inc() })
	p.Subscribe(events.EventConnectionClosed, func(events.Event) { m.Connections.Dec() })

	p.Subscribe(events.EventGameOver, func(e events.Event) {
		reason := "unknown"
		if payload, ok := e.Payload.(events.GameOverPayload); ok && payload.Reason != "" {
			reason = payload.Reason
		}
		m.GamesFinished.WithLabelValues(reason).Inc()
	})

	p.Subscribe(events.EventActionRejected, func(e events.Event) {
		payload, _ := e.Payload.(events.RejectedPayload)
		m.Rejected.WithLabelValues(payload.Action, payload.Reason).Inc()
	})
}
