package repository

import (
	"crypto/rand"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/tecu23/chess-arena/pkg/chess"
	"github.com/tecu23/chess-arena/pkg/game"
)

const (
	idAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	idLength   = 6
	idAttempts = 16
)

// IDGenerator produces candidate session identifiers
type IDGenerator func() (string, error)

// Option configures the registry
type Option func(*InMemoryRegistry)

// WithIDGenerator replaces the random id source
func WithIDGenerator(gen IDGenerator) Option {
	return func(r *InMemoryRegistry) { r.newID = gen }
}

// WithOnDelete registers a callback run after a session is removed
func WithOnDelete(fn func(id string)) Option {
	return func(r *InMemoryRegistry) { r.onDelete = fn }
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(r *InMemoryRegistry) { r.now = now }
}

// InMemoryRegistry owns every live session and an index of which
// connections belong to which sessions
type InMemoryRegistry struct {
	mu       sync.RWMutex
	sessions map[string]*game.Session
	byConn   map[string]map[string]struct{}
	pending  map[string]*time.Timer

	timeControl chess.TimeControl
	newID       IDGenerator
	now         func() time.Time
	onDelete    func(id string)
	logger      *zap.Logger
}

// NewInMemoryRegistry creates a new in-memory registry
func NewInMemoryRegistry(tc chess.TimeControl, logger *zap.Logger, opts ...Option) *InMemoryRegistry {
	r := &InMemoryRegistry{
		sessions:    make(map[string]*game.Session),
		byConn:      make(map[string]map[string]struct{}),
		pending:     make(map[string]*time.Timer),
		timeControl: tc,
		newID:       randomID,
		now:         time.Now,
		logger:      logger,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Create registers a new pending session owned by creatorID
func (r *InMemoryRegistry) Create(creatorID string) (*game.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := 0; i < idAttempts; i++ {
		id, err := r.newID()
		if err != nil {
			return nil, fmt.Errorf("generate game id: %w", err)
		}

		if _, taken := r.sessions[id]; taken {
			r.logger.Debug("game id collision", zap.String("game_id", id))
			continue
		}

		s := game.NewSession(id, creatorID, r.timeControl, r.now())
		r.sessions[id] = s
		r.track(creatorID, id)

		return s, nil
	}

	return nil, game.ErrSessionsExhausted
}

// Get retrieves a session by ID
func (r *InMemoryRegistry) Get(id string) (*game.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", game.ErrNotFound, id)
	}

	return s, nil
}

// Delete removes a session and its index entries. Deleting an unknown id is a no-op.
func (r *InMemoryRegistry) Delete(id string) {
	r.mu.Lock()
	removed := r.delete(id)
	r.mu.Unlock()

	if removed && r.onDelete != nil {
		r.onDelete(id)
	}
}

func (r *InMemoryRegistry) delete(id string) bool {
	if t, ok := r.pending[id]; ok {
		t.Stop()
		delete(r.pending, id)
	}

	if _, ok := r.sessions[id]; !ok {
		return false
	}
	delete(r.sessions, id)

	for conn, ids := range r.byConn {
		delete(ids, id)
		if len(ids) == 0 {
			delete(r.byConn, conn)
		}
	}

	r.logger.Info("removed game session", zap.String("game_id", id))

	return true
}

// Retain schedules deletion of a finished session after d. Calling it again
// replaces the earlier schedule.
func (r *InMemoryRegistry) Retain(id string, d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[id]; !ok {
		return
	}

	if t, ok := r.pending[id]; ok {
		t.Stop()
	}

	r.pending[id] = time.AfterFunc(d, func() {
		r.Delete(id)
	})
}

// List returns all live sessions ordered by creation time
func (r *InMemoryRegistry) List() []*game.Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*game.Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})

	return out
}

// ListActiveGames returns sessions with a game in progress
func (r *InMemoryRegistry) ListActiveGames() []*game.Session {
	var active []*game.Session
	for _, s := range r.List() {
		s.Lock()
		if s.Active() {
			active = append(active, s)
		}
		s.Unlock()
	}

	return active
}

// Len returns the number of live sessions
func (r *InMemoryRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.sessions)
}

// Track records that connID is a member of session id
func (r *InMemoryRegistry) Track(connID, id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[id]; !ok {
		return
	}
	r.track(connID, id)
}

func (r *InMemoryRegistry) track(connID, id string) {
	ids, ok := r.byConn[connID]
	if !ok {
		ids = make(map[string]struct{})
		r.byConn[connID] = ids
	}
	ids[id] = struct{}{}
}

// Untrack forgets that connID belongs to session id
func (r *InMemoryRegistry) Untrack(connID, id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if ids, ok := r.byConn[connID]; ok {
		delete(ids, id)
		if len(ids) == 0 {
			delete(r.byConn, connID)
		}
	}
}

// SessionsFor returns the live sessions connID is a member of
func (r *InMemoryRegistry) SessionsFor(connID string) []*game.Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := r.byConn[connID]
	out := make([]*game.Session, 0, len(ids))
	for id := range ids {
		if s, ok := r.sessions[id]; ok {
			out = append(out, s)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out
}

// Shutdown cancels pending deletions and drops every session
func (r *InMemoryRegistry) Shutdown() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, t := range r.pending {
		t.Stop()
		delete(r.pending, id)
	}

	r.sessions = make(map[string]*game.Session)
	r.byConn = make(map[string]map[string]struct{})
}

// randomID returns idLength characters from idAlphabet using crypto/rand
func randomID() (string, error) {
	b := make([]byte, idLength)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}

	for i := range b {
		b[i] = idAlphabet[int(b[i])%len(idAlphabet)]
	}

	return string(b), nil
}
