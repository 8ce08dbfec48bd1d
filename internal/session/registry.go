// Package session tracks per-connection MCP sessions.
//
// The registry is the gateway's own ledger of open sessions, keyed by the
// opaque token the transport hands out at initialize time. It is deliberately
// dumb about tool semantics: it only knows whether a token is currently open,
// and whether an inbound payload is, syntactically, a session-initialization
// call.
package session

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a session.
type Status string

const (
	StatusActive Status = "active"
	StatusClosed Status = "closed"
)

// Session is one connection's stateful binding. A session owns its transport
// binding exclusively; the registry never shares one across sessions.
type Session struct {
	ID        string
	CreatedAt time.Time
	Status    Status
}

// Registry is a concurrency-safe keyed registry of open sessions. Only Create
// and Dispose mutate it; no session's internal state is visible to another.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	logger   *slog.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
		logger:   logger,
	}
}

// Create registers a new active session under the given id, generating an
// unguessable one when id is empty. Creating an id that is already open
// returns the existing session unchanged.
func (r *Registry) Create(id string) *Session {
	if id == "" {
		id = uuid.NewString()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.sessions[id]; ok {
		return existing
	}

	s := &Session{
		ID:        id,
		CreatedAt: time.Now().UTC(),
		Status:    StatusActive,
	}
	r.sessions[id] = s
	r.logger.Debug("session: created", "session_id", id)
	return s
}

// Resolve returns the open session for a token. Unknown and closed tokens
// both resolve to nothing.
func (r *Registry) Resolve(token string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[token]
	if !ok || s.Status != StatusActive {
		return nil, false
	}
	return s, true
}

// Dispose closes and removes a session. Idempotent: disposing an unknown or
// already-closed id is a no-op. Reachable from both transport-close
// notification and explicit teardown.
func (r *Registry) Dispose(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return
	}
	s.Status = StatusClosed
	delete(r.sessions, id)
	r.logger.Debug("session: disposed", "session_id", id)
}

// Len returns the number of currently open sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
