package dispatch

import (
	"errors"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/example/provider-matching/internal/models"
)

var ErrNoSession = errors.New("no ws session")

// WSSession is one connected provider app.
type WSSession struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (s *WSSession) Send(offer models.MatchOffer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteJSON(offer)
}

// WSRegistry tracks live provider sessions keyed by provider id.
type WSRegistry struct {
	mu       sync.RWMutex
	sessions map[string]*WSSession
}

func NewWSRegistry() *WSRegistry { return &WSRegistry{sessions: make(map[string]*WSSession)} }

func (r *WSRegistry) Add(providerID string, conn *websocket.Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if old, ok := r.sessions[providerID]; ok {
		_ = old.conn.Close()
	}
	r.sessions[providerID] = &WSSession{conn: conn}
}

// Remove drops the provider's session. When conn is non-nil the session is
// only dropped if it still wraps that connection, so a stale read pump
// cannot evict a reconnected session.
func (r *WSRegistry) Remove(providerID string, conn *websocket.Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[providerID]; ok && (conn == nil || s.conn == conn) {
		delete(r.sessions, providerID)
	}
}

func (r *WSRegistry) Connected(providerID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.sessions[providerID]
	return ok
}

func (r *WSRegistry) Offer(providerID string, offer models.MatchOffer) error {
	r.mu.RLock()
	s, ok := r.sessions[providerID]
	r.mu.RUnlock()
	if !ok {
		return ErrNoSession
	}
	return s.Send(offer)
}
