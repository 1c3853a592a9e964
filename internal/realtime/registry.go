package realtime

import "sync"

// Conn is one live client connection as the registry and hub see it.
// The concrete websocket wrapper lives in conn.go; tests substitute
// fakes.
type Conn interface {
	Send(ev Event) error
	Close() error
}

// Registry maps authenticated user ids to their live connection. A user
// has at most one registered connection: identifying again from a new
// tab replaces the old entry (last writer wins) without closing the old
// socket, mirroring how clients reconnect after a network blip.
type Registry struct {
	mu    sync.RWMutex
	conns map[uint64]Conn
}

// NewRegistry returns an empty presence registry.
func NewRegistry() *Registry {
	return &Registry{conns: make(map[uint64]Conn)}
}

// Identify records c as the live connection for userID, replacing any
// previous one.
func (r *Registry) Identify(userID uint64, c Conn) {
	r.mu.Lock()
	r.conns[userID] = c
	r.mu.Unlock()
}

// Disconnect removes the mapping for userID only if it still points at
// c. The compare prevents a slow disconnect of a stale connection from
// knocking out the replacement that identified in the meantime. Returns
// whether the entry was removed.
func (r *Registry) Disconnect(userID uint64, c Conn) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cur, ok := r.conns[userID]; ok && cur == c {
		delete(r.conns, userID)
		return true
	}
	return false
}

// Get returns the live connection for userID, if any.
func (r *Registry) Get(userID uint64) (Conn, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.conns[userID]
	return c, ok
}

// Online reports whether userID has a registered connection.
func (r *Registry) Online(userID uint64) bool {
	_, ok := r.Get(userID)
	return ok
}
