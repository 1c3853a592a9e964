package realtime

import (
	"log"
	"sync"
)

// Hub routes events to conversation rooms and to individual users. Room
// membership is tracked per connection so that a dropped socket can be
// evicted from every room it joined in one call.
type Hub struct {
	registry *Registry

	mu     sync.Mutex
	rooms  map[string]map[Conn]struct{}
	joined map[Conn]map[string]struct{}
}

// NewHub returns a Hub backed by the given presence registry.
func NewHub(registry *Registry) *Hub {
	return &Hub{
		registry: registry,
		rooms:    make(map[string]map[Conn]struct{}),
		joined:   make(map[Conn]map[string]struct{}),
	}
}

// Registry exposes the presence registry the hub was built with.
func (h *Hub) Registry() *Registry { return h.registry }

// Join adds c to room.
func (h *Hub) Join(room string, c Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.rooms[room] == nil {
		h.rooms[room] = make(map[Conn]struct{})
	}
	h.rooms[room][c] = struct{}{}
	if h.joined[c] == nil {
		h.joined[c] = make(map[string]struct{})
	}
	h.joined[c][room] = struct{}{}
}

// Evict removes c from every room it joined. Called when the connection
// closes.
func (h *Hub) Evict(c Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for room := range h.joined[c] {
		delete(h.rooms[room], c)
		if len(h.rooms[room]) == 0 {
			delete(h.rooms, room)
		}
	}
	delete(h.joined, c)
}

// Publish sends ev to every member of room and returns how many
// connections received it. Send failures are logged and skipped; the
// failing connection will be evicted by its own read loop.
func (h *Hub) Publish(room string, ev Event) int {
	h.mu.Lock()
	members := make([]Conn, 0, len(h.rooms[room]))
	for c := range h.rooms[room] {
		members = append(members, c)
	}
	h.mu.Unlock()

	sent := 0
	for _, c := range members {
		if err := c.Send(ev); err != nil {
			log.Printf("realtime: send to room %s member failed: %v", room, err)
			continue
		}
		sent++
	}
	return sent
}

// PublishToUser sends ev to userID's live connection, if any. Returns
// whether a connection accepted the event.
func (h *Hub) PublishToUser(userID uint64, ev Event) bool {
	c, ok := h.registry.Get(userID)
	if !ok {
		return false
	}
	if err := c.Send(ev); err != nil {
		log.Printf("realtime: send to user %d failed: %v", userID, err)
		return false
	}
	return true
}
