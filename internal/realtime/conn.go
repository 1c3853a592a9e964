package realtime

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// writeWait bounds how long a single frame write may block before the
// connection is considered dead.
const writeWait = 10 * time.Second

// WSConn wraps a websocket connection with a write lock. gorilla/websocket
// allows at most one concurrent writer, and the hub, the notification
// consumer and the read loop's error replies all write to the same socket.
type WSConn struct {
	mu sync.Mutex
	ws *websocket.Conn
}

// NewWSConn wraps an upgraded websocket connection.
func NewWSConn(ws *websocket.Conn) *WSConn {
	return &WSConn{ws: ws}
}

// Send writes ev as a single JSON text frame.
func (c *WSConn) Send(ev Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	return c.ws.WriteJSON(ev)
}

// ReadEvent blocks until the next client frame arrives.
func (c *WSConn) ReadEvent() (Event, error) {
	var ev Event
	err := c.ws.ReadJSON(&ev)
	return ev, err
}

// Close tears down the underlying socket.
func (c *WSConn) Close() error {
	return c.ws.Close()
}
