package broadcaster

import (
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Conn is the transport handle the broadcaster fans out to. It is opaque on
// purpose: tests use in-memory connections, production wraps a websocket.
type Conn interface {
	// ID uniquely identifies the connection for its connected lifetime.
	// IDs are never reused across reconnects.
	ID() string
	// IsAlive reports whether the connection is still in an open state.
	IsAlive() bool
	// WriteMessage pushes one serialized frame. Writes for a single
	// connection are ordered.
	WriteMessage(data []byte) error
	// Close tears the connection down. Safe to call more than once.
	Close() error
}

// wsConn adapts a gorilla websocket connection to the Conn interface.
// gorilla allows at most one concurrent writer, so writes are serialized
// with a mutex.
type wsConn struct {
	id      string
	conn    *websocket.Conn
	writeMu sync.Mutex

	aliveMu sync.RWMutex
	alive   bool
}

func NewWebsocketConn(conn *websocket.Conn) Conn {
	return &wsConn{
		id:    uuid.New().String(),
		conn:  conn,
		alive: true,
	}
}

func (c *wsConn) ID() string {
	return c.id
}

func (c *wsConn) IsAlive() bool {
	c.aliveMu.RLock()
	defer c.aliveMu.RUnlock()
	return c.alive
}

func (c *wsConn) WriteMessage(data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	err := c.conn.WriteMessage(websocket.TextMessage, data)
	if err != nil {
		c.markDead()
	}
	return err
}

func (c *wsConn) Close() error {
	c.markDead()
	return c.conn.Close()
}

func (c *wsConn) markDead() {
	c.aliveMu.Lock()
	defer c.aliveMu.Unlock()
	c.alive = false
}
