package broadcaster

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/dnalabs-io/dna-leaderboard-indexer/internal/observability/metrics"
)

// Result reports the per-send outcome of one broadcast.
type Result struct {
	Sent   int
	Failed int
}

// Broadcaster owns the live subscriber set and fans typed delta messages out
// to every connection. Sends are best-effort: one attempt per connection, a
// failed or non-live connection is pruned exactly like a disconnect and never
// blocks delivery to the others.
type Broadcaster struct {
	mu      sync.Mutex
	clients map[string]Conn
}

func New() *Broadcaster {
	return &Broadcaster{
		clients: make(map[string]Conn),
	}
}

// Register adds a connection to the live set.
func (b *Broadcaster) Register(conn Conn) {
	b.mu.Lock()
	b.clients[conn.ID()] = conn
	count := len(b.clients)
	b.mu.Unlock()

	metrics.RecordConnectedSubscribers(count)
	log.Debug().Str("connectionId", conn.ID()).Int("subscribers", count).Msg("Subscriber connected")
}

// Unregister removes a connection from the live set and closes it.
func (b *Broadcaster) Unregister(connID string) {
	b.mu.Lock()
	conn, ok := b.clients[connID]
	if ok {
		delete(b.clients, connID)
	}
	count := len(b.clients)
	b.mu.Unlock()

	if !ok {
		return
	}
	if err := conn.Close(); err != nil {
		log.Debug().Err(err).Str("connectionId", connID).Msg("Error closing subscriber connection")
	}
	metrics.RecordConnectedSubscribers(count)
	log.Debug().Str("connectionId", connID).Int("subscribers", count).Msg("Subscriber disconnected")
}

// Broadcast serializes the message once and pushes it to every live
// connection. Connections that fail the liveness check or the write are
// pruned and counted as failed, not retried.
func (b *Broadcaster) Broadcast(msg Message) Result {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Error().Err(err).Str("messageType", msg.Type.String()).Msg("Failed to marshal broadcast message")
		return Result{}
	}

	var result Result
	for _, conn := range b.snapshot() {
		if err := b.sendTo(conn, data); err != nil {
			result.Failed++
			b.Unregister(conn.ID())
			metrics.RecordFailedBroadcastSend()
			log.Debug().
				Err(err).
				Str("connectionId", conn.ID()).
				Str("messageType", msg.Type.String()).
				Msg("Pruning subscriber after failed send")
			continue
		}
		result.Sent++
	}

	return result
}

// SendTo delivers a message to one subscriber only, e.g. the answer to an
// explicit full-refresh request. A failed send prunes the connection.
func (b *Broadcaster) SendTo(connID string, msg Message) error {
	b.mu.Lock()
	conn, ok := b.clients[connID]
	b.mu.Unlock()
	if !ok {
		return ErrUnknownConnection
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	if err := b.sendTo(conn, data); err != nil {
		b.Unregister(connID)
		metrics.RecordFailedBroadcastSend()
		return err
	}
	return nil
}

func (b *Broadcaster) sendTo(conn Conn, data []byte) error {
	if !conn.IsAlive() {
		return ErrConnectionNotAlive
	}
	return conn.WriteMessage(data)
}

// Len returns the current number of live subscribers.
func (b *Broadcaster) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.clients)
}

// Shutdown closes every live connection.
func (b *Broadcaster) Shutdown() {
	b.mu.Lock()
	clients := make([]Conn, 0, len(b.clients))
	for _, conn := range b.clients {
		clients = append(clients, conn)
	}
	b.clients = make(map[string]Conn)
	b.mu.Unlock()

	for _, conn := range clients {
		_ = conn.Close()
	}
	metrics.RecordConnectedSubscribers(0)
	log.Info().Int("closed", len(clients)).Msg("Broadcaster shut down")
}

// snapshot copies the live set so sends happen outside the lock.
func (b *Broadcaster) snapshot() []Conn {
	b.mu.Lock()
	defer b.mu.Unlock()

	clients := make([]Conn, 0, len(b.clients))
	for _, conn := range b.clients {
		clients = append(clients, conn)
	}
	return clients
}
