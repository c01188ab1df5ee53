// Package broadcast pushes attendance and ballot updates to connected
// observers. Delivery is fire-and-forget: a failed or slow client is
// dropped, never retried, and never fails the state change that produced
// the message.
package broadcast

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// Broadcaster is the capability core services depend on.
type Broadcaster interface {
	Broadcast(electionID int64, payload any)
}

// Sender delivers one marshaled message to a single observer connection.
type Sender interface {
	Send(data []byte) error
}

type client struct {
	id         string
	electionID int64
	sender     Sender
	out        chan []byte
}

// Hub fans messages out to registered observer connections, partitioned
// by election.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*client
	logger  *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		clients: make(map[string]*client),
		logger:  logger,
	}
}

// Register attaches a connection and returns its id for Unregister. A
// writer goroutine owns all sends so Broadcast never blocks on I/O.
func (h *Hub) Register(electionID int64, sender Sender) string {
	c := &client{
		id:         uuid.NewString(),
		electionID: electionID,
		sender:     sender,
		out:        make(chan []byte, 32),
	}

	h.mu.Lock()
	h.clients[c.id] = c
	h.mu.Unlock()

	go func() {
		for data := range c.out {
			if err := c.sender.Send(data); err != nil {
				h.logger.Warn("observer send failed, dropping client",
					"event", "broadcast_send_failed",
					"module", "internal/shared/broadcast",
					"layer", "shared",
					"client_id", c.id,
					"election_id", c.electionID,
					"error", err.Error(),
				)
				h.Unregister(c.id)
				return
			}
		}
	}()
	return c.id
}

// Unregister detaches a connection. Safe to call more than once. The
// channel close happens under the write lock so it can never race a
// queued send, which only runs under the read lock.
func (h *Hub) Unregister(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c, ok := h.clients[id]; ok {
		delete(h.clients, id)
		close(c.out)
	}
}

// Broadcast marshals the payload once and queues it for every observer of
// the election. Clients with a full queue are dropped rather than blocked on.
func (h *Hub) Broadcast(electionID int64, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("broadcast payload marshal failed",
			"event", "broadcast_marshal_failed",
			"module", "internal/shared/broadcast",
			"layer", "shared",
			"election_id", electionID,
			"error", err.Error(),
		)
		return
	}

	var dropped []string
	h.mu.RLock()
	for _, c := range h.clients {
		if c.electionID != electionID {
			continue
		}
		select {
		case c.out <- data:
		default:
			dropped = append(dropped, c.id)
		}
	}
	h.mu.RUnlock()

	for _, id := range dropped {
		h.logger.Warn("dropping slow observer",
			"event", "broadcast_drop_slow",
			"module", "internal/shared/broadcast",
			"layer", "shared",
			"client_id", id,
			"election_id", electionID,
		)
		h.Unregister(id)
	}
}

// NopBroadcaster discards every message. Used where no observers exist,
// such as unit tests.
type NopBroadcaster struct{}

func (NopBroadcaster) Broadcast(int64, any) {}
