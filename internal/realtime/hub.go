// Package realtime broadcasts customer lifecycle events to connected admin
// sessions over WebSocket.
package realtime

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/eshift/customer-core/internal/domain"
)

const writeTimeout = 5 * time.Second

// Event is the wire format pushed to admin subscribers.
type Event struct {
	Type           string    `json:"type"` // "customer_registered" | "customer_deleted"
	CustomerID     int64     `json:"customerId"`
	CustomerNumber string    `json:"customerNumber,omitempty"`
	Email          string    `json:"email,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
}

// Hub fans events out to every registered connection. It implements
// domain.EventPublisher.
type Hub struct {
	mu     sync.RWMutex
	conns  map[*wsConn]struct{}
	logger *slog.Logger
}

// NewHub creates a new event hub
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{conns: make(map[*wsConn]struct{}), logger: logger}
}

// wsConn wraps a websocket connection with a write mutex to serialize writes.
type wsConn struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

// Register adds a connection to the broadcast set and returns a release
// function the handler must call when the connection closes.
func (h *Hub) Register(conn *websocket.Conn) func() {
	c := &wsConn{conn: conn}
	h.mu.Lock()
	h.conns[c] = struct{}{}
	h.mu.Unlock()

	return func() {
		h.mu.Lock()
		delete(h.conns, c)
		h.mu.Unlock()
	}
}

// CustomerRegistered broadcasts a registration event.
func (h *Hub) CustomerRegistered(customer *domain.Customer) {
	h.broadcast(Event{
		Type:           "customer_registered",
		CustomerID:     customer.ID,
		CustomerNumber: customer.CustomerNumber,
		Email:          customer.Email,
		Timestamp:      time.Now(),
	})
}

// CustomerDeleted broadcasts a deletion event.
func (h *Hub) CustomerDeleted(customerID int64) {
	h.broadcast(Event{
		Type:       "customer_deleted",
		CustomerID: customerID,
		Timestamp:  time.Now(),
	})
}

func (h *Hub) broadcast(ev Event) {
	h.mu.RLock()
	conns := make([]*wsConn, 0, len(h.conns))
	for c := range h.conns {
		conns = append(conns, c)
	}
	h.mu.RUnlock()

	for _, c := range conns {
		c.mu.Lock()
		c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		err := c.conn.WriteJSON(ev)
		c.mu.Unlock()
		if err != nil {
			h.logger.Debug("dropping slow event subscriber", slog.String("error", err.Error()))
			h.mu.Lock()
			delete(h.conns, c)
			h.mu.Unlock()
			c.conn.Close()
		}
	}
}
