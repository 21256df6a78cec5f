// Package gateway serves the dashboard: the embedded single page, the
// REST endpoints mirroring its data, and the WebSocket stream that pushes
// each new sample to connected browsers.
package gateway

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"nav-tracker/internal/metrics"
	"nav-tracker/internal/model"
	"nav-tracker/internal/tracker"
)

// Hub manages WebSocket clients and fans each new sample out to them.
// It reads tracker state but never mutates the buffer.
type Hub struct {
	Tracker *tracker.Tracker

	mu      sync.RWMutex
	clients map[*Client]bool

	mx *metrics.Metrics // optional
}

// NewHub creates a Hub over the given tracker. mx may be nil.
func NewHub(tr *tracker.Tracker, mx *metrics.Metrics) *Hub {
	return &Hub{
		Tracker: tr,
		clients: make(map[*Client]bool),
		mx:      mx,
	}
}

// Notify implements the scheduler sink: broadcast one new sample to all
// connected clients.
func (h *Hub) Notify(ctx context.Context, s model.Sample) {
	envelope, err := json.Marshal(SampleEnvelope{
		Type:   "sample",
		Sample: s,
		Table:  h.Tracker.RecentRows(tracker.RecentTableSize),
	})
	if err != nil {
		log.Printf("[gateway] envelope marshal error: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients {
		select {
		case client.send <- envelope:
		default:
			// Slow client: drop the message rather than block the loop.
			if h.mx != nil {
				h.mx.BroadcastDrops.Inc()
			}
		}
	}
}

// HandleWSRequest registers an upgraded connection and starts its pumps.
func (h *Hub) HandleWSRequest(conn *websocket.Conn) {
	client := &Client{
		conn: conn,
		send: make(chan []byte, 256),
		hub:  h,
	}

	conn.EnableWriteCompression(true)

	h.mu.Lock()
	h.clients[client] = true
	count := len(h.clients)
	h.mu.Unlock()

	if h.mx != nil {
		h.mx.WSClients.Set(float64(count))
	}
	log.Printf("[gateway] ws client connected (%d total)", count)

	go client.sendInitialState()
	go client.writePump()
	go client.readPump()
}

// RemoveClient removes a client from the hub.
func (h *Hub) RemoveClient(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	count := len(h.clients)
	h.mu.Unlock()

	if h.mx != nil {
		h.mx.WSClients.Set(float64(count))
	}
}

// ClientCount returns the number of connected WS clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// snapshotEnvelope builds the full-state envelope sent on connect.
func (h *Hub) snapshotEnvelope() ([]byte, error) {
	return json.Marshal(SnapshotEnvelope{
		Type:        "snapshot",
		Symbol:      h.Tracker.Symbol(),
		IndexSymbol: h.Tracker.IndexSymbol(),
		Samples:     h.Tracker.Snapshot(),
		Table:       h.Tracker.RecentRows(tracker.RecentTableSize),
		BufferCap:   h.Tracker.BufferCap(),
		TS:          time.Now().UTC(),
	})
}
