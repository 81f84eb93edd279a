package hub

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"

	"github.com/mrmateussiilva/api-sgp/internal/domain"
	"github.com/mrmateussiilva/api-sgp/internal/metrics"
)

// DefaultHeartbeatInterval is how often live subscribers are probed.
const DefaultHeartbeatInterval = 30 * time.Second

// Hub is the connection registry plus broadcaster for order-change events.
//
// A single mutex serializes all registry mutation and the heartbeat-running
// flag; nothing that can block is done while holding it. Broadcasts iterate
// over a snapshot taken under the lock and dispatch through each client's
// buffered writer, so one slow subscriber cannot stall the caller or its
// peers.
type Hub struct {
	clock             clockwork.Clock
	heartbeatInterval time.Duration

	mu               sync.Mutex
	clients          map[*Client]struct{}
	byUser           map[int64]map[*Client]struct{}
	heartbeatRunning bool
}

// New creates a hub. The heartbeat starts lazily with the first subscriber.
func New(clock clockwork.Clock, heartbeatInterval time.Duration) *Hub {
	if heartbeatInterval <= 0 {
		heartbeatInterval = DefaultHeartbeatInterval
	}
	return &Hub{
		clock:             clock,
		heartbeatInterval: heartbeatInterval,
		clients:           make(map[*Client]struct{}),
		byUser:            make(map[int64]map[*Client]struct{}),
	}
}

// Subscribe registers a handle under the global set and the identity index.
// Starting the heartbeat happens inside the same critical section, so two
// near-simultaneous subscribes cannot both start a monitor.
func (h *Hub) Subscribe(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	conns := h.byUser[c.UserID]
	if conns == nil {
		conns = make(map[*Client]struct{})
		h.byUser[c.UserID] = conns
	}
	conns[c] = struct{}{}
	total := len(h.clients)
	startMonitor := !h.heartbeatRunning
	if startMonitor {
		h.heartbeatRunning = true
	}
	h.mu.Unlock()

	metrics.HubConnectedClients.Set(float64(total))
	slog.Info("subscriber registered",
		"client_id", c.ID.String(),
		"user_id", c.UserID,
		"total_clients", total,
	)

	if startMonitor {
		go h.heartbeatLoop()
	}
}

// Unsubscribe removes a handle from both registry structures and stops its
// writer. Idempotent: explicit disconnects and heartbeat reaping both land
// here, possibly for the same handle.
func (h *Hub) Unsubscribe(c *Client) {
	h.mu.Lock()
	_, present := h.clients[c]
	if present {
		h.removeLocked(c)
	}
	total := len(h.clients)
	h.mu.Unlock()

	if !present {
		return
	}

	c.stop()
	metrics.HubConnectedClients.Set(float64(total))
	slog.Info("subscriber unregistered", "client_id", c.ID.String(), "remaining_clients", total)
}

// removeLocked deletes c from both structures. Caller holds h.mu.
func (h *Hub) removeLocked(c *Client) {
	delete(h.clients, c)
	if conns, ok := h.byUser[c.UserID]; ok {
		delete(conns, c)
		if len(conns) == 0 {
			delete(h.byUser, c.UserID)
		}
	}
}

// snapshot copies the current global set for iteration outside the lock.
func (h *Hub) snapshot() []*Client {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		out = append(out, c)
	}
	return out
}

// ClientCount returns the number of live handles.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// UserClientCount returns the number of handles held by one identity.
func (h *Hub) UserClientCount(userID int64) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.byUser[userID])
}

func (h *Hub) heartbeatActive() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.heartbeatRunning
}

// heartbeatLoop probes every handle each interval and reaps the dead.
// Probing happens outside the lock; removal re-checks membership because an
// explicit disconnect may have raced the cycle. Stops itself once the
// registry is empty.
func (h *Hub) heartbeatLoop() {
	ticker := h.clock.NewTicker(h.heartbeatInterval)
	defer ticker.Stop()

	for range ticker.Chan() {
		targets := h.snapshot()

		var dead []*Client
		for _, c := range targets {
			if !c.probe() {
				dead = append(dead, c)
			}
		}

		h.mu.Lock()
		reaped := dead[:0]
		for _, c := range dead {
			if _, ok := h.clients[c]; ok {
				h.removeLocked(c)
				reaped = append(reaped, c)
			}
		}
		empty := len(h.clients) == 0
		if empty {
			h.heartbeatRunning = false
		}
		total := len(h.clients)
		h.mu.Unlock()

		for _, c := range reaped {
			c.stop()
			metrics.HubSubscribersReaped.Inc()
			slog.Warn("unresponsive subscriber reaped",
				"client_id", c.ID.String(),
				"user_id", c.UserID,
			)
		}
		metrics.HubConnectedClients.Set(float64(total))

		if empty {
			slog.Debug("registry empty, heartbeat stopping")
			return
		}
	}
}

// BroadcastAll fans the event out to a snapshot of current handles. A failed
// enqueue is logged and isolated; registry cleanup is left to the heartbeat
// and the connection's own disconnect path, which converge on Unsubscribe.
func (h *Hub) BroadcastAll(event domain.Event) {
	data, err := event.MarshalWire()
	if err != nil {
		slog.Error("failed to marshal broadcast event", "kind", string(event.Kind), "error", err)
		return
	}
	metrics.EventsBroadcastTotal.WithLabelValues(string(event.Kind)).Inc()
	h.broadcastRaw(data, nil)
}

// BroadcastExcept delivers raw payload bytes to every handle except the
// sender. Used by the relay path so a subscriber never hears its own echo.
func (h *Hub) BroadcastExcept(data []byte, sender *Client) {
	h.broadcastRaw(data, sender)
}

func (h *Hub) broadcastRaw(data []byte, except *Client) {
	targets := h.snapshot()
	delivered := 0
	for _, c := range targets {
		if c == except {
			continue
		}
		if c.enqueue(data) {
			delivered++
			continue
		}
		metrics.HubSendFailures.Inc()
		slog.Warn("broadcast delivery failed",
			"client_id", c.ID.String(),
			"user_id", c.UserID,
		)
	}
	slog.Debug("broadcast dispatched", "recipients", len(targets), "delivered", delivered)
}

// Stop closes every connection with a going-away frame and clears the
// registry. The heartbeat loop notices the empty registry and exits.
func (h *Hub) Stop() {
	h.mu.Lock()
	targets := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		targets = append(targets, c)
	}
	h.clients = make(map[*Client]struct{})
	h.byUser = make(map[int64]map[*Client]struct{})
	h.mu.Unlock()

	for _, c := range targets {
		c.stopGraceful(websocket.CloseGoingAway, "server shutting down")
	}
	metrics.HubConnectedClients.Set(0)
	slog.Info("hub stopped", "disconnected_clients", len(targets))
}
