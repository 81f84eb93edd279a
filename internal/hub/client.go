package hub

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"

	"github.com/mrmateussiilva/api-sgp/internal/metrics"
)

const (
	writeDeadline     = 5 * time.Second
	messageBufferSize = 16
)

// pingMessage is the liveness probe sent on every heartbeat cycle.
// Clients answer with {"type":"pong"} or the literal text "pong".
var pingMessage = []byte(`{"type":"ping"}`)

// Conn is the transport capability the hub requires from a subscriber
// connection. *websocket.Conn satisfies it; tests substitute stubs.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// Client is one live subscriber handle: a single connection plus the identity
// it authenticated as. Owned by exactly one connection's lifetime, never
// shared.
type Client struct {
	ID          uuid.UUID
	UserID      int64
	Username    string
	ConnectedAt time.Time

	conn     Conn
	clock    clockwork.Clock
	sendCh   chan []byte
	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	failed   atomic.Bool
}

// NewClient wraps a connection in a subscriber handle and starts its writer
// goroutine. The handle must be passed to Hub.Subscribe to receive events.
func NewClient(conn Conn, userID int64, username string, clock clockwork.Clock) *Client {
	c := &Client{
		ID:          uuid.New(),
		UserID:      userID,
		Username:    username,
		ConnectedAt: clock.Now(),
		conn:        conn,
		clock:       clock,
		sendCh:      make(chan []byte, messageBufferSize),
		done:        make(chan struct{}),
	}
	c.wg.Add(1)
	go c.run()
	return c
}

// run drains the send channel onto the connection. A write error marks the
// client failed and exits; the heartbeat reaps it on the next cycle.
func (c *Client) run() {
	defer c.wg.Done()
	for {
		select {
		case msg := <-c.sendCh:
			start := c.clock.Now()
			_ = c.conn.SetWriteDeadline(c.clock.Now().Add(writeDeadline))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.failed.Store(true)
				metrics.HubSendFailures.Inc()
				return
			}
			metrics.HubMessageSendDuration.Observe(c.clock.Since(start).Seconds())
		case <-c.done:
			return
		}
	}
}

// enqueue offers a message to the writer without blocking. Returns false if
// the buffer is full or the writer has already failed.
func (c *Client) enqueue(data []byte) bool {
	if c.failed.Load() {
		return false
	}
	select {
	case c.sendCh <- data:
		return true
	default:
		return false
	}
}

// probe is the heartbeat's lightweight liveness check: a failed writer or a
// ping that cannot even be buffered means the subscriber is dead.
func (c *Client) probe() bool {
	return c.enqueue(pingMessage)
}

// stop shuts down the writer and closes the connection. Idempotent.
func (c *Client) stop() {
	c.stopOnce.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
	c.wg.Wait()
}

// stopGraceful sends a close frame with the given reason before closing.
// Used during server shutdown.
func (c *Client) stopGraceful(code int, reason string) {
	c.stopOnce.Do(func() {
		close(c.done)
		c.wg.Wait()
		msg := websocket.FormatCloseMessage(code, reason)
		_ = c.conn.SetWriteDeadline(c.clock.Now().Add(writeDeadline))
		_ = c.conn.WriteMessage(websocket.CloseMessage, msg)
		_ = c.conn.Close()
	})
	c.wg.Wait()
}
