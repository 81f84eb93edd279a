package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/mrmateussiilva/api-sgp/internal/hub"
)

const closeWriteDeadline = 5 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // browser clients connect from a separately hosted frontend
	},
}

// handleOrdersWebSocket upgrades a subscriber connection, verifies its
// credentials, and pumps inbound frames into the hub until the peer goes
// away. Credential rejection happens after the upgrade so the client
// receives a policy-violation close frame rather than an HTTP error.
func (s *Server) handleOrdersWebSocket(c echo.Context) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		slog.Error("websocket upgrade failed", "error", err, "remote", c.RealIP())
		return nil
	}

	identity, err := s.verifier.Verify(extractToken(c))
	if err != nil {
		msg := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "invalid token")
		_ = conn.SetWriteDeadline(s.clock.Now().Add(closeWriteDeadline))
		_ = conn.WriteMessage(websocket.CloseMessage, msg)
		_ = conn.Close()
		slog.Warn("websocket subscriber rejected", "remote", c.RealIP())
		return nil
	}

	client := hub.NewClient(conn, identity.UserID, identity.Username, s.clock)
	s.hub.Subscribe(client)
	slog.Info("websocket subscriber connected",
		"client_id", client.ID,
		"user_id", identity.UserID,
		"username", identity.Username,
	)

	defer func() {
		s.hub.Unsubscribe(client)
		slog.Info("websocket subscriber disconnected",
			"client_id", client.ID,
			"user_id", identity.UserID,
		)
	}()

	for {
		_, frame, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				slog.Debug("websocket read failed", "client_id", client.ID, "error", err)
			}
			return nil
		}
		s.hub.HandleInbound(client, frame)
	}
}
