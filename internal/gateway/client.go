package gateway

import (
	"encoding/json"
	"log/slog"

	"github.com/gorilla/websocket"
)

const sendBufferSize = 64

// client is one websocket connection subscribed to a single encounter. Only
// the hub's run loop writes to send; the pumps own the conn.
type client struct {
	hub           *Hub
	conn          *websocket.Conn
	send          chan []byte
	encounterID   string
	participantID string
}

func (c *client) readPump() {
	defer func() {
		c.hub.disconnect(c)
		_ = c.conn.Close()
	}()

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				slog.Warn("websocket read failed",
					"encounter_id", c.encounterID,
					"error", err,
				)
			}
			return
		}

		var msg Message
		if err := json.Unmarshal(raw, &msg); err != nil {
			c.sendError("message is not valid JSON")
			continue
		}

		c.hub.handleInbound(c, msg)
	}
}

func (c *client) writePump() {
	defer func() { _ = c.conn.Close() }()

	for payload := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			return
		}
	}

	// send was closed: the hub let go of this client. Say goodbye properly
	// so the renderer sees a clean close instead of a dead socket.
	_ = c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

// sendError reports a rejected inbound message back to this client only.
func (c *client) sendError(message string) {
	data, err := json.Marshal(errorPayload{Message: message})
	if err != nil {
		return
	}
	c.hub.sendTo(c, c.hub.envelope(MessageError, c.encounterID, "", data))
}
