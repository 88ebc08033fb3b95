// Package gateway serves the renderer-facing websocket endpoint. A Hub fans
// tokensync notifications out to connected clients, scoped per encounter, and
// feeds renderer position updates back through tokensync.Sync.
package gateway

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/KirkDiggler/encounter-api/internal/entities"
	"github.com/KirkDiggler/encounter-api/internal/errors"
	"github.com/KirkDiggler/encounter-api/internal/tokensync"
)

// Message envelope types.
const (
	// MessageConnected acknowledges a successful subscription.
	MessageConnected = "connected"
	// MessageTokenUpdate carries one token's synced fields.
	MessageTokenUpdate = "token_update"
	// MessageTurnStarted announces whose turn began.
	MessageTurnStarted = "turn_started"
	// MessagePositionUpdate is the inbound renderer position reconcile.
	MessagePositionUpdate = "position_update"
	// MessageError reports a rejected inbound message to its sender.
	MessageError = "error"
)

// Message is the JSON envelope exchanged with renderer clients.
type Message struct {
	Type          string          `json:"type"`
	EncounterID   string          `json:"encounterId,omitempty"`
	ParticipantID string          `json:"participantId,omitempty"`
	Data          json.RawMessage `json:"data,omitempty"`
}

// tokenPayload is the wire form of one token's synced fields.
type tokenPayload struct {
	HP         int32              `json:"hp"`
	MaxHP      int32              `json:"maxHp"`
	TempHP     int32              `json:"tempHp"`
	Conditions []conditionPayload `json:"conditions"`
	Position   string             `json:"position"`
	Defeated   bool               `json:"defeated"`
}

type conditionPayload struct {
	Name        string `json:"name"`
	Rounds      int32  `json:"rounds,omitempty"`
	Description string `json:"description,omitempty"`
}

type positionPayload struct {
	Position entities.PositionZone `json:"position"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// Origin policy belongs to the deployment proxy.
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Config holds the hub's dependencies
type Config struct {
	// Sync receives inbound position reconciles.
	Sync tokensync.Sync
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	if c == nil {
		return errors.InvalidArgument("config is required")
	}

	vb := errors.NewValidationBuilder()

	if c.Sync == nil {
		vb.RequiredField("Sync")
	}

	return vb.Build()
}

type broadcastMessage struct {
	encounterID string
	payload     []byte
}

type directMessage struct {
	client  *client
	payload []byte
}

// Hub owns the client set. Membership changes and every write into a client's
// send channel flow through its run loop, so neither is touched concurrently.
type Hub struct {
	sync tokensync.Sync

	clients    map[*client]bool
	register   chan *client
	unregister chan *client
	broadcast  chan broadcastMessage
	direct     chan directMessage
	done       chan struct{}
}

// NewHub creates a gateway hub with the provided dependencies
func NewHub(cfg *Config) (*Hub, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	return &Hub{
		sync:       cfg.Sync,
		clients:    make(map[*client]bool),
		register:   make(chan *client),
		unregister: make(chan *client),
		broadcast:  make(chan broadcastMessage, 16),
		direct:     make(chan directMessage, 16),
		done:       make(chan struct{}),
	}, nil
}

// Run processes registrations and broadcasts until the context is canceled.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				close(c.send)
				delete(h.clients, c)
			}
			return

		case c := <-h.register:
			h.clients[c] = true
			h.enqueue(c, h.envelope(MessageConnected, c.encounterID, c.participantID, nil))
			slog.Info("renderer client connected",
				"encounter_id", c.encounterID,
				"participant_id", c.participantID,
			)

		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
				slog.Info("renderer client disconnected",
					"encounter_id", c.encounterID,
				)
			}

		case msg := <-h.broadcast:
			for c := range h.clients {
				if c.encounterID != msg.encounterID {
					continue
				}
				h.enqueue(c, msg.payload)
			}

		case msg := <-h.direct:
			if h.clients[msg.client] {
				h.enqueue(msg.client, msg.payload)
			}
		}
	}
}

// enqueue hands a payload to one registered client. A client that cannot keep
// up is dropped rather than allowed to stall the loop. Run-loop only.
func (h *Hub) enqueue(c *client, payload []byte) {
	if payload == nil {
		return
	}
	select {
	case c.send <- payload:
	default:
		delete(h.clients, c)
		close(c.send)
		slog.Warn("renderer client dropped: send buffer full",
			"encounter_id", c.encounterID,
		)
	}
}

// BroadcastTokenUpdate publishes one token's synced fields to the encounter's
// clients. The signature matches tokensync.UpdateListener so the broadcaster
// wires straight in.
func (h *Hub) BroadcastTokenUpdate(encounterID, tokenID string, updates tokensync.Updates) {
	payload := tokenPayload{
		HP:         updates.HP,
		MaxHP:      updates.MaxHP,
		TempHP:     updates.TempHP,
		Conditions: make([]conditionPayload, 0, len(updates.Conditions)),
		Position:   string(updates.Position),
		Defeated:   updates.Defeated,
	}
	for _, cond := range updates.Conditions {
		payload.Conditions = append(payload.Conditions, conditionPayload{
			Name:        string(cond.Name),
			Rounds:      cond.Rounds,
			Description: cond.Description,
		})
	}

	data, err := json.Marshal(payload)
	if err != nil {
		slog.Error("failed to marshal token update", "error", err)
		return
	}

	h.publish(encounterID, h.envelope(MessageTokenUpdate, encounterID, tokenID, data))
}

// BroadcastTurnStarted announces a turn start to the encounter's clients. The
// signature matches tokensync.TurnListener.
func (h *Hub) BroadcastTurnStarted(encounterID, participantID string) {
	h.publish(encounterID, h.envelope(MessageTurnStarted, encounterID, participantID, nil))
}

func (h *Hub) publish(encounterID string, payload []byte) {
	select {
	case h.broadcast <- broadcastMessage{encounterID: encounterID, payload: payload}:
	case <-h.done:
	}
}

func (h *Hub) sendTo(c *client, payload []byte) {
	select {
	case h.direct <- directMessage{client: c, payload: payload}:
	case <-h.done:
	}
}

func (h *Hub) disconnect(c *client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

func (h *Hub) envelope(msgType, encounterID, participantID string, data json.RawMessage) []byte {
	payload, err := json.Marshal(Message{
		Type:          msgType,
		EncounterID:   encounterID,
		ParticipantID: participantID,
		Data:          data,
	})
	if err != nil {
		slog.Error("failed to marshal envelope", "type", msgType, "error", err)
		return nil
	}
	return payload
}

// ServeHTTP upgrades the request and subscribes the connection to the
// encounter named in the encounter_id query parameter.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	encounterID := r.URL.Query().Get("encounter_id")
	if encounterID == "" {
		http.Error(w, "encounter_id query parameter is required", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "error", err)
		return
	}

	c := &client{
		hub:           h,
		conn:          conn,
		send:          make(chan []byte, sendBufferSize),
		encounterID:   encounterID,
		participantID: r.URL.Query().Get("participant_id"),
	}

	select {
	case h.register <- c:
	case <-h.done:
		_ = conn.Close()
		return
	}

	go c.writePump()
	go c.readPump()
}

// handleInbound processes one client message. Rejections go back to the
// sender as error envelopes; they never disturb other clients.
func (h *Hub) handleInbound(c *client, msg Message) {
	switch msg.Type {
	case MessagePositionUpdate:
		if msg.ParticipantID == "" {
			c.sendError("participantId is required for a position update")
			return
		}

		var pos positionPayload
		if err := json.Unmarshal(msg.Data, &pos); err != nil {
			c.sendError("position update data is malformed")
			return
		}

		if err := h.sync.ReconcilePosition(context.Background(), c.encounterID, msg.ParticipantID, pos.Position); err != nil {
			c.sendError(err.Error())
			return
		}

	default:
		c.sendError("unrecognized message type: " + msg.Type)
	}
}
