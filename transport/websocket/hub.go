package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
	"github.com/wricardo/mcp-training/froggergame/game/engine"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512

	// Time allowed for a client action to be handled.
	actionTimeout = 5 * time.Second
)

// Outbound event names
const (
	EventStateUpdate  = "state_update"
	EventActionResult = "action_result"
	EventError        = "error"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins; the game is served behind the same host or a tunnel
		return true
	},
}

// ErrNoActionHandler is returned to clients that send actions to a hub with no handler
var ErrNoActionHandler = errors.New("actions are not accepted on this connection")

// Message represents a WebSocket message
type Message struct {
	SessionID string            `json:"session_id"`
	ClientID  string            `json:"client_id,omitempty"`
	GameState *engine.GameState `json:"game_state,omitempty"`
	Event     string            `json:"event,omitempty"`
	Data      interface{}       `json:"data,omitempty"`
	Error     string            `json:"error,omitempty"`
}

// ClientAction is an inbound request from a browser or other client.
// Action is one of "key", "move" or "reset".
type ClientAction struct {
	Action    string `json:"action"`
	Key       string `json:"key,omitempty"`
	Direction string `json:"direction,omitempty"`
}

// Event is a named game event pushed to every client of a session
type Event struct {
	Name string
	Data interface{}
}

// ActionResult is what an ActionHandler reports back to the hub.
// Events are broadcast after the state update.
type ActionResult struct {
	GameState *engine.GameState
	Data      interface{}
	Events    []Event
}

// ActionHandler applies a client action to a session
type ActionHandler func(ctx context.Context, sessionID string, action ClientAction) (*ActionResult, error)

// Client represents a WebSocket client
type Client struct {
	id        string
	hub       *Hub
	conn      *websocket.Conn
	send      chan []byte
	sessionID string
}

// Hub maintains the set of active clients and broadcasts messages
type Hub struct {
	// Registered clients by session ID
	sessions map[string]map[*Client]bool
	mu       sync.RWMutex

	// Inbound messages from clients
	broadcast chan *Message

	// Register requests from clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	handler ActionHandler
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	return &Hub{
		sessions:   make(map[string]map[*Client]bool),
		broadcast:  make(chan *Message),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// SetActionHandler installs the function that applies inbound client actions
func (h *Hub) SetActionHandler(handler ActionHandler) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handler = handler
}

// Run starts the hub's event loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case message := <-h.broadcast:
			h.broadcastMessage(message)
		}
	}
}

// ServeWS handles WebSocket requests from clients. A non-nil initial state is
// sent to the new client as soon as it is registered.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, sessionID string, initial *engine.GameState) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warnf("WebSocket upgrade failed: %v", err)
		return
	}

	client := &Client{
		id:        uuid.NewString(),
		hub:       h,
		conn:      conn,
		send:      make(chan []byte, engine.WebSocketBufferSize),
		sessionID: sessionID,
	}

	if initial != nil {
		if data, err := json.Marshal(&Message{SessionID: sessionID, GameState: initial, Event: EventStateUpdate}); err == nil {
			client.send <- data
		}
	}

	client.hub.register <- client

	// Start client goroutines
	go client.writePump()
	go client.readPump()
}

// BroadcastToSession sends a game state update to all clients in a session
func (h *Hub) BroadcastToSession(sessionID string, state *engine.GameState) {
	h.broadcastMessage(&Message{
		SessionID: sessionID,
		GameState: state,
		Event:     EventStateUpdate,
	})
}

// BroadcastEvent sends a custom event to all clients in a session
func (h *Hub) BroadcastEvent(sessionID string, event string, data interface{}) {
	message := &Message{
		SessionID: sessionID,
		Event:     event,
		Data:      data,
	}

	h.broadcast <- message
}

// ClientCount returns the number of clients connected to a session
func (h *Hub) ClientCount(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions[sessionID])
}

// registerClient adds a client to a session
func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.sessions[client.sessionID] == nil {
		h.sessions[client.sessionID] = make(map[*Client]bool)
	}
	h.sessions[client.sessionID][client] = true

	log.WithFields(log.Fields{
		"session": client.sessionID,
		"client":  client.id,
		"clients": len(h.sessions[client.sessionID]),
	}).Info("WebSocket client registered")
}

// unregisterClient removes a client from a session
func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeClient(client)
}

// removeClient drops a client and closes its send channel. Callers hold h.mu.
func (h *Hub) removeClient(client *Client) {
	clients, ok := h.sessions[client.sessionID]
	if !ok {
		return
	}
	if _, ok := clients[client]; !ok {
		return
	}

	delete(clients, client)
	close(client.send)

	// Clean up empty sessions
	if len(clients) == 0 {
		delete(h.sessions, client.sessionID)
	}

	log.WithFields(log.Fields{
		"session":   client.sessionID,
		"client":    client.id,
		"remaining": len(clients),
	}).Info("WebSocket client unregistered")
}

// broadcastMessage sends a message to all clients in a session
func (h *Hub) broadcastMessage(message *Message) {
	data, err := json.Marshal(message)
	if err != nil {
		log.Errorf("Failed to marshal broadcast message: %v", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.sessions[message.SessionID] {
		select {
		case client.send <- data:
		default:
			// Client's send channel is full, drop it
			h.removeClient(client)
		}
	}
}

// sendToClient queues a message for a single client, dropping it if the client is gone or slow
func (h *Hub) sendToClient(client *Client, message *Message) {
	data, err := json.Marshal(message)
	if err != nil {
		log.Errorf("Failed to marshal client message: %v", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.sessions[client.sessionID][client] {
		return
	}
	select {
	case client.send <- data:
	default:
		h.removeClient(client)
	}
}

// handleAction applies one inbound action and fans the resulting state out to the session
func (h *Hub) handleAction(client *Client, raw []byte) {
	var action ClientAction
	if err := json.Unmarshal(raw, &action); err != nil {
		h.sendToClient(client, &Message{SessionID: client.sessionID, Event: EventError, Error: "invalid action message"})
		return
	}

	h.mu.RLock()
	handler := h.handler
	h.mu.RUnlock()
	if handler == nil {
		h.sendToClient(client, &Message{SessionID: client.sessionID, Event: EventError, Error: ErrNoActionHandler.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
	defer cancel()

	result, err := handler(ctx, client.sessionID, action)
	if err != nil {
		log.WithFields(log.Fields{
			"session": client.sessionID,
			"client":  client.id,
			"action":  action.Action,
		}).Debugf("WebSocket action rejected: %v", err)
		h.sendToClient(client, &Message{SessionID: client.sessionID, Event: EventError, Error: err.Error()})
		return
	}

	if result.Data != nil {
		h.sendToClient(client, &Message{
			SessionID: client.sessionID,
			ClientID:  client.id,
			Event:     EventActionResult,
			Data:      result.Data,
		})
	}
	if result.GameState != nil {
		h.BroadcastToSession(client.sessionID, result.GameState)
	}
	for _, event := range result.Events {
		h.BroadcastEvent(client.sessionID, event.Name, event.Data)
	}
}

// readPump pumps messages from the WebSocket connection to the hub
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.WithField("client", c.id).Warnf("WebSocket error: %v", err)
			}
			break
		}
		c.hub.handleAction(c, raw)
	}
}

// writePump pumps messages from the hub to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
