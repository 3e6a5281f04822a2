// Package ws pushes document change events to connected clients over
// WebSocket, so other open editors learn about saves, deletions and restores
// without polling.
package ws

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"quill/internal/domain/models"
	"quill/internal/httputil"
)

const maxConnsPerUser = 8

// Hub tracks connections per user and fans document events out to them.
// It implements the service layer's EventPublisher.
type Hub struct {
	mu        sync.RWMutex
	clients   map[string]*client
	userIndex map[string]map[string]bool

	register   chan *client
	unregister chan *client

	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewHub creates a hub. Run must be started on its own goroutine.
func NewHub(checkOrigin func(r *http.Request) bool, logger *slog.Logger) *Hub {
	return &Hub{
		clients:    make(map[string]*client),
		userIndex:  make(map[string]map[string]bool),
		register:   make(chan *client),
		unregister: make(chan *client),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
		logger: logger,
	}
}

// Run processes register/unregister requests until the channel is closed
func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.addClient(c)
		case c := <-h.unregister:
			h.removeClient(c)
		}
	}
}

// HandleConnection upgrades an authenticated HTTP request to a WebSocket
// connection. The auth middleware has already placed the user ID in the
// request context.
func (h *Hub) HandleConnection(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)
	if userID == "" {
		httputil.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the error response
		h.logger.Debug("websocket upgrade failed", "error", err)
		return
	}

	c := &client{
		id:     uuid.New().String(),
		userID: userID,
		conn:   conn,
		hub:    h,
		send:   make(chan []byte, sendBufferSize),
	}

	h.register <- c

	go c.writePump()
	go c.readPump()
}

// PublishDocument broadcasts an event carrying the document's new state to
// all of the owner's connections.
func (h *Hub) PublishDocument(eventType string, doc *models.Document) {
	event, err := NewEvent(eventType, doc)
	if err != nil {
		h.logger.Error("encode document event", "type", eventType, "error", err)
		return
	}
	h.broadcastToUser(doc.OwnerID, event)
}

// PublishDocumentDeleted broadcasts a deletion. Deletions carry no owner, so
// they go to every connection; clients ignore IDs they don't hold.
func (h *Hub) PublishDocumentDeleted(documentID string) {
	event, err := NewEvent("document.deleted", DeletedPayload{DocumentID: documentID})
	if err != nil {
		h.logger.Error("encode deletion event", "error", err)
		return
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		h.trySend(c, payload)
	}
}

func (h *Hub) broadcastToUser(userID string, event *Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for clientID := range h.userIndex[userID] {
		h.trySend(h.clients[clientID], payload)
	}
}

// trySend queues without blocking: a client that can't keep up gets dropped
// rather than stalling the publisher. Caller holds at least the read lock.
func (h *Hub) trySend(c *client, payload []byte) {
	select {
	case c.send <- payload:
	default:
		h.logger.Warn("client send buffer full, dropping connection", "client_id", c.id)
		go func() { h.unregister <- c }()
	}
}

func (h *Hub) addClient(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.userIndex[c.userID] == nil {
		h.userIndex[c.userID] = make(map[string]bool)
	}
	if len(h.userIndex[c.userID]) >= maxConnsPerUser {
		h.logger.Warn("max connections reached", "user_id", c.userID)
		close(c.send)
		return
	}

	h.clients[c.id] = c
	h.userIndex[c.userID][c.id] = true

	h.logger.Debug("client registered", "client_id", c.id, "user_id", c.userID)
}

func (h *Hub) removeClient(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c.id]; !ok {
		return
	}

	delete(h.clients, c.id)
	delete(h.userIndex[c.userID], c.id)
	if len(h.userIndex[c.userID]) == 0 {
		delete(h.userIndex, c.userID)
	}

	close(c.send)
	h.logger.Debug("client unregistered", "client_id", c.id)
}
