package websocket

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// unicastBuffer lets publishers hand off a message without waiting for Run.
const unicastBuffer = 64

type UnicastMessage struct {
	UserID  uuid.UUID
	Message []byte
}

// Hub maintains the set of active clients and routes messages to the
// connections of a single user.
type Hub struct {
	// Registered clients.
	clients map[*Client]bool

	// Unicast messages
	unicast chan UnicastMessage

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	// Connection count, readable outside Run.
	mu        sync.RWMutex
	connected int

	upgrader websocket.Upgrader
	logger   *slog.Logger

	// Channel to signal termination
	stop     chan struct{}
	stopOnce sync.Once
}

// NewHub creates a hub. checkOrigin decides which browser origins may
// connect; nil keeps the same-origin default of gorilla/websocket.
func NewHub(checkOrigin func(r *http.Request) bool, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		unicast:    make(chan UnicastMessage, unicastBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),

		clients: make(map[*Client]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
		logger: logger.With("component", "websocket_hub"),
		stop:   make(chan struct{}),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			h.setConnected(len(h.clients))
			h.logger.Debug("client registered", "addr", client.remoteAddr(), "user_id", client.userID)
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				h.drop(client)
				h.logger.Debug("client unregistered", "addr", client.remoteAddr(), "user_id", client.userID)
			}
		case msg := <-h.unicast:
			for client := range h.clients {
				if client.userID != msg.UserID {
					continue
				}
				select {
				case client.send <- msg.Message:
				default:
					h.logger.Warn("dropping slow client", "user_id", client.userID)
					h.drop(client)
				}
			}
		case <-h.stop:
			h.logger.Info("stopping hub", "clients", len(h.clients))
			for client := range h.clients {
				h.drop(client)
			}
			return
		}
	}
}

// SendToUser queues message for every connection of userID. It never blocks
// for long: when the queue is full or the hub stopped the message is dropped.
func (h *Hub) SendToUser(userID uuid.UUID, message []byte) bool {
	select {
	case h.unicast <- UnicastMessage{UserID: userID, Message: message}:
		return true
	case <-h.stop:
		return false
	default:
		h.logger.Warn("unicast queue full, dropping message", "user_id", userID)
		return false
	}
}

// Connected returns the number of open connections.
func (h *Hub) Connected() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.connected
}

func (h *Hub) Stop() {
	h.stopOnce.Do(func() {
		close(h.stop)
	})
}

func (h *Hub) drop(client *Client) {
	delete(h.clients, client)
	close(client.send)
	h.setConnected(len(h.clients))
}

func (h *Hub) setConnected(n int) {
	h.mu.Lock()
	h.connected = n
	h.mu.Unlock()
}
