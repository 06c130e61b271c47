package websockets

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"github.com/jaujye/ranbow-restaurant-order-app-sub001/internal/models"
)

type Hub struct {
	clients map[*Client]bool

	register chan *Client

	unregister chan *Client

	broadcast chan []byte

	staffChannels map[string]map[*Client]bool

	mu sync.Mutex
}

func NewHub() *Hub {
	return &Hub{
		broadcast:     make(chan []byte),
		register:      make(chan *Client),
		unregister:    make(chan *Client),
		clients:       make(map[*Client]bool),
		staffChannels: make(map[string]map[*Client]bool),
	}
}

func (h *Hub) registerStaffClient(client *Client, staffID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.staffChannels[staffID]; !ok {
		h.staffChannels[staffID] = make(map[*Client]bool)
	}
	h.staffChannels[staffID][client] = true
}

// SendToStaff delivers a message to every connection a staff member holds.
func (h *Hub) SendToStaff(staffID string, message []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, ok := h.staffChannels[staffID]; ok {
		for client := range clients {
			select {
			case client.send <- message:
			default:
				close(client.send)
				delete(clients, client)
				delete(h.clients, client)
			}
		}
	}
}

// BroadcastMessage delivers a message to all connected clients.
func (h *Hub) BroadcastMessage(message []byte) {
	h.broadcast <- message
}

// PushNotification delivers a persisted notification to its recipient's
// connections. Best-effort: a disconnected recipient just misses the push
// and sees the notification on next poll.
func (h *Hub) PushNotification(staffID uuid.UUID, n *models.Notification) {
	data, err := json.Marshal(n)
	if err != nil {
		return
	}

	msg, err := json.Marshal(Message{Type: TypeNotification, Data: data})
	if err != nil {
		return
	}

	h.SendToStaff(staffID.String(), msg)
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			if client.staffID != "" {
				h.registerStaffClient(client, client.staffID)
			}
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)

				h.mu.Lock()
				for _, clients := range h.staffChannels {
					delete(clients, client)
				}
				h.mu.Unlock()
			}
		case message := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					close(client.send)
					delete(h.clients, client)
				}
			}
		}
	}
}
