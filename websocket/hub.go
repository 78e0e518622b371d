package websocket

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/learnhub/chat_backend/models"
)

// Hub maintains the set of active clients and the per-room broadcast groups.
// It is constructed in main and handed to whoever needs to publish.
type Hub struct {
	// Registered clients
	clients    map[*Client]bool
	clientsMux sync.RWMutex

	// Rooms mapping (room token -> clients)
	rooms    map[string]map[*Client]bool
	roomsMux sync.RWMutex

	// Register requests from the clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client
}

// Event is the envelope every websocket frame carries.
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// NewChatPayload announces a conversation that just received its first
// message.
type NewChatPayload struct {
	ProfessorID int `json:"idprof"`
	StudentID   int `json:"idalumno"`
}

// NewHub creates a new hub instance
func NewHub() *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		rooms:      make(map[string]map[*Client]bool),
	}
}

// Run starts the hub
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clientsMux.Lock()
			h.clients[client] = true
			h.clientsMux.Unlock()
		case client := <-h.unregister:
			h.clientsMux.RLock()
			_, ok := h.clients[client]
			h.clientsMux.RUnlock()
			if !ok {
				continue
			}

			// Room membership is torn down implicitly on disconnect. It must
			// happen before the send channel closes so an in-flight room
			// broadcast never hits a closed channel.
			h.roomsMux.Lock()
			for token, clients := range h.rooms {
				if _, ok := clients[client]; ok {
					delete(h.rooms[token], client)
					if len(h.rooms[token]) == 0 {
						delete(h.rooms, token)
					}
				}
			}
			h.roomsMux.Unlock()

			h.clientsMux.Lock()
			delete(h.clients, client)
			close(client.send)
			h.clientsMux.Unlock()
		}
	}
}

// joinRoom adds a client to a room's broadcast group
func (h *Hub) joinRoom(client *Client, token string) {
	h.roomsMux.Lock()
	defer h.roomsMux.Unlock()

	if _, ok := h.rooms[token]; !ok {
		h.rooms[token] = make(map[*Client]bool)
	}
	h.rooms[token][client] = true
}

// leaveRoom removes a client from a room's broadcast group
func (h *Hub) leaveRoom(client *Client, token string) {
	h.roomsMux.Lock()
	defer h.roomsMux.Unlock()

	if _, ok := h.rooms[token]; ok {
		delete(h.rooms[token], client)
		if len(h.rooms[token]) == 0 {
			delete(h.rooms, token)
		}
	}
}

// broadcastToRoom sends a message to all clients in a room, skipping except
// when it is not nil.
func (h *Hub) broadcastToRoom(token string, message []byte, except *Client) {
	h.roomsMux.RLock()
	defer h.roomsMux.RUnlock()

	if clients, ok := h.rooms[token]; ok {
		for client := range clients {
			if client == except {
				continue
			}
			select {
			case client.send <- message:
			default:
				// Slow client; the frame is dropped, the keepalive pings
				// take care of dead connections
				log.Printf("client %s send buffer full, dropping frame", client.id)
			}
		}
	}
}

// notifyParticipants delivers a message to every connected client that is a
// participant of the conversation, whether or not they have joined its room.
func (h *Hub) notifyParticipants(key models.ConversationKey, message []byte, except *Client) {
	h.clientsMux.RLock()
	defer h.clientsMux.RUnlock()

	for client := range h.clients {
		if client == except {
			continue
		}
		isParticipant := (client.role == models.RoleProfessor && client.userID == key.ProfessorID) ||
			(client.role == models.RoleStudent && client.userID == key.StudentID)
		if !isParticipant {
			continue
		}
		select {
		case client.send <- message:
		default:
		}
	}
}

// BroadcastToRoom sends an event to all clients in a room.
func (h *Hub) BroadcastToRoom(token string, eventType string, payload interface{}) {
	event := Event{
		Type:    eventType,
		Payload: payload,
	}

	eventBytes, err := json.Marshal(event)
	if err != nil {
		log.Printf("error marshaling %s event: %v", eventType, err)
		return
	}

	h.broadcastToRoom(token, eventBytes, nil)
}

// NotifyNewChat announces a brand-new conversation to its connected
// participants.
func (h *Hub) NotifyNewChat(key models.ConversationKey) {
	h.notifyNewChat(key, nil)
}

func (h *Hub) notifyNewChat(key models.ConversationKey, except *Client) {
	event := Event{
		Type: "newChat",
		Payload: NewChatPayload{
			ProfessorID: key.ProfessorID,
			StudentID:   key.StudentID,
		},
	}

	eventBytes, err := json.Marshal(event)
	if err != nil {
		log.Printf("error marshaling newChat event: %v", err)
		return
	}

	h.notifyParticipants(key, eventBytes, except)
}
