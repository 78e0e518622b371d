package websocket

import (
	"encoding/json"
	"log"
	"time"

	"github.com/learnhub/chat_backend/models"
)

// ChatPayload carries one chat message over the wire. The id, sender and
// timestamp fields are assigned by the server before rebroadcasting; any
// values the client supplies for them are ignored.
type ChatPayload struct {
	ID          uint      `json:"id,omitempty"`
	ProfessorID int       `json:"idprof"`
	StudentID   int       `json:"idalumno"`
	Content     string    `json:"content"`
	Timestamp   time.Time `json:"timestamp,omitempty"`
	Sender      string    `json:"sender,omitempty"`
	Room        string    `json:"room"`
	SenderID    int       `json:"senderId,omitempty"`
}

// HandleIncoming dispatches one websocket frame. Failing handlers log and
// drop the frame; no error event goes back to the client and the connection
// stays open.
func (h *Handler) HandleIncoming(client *Client, raw []byte) {
	var event Event
	if err := json.Unmarshal(raw, &event); err != nil {
		log.Printf("client %s: error unmarshaling event: %v", client.id, err)
		return
	}

	switch event.Type {
	case "joinRoom":
		token, ok := event.Payload.(string)
		if !ok {
			log.Printf("client %s: joinRoom payload is not a string", client.id)
			return
		}
		h.handleJoinRoom(client, token)
	case "leaveRoom":
		token, ok := event.Payload.(string)
		if !ok {
			log.Printf("client %s: leaveRoom payload is not a string", client.id)
			return
		}
		key, err := models.ParseConversationKey(token)
		if err != nil {
			log.Printf("client %s: refusing leaveRoom: %v", client.id, err)
			return
		}
		client.leaveRoom(key.RoomToken())
	case "chat message":
		payloadBytes, err := json.Marshal(event.Payload)
		if err != nil {
			log.Printf("client %s: error marshaling chat payload: %v", client.id, err)
			return
		}

		var payload ChatPayload
		if err := json.Unmarshal(payloadBytes, &payload); err != nil {
			log.Printf("client %s: error unmarshaling chat payload: %v", client.id, err)
			return
		}

		h.handleChatMessage(client, payload)
	default:
		log.Printf("client %s: unknown event type %q", client.id, event.Type)
	}
}

// handleJoinRoom adds the client to the room's broadcast group and replays
// the conversation history to the joining client only.
func (h *Handler) handleJoinRoom(client *Client, token string) {
	key, err := models.ParseConversationKey(token)
	if err != nil {
		log.Printf("client %s: refusing joinRoom: %v", client.id, err)
		return
	}

	client.joinRoom(key.RoomToken())

	history, err := h.Store.FetchConversation(key)
	if err != nil {
		log.Printf("client %s: error fetching history for room %s: %v", client.id, key.RoomToken(), err)
		return
	}

	event := Event{
		Type:    "previousMessages",
		Payload: history,
	}

	eventBytes, err := json.Marshal(event)
	if err != nil {
		log.Printf("error marshaling previousMessages: %v", err)
		return
	}

	client.send <- eventBytes
}

// handleChatMessage derives the sender role, stamps and persists the message,
// then rebroadcasts it to the rest of the room. The first message of a
// conversation additionally announces the new chat to its participants.
func (h *Handler) handleChatMessage(client *Client, payload ChatPayload) {
	key := models.ConversationKey{ProfessorID: payload.ProfessorID, StudentID: payload.StudentID}

	if !client.inRoom(key.RoomToken()) {
		log.Printf("client %s attempted to send to room %s without joining", client.id, key.RoomToken())
		return
	}

	sender, err := key.DeriveSender(payload.SenderID)
	if err != nil {
		log.Printf("client %s: dropping message: %v", client.id, err)
		return
	}

	payload.Sender = sender
	payload.Timestamp = time.Now().UTC()
	payload.Room = key.RoomToken()

	id, first, err := h.Store.Insert(key, payload.Content, sender, payload.Timestamp)
	if err != nil {
		// Fire-and-forget: the sender is not told about persistence failures
		log.Printf("client %s: error saving message for room %s: %v", client.id, payload.Room, err)
		return
	}
	payload.ID = id

	event := Event{
		Type:    "chat message",
		Payload: payload,
	}

	eventBytes, err := json.Marshal(event)
	if err != nil {
		log.Printf("error marshaling chat message: %v", err)
		return
	}

	h.Hub.broadcastToRoom(payload.Room, eventBytes, client)

	if first {
		h.Hub.notifyNewChat(key, client)
	}
}
