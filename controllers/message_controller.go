package controllers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/learnhub/chat_backend/models"
	"github.com/learnhub/chat_backend/store"
	"github.com/learnhub/chat_backend/websocket"
)

// MessageController serves the stateless mirrors of the chat operations for
// clients that do not hold a live connection.
type MessageController struct {
	Store *store.Store
	Hub   *websocket.Hub
}

// NewMessageController wires the REST handlers to the store and the hub.
func NewMessageController(st *store.Store, hub *websocket.Hub) *MessageController {
	return &MessageController{Store: st, Hub: hub}
}

type CreateMessageInput struct {
	ProfessorID int    `json:"idprof" binding:"required" example:"1"`
	StudentID   int    `json:"idalumno" binding:"required" example:"2"`
	Content     string `json:"content" binding:"required" example:"Hola!"`
	SenderID    int    `json:"senderId" example:"1"`
}

type DeleteChatInput struct {
	ProfessorID int `json:"idprof" binding:"required" example:"1"`
	StudentID   int `json:"idalumno" binding:"required" example:"2"`
}

// CreateMessage godoc
// @Summary Create a new message
// @Description Persists a chat message and broadcasts it to the conversation's room
// @Tags messages
// @Accept json
// @Produce json
// @Param message body CreateMessageInput true "Message Creation"
// @Success 201 {object} map[string]interface{} "New message id"
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 500 {object} map[string]string "Server error"
// @Router /api/messages [post]
func (mc *MessageController) CreateMessage(c *gin.Context) {
	var input CreateMessageInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	key := models.ConversationKey{ProfessorID: input.ProfessorID, StudentID: input.StudentID}

	// The sender role is always derived server-side; a client-supplied role
	// would not be trusted. With auth enabled the token, not the body, says
	// who is sending. Without a sender id the row is stored roleless.
	senderID := input.SenderID
	if v, ok := c.Get("userID"); ok {
		authID := v.(int)
		if senderID != 0 && senderID != authID {
			c.JSON(http.StatusForbidden, gin.H{"error": "senderId does not match the authenticated user"})
			return
		}
		senderID = authID
	}

	sender := ""
	if senderID != 0 {
		derived, err := key.DeriveSender(senderID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "senderId does not match either participant"})
			return
		}
		sender = derived

		if role, ok := c.Get("tipoUsuario"); ok && role.(string) != sender {
			c.JSON(http.StatusForbidden, gin.H{"error": "authenticated role does not match the conversation"})
			return
		}
	}

	timestamp := time.Now().UTC()
	id, first, err := mc.Store.Insert(key, input.Content, sender, timestamp)
	if err != nil {
		log.Printf("error saving message for room %s: %v", key.RoomToken(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save message"})
		return
	}

	mc.Hub.BroadcastToRoom(key.RoomToken(), "chat message", websocket.ChatPayload{
		ID:          id,
		ProfessorID: key.ProfessorID,
		StudentID:   key.StudentID,
		Content:     input.Content,
		Timestamp:   timestamp,
		Sender:      sender,
		Room:        key.RoomToken(),
	})

	if first {
		mc.Hub.NotifyNewChat(key)
	}

	c.JSON(http.StatusCreated, gin.H{"id": id})
}

// GetMessages godoc
// @Summary Get all messages of a conversation
// @Description Returns the conversation's messages ordered by timestamp, identified either by room token or by the idprof/idalumno pair
// @Tags messages
// @Produce json
// @Param room query string false "Room token (idprof-idalumno)"
// @Param idprof query int false "Professor ID"
// @Param idalumno query int false "Student ID"
// @Success 200 {array} models.Message "Ordered message list"
// @Failure 400 {object} map[string]string "Missing or malformed conversation pair"
// @Failure 500 {object} map[string]string "Server error"
// @Router /api/messages [get]
func (mc *MessageController) GetMessages(c *gin.Context) {
	key, err := conversationKeyFromQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	messages, err := mc.Store.FetchConversation(key)
	if err != nil {
		log.Printf("error fetching messages for room %s: %v", key.RoomToken(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch messages"})
		return
	}

	c.JSON(http.StatusOK, messages)
}

// GetChats godoc
// @Summary List a user's conversations
// @Description Returns one row per counterpart with the counterpart's name and the latest message
// @Tags chats
// @Produce json
// @Param tipoUsuario query string true "Role (profesor or alumno)"
// @Param userId query int true "User ID"
// @Success 200 {array} store.ChatSummary "Conversation list"
// @Failure 400 {object} map[string]string "Invalid role or user id"
// @Failure 500 {object} map[string]string "Server error"
// @Router /api/chats [get]
func (mc *MessageController) GetChats(c *gin.Context) {
	role := c.Query("tipoUsuario")
	if !models.ValidRole(role) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "tipoUsuario must be profesor or alumno"})
		return
	}

	userID, err := strconv.Atoi(c.Query("userId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	chats, err := mc.Store.FetchConversationList(role, userID)
	if err != nil {
		log.Printf("error fetching chats for %s %d: %v", role, userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch chats"})
		return
	}

	c.JSON(http.StatusOK, chats)
}

// DeleteMessage godoc
// @Summary Delete a message by id
// @Tags messages
// @Produce json
// @Param id path int true "Message ID"
// @Success 200 {object} map[string]string "Message deleted"
// @Failure 400 {object} map[string]string "Invalid id"
// @Failure 404 {object} map[string]string "Message not found"
// @Failure 500 {object} map[string]string "Server error"
// @Router /api/messages/{id} [delete]
func (mc *MessageController) DeleteMessage(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid message ID"})
		return
	}

	if err := mc.Store.DeleteMessage(uint(id)); err != nil {
		if errors.Is(err, store.ErrMessageNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Message not found"})
			return
		}
		log.Printf("error deleting message %d: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete message"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Message deleted successfully"})
}

// DeleteChat godoc
// @Summary Delete a conversation
// @Description Removes every message of the (idprof, idalumno) pair; the pair may come from the query string or a JSON body. Deleting an empty conversation succeeds.
// @Tags chats
// @Accept json
// @Produce json
// @Param idprof query int false "Professor ID"
// @Param idalumno query int false "Student ID"
// @Success 200 {object} map[string]string "Chat deleted"
// @Failure 400 {object} map[string]string "Missing conversation pair"
// @Failure 500 {object} map[string]string "Server error"
// @Router /api/chats [delete]
func (mc *MessageController) DeleteChat(c *gin.Context) {
	var key models.ConversationKey

	if c.Query("idprof") != "" || c.Query("idalumno") != "" {
		parsed, err := conversationKeyFromQuery(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		key = parsed
	} else {
		var input DeleteChatInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "idprof and idalumno are required"})
			return
		}
		key = models.ConversationKey{ProfessorID: input.ProfessorID, StudentID: input.StudentID}
	}

	if err := mc.Store.DeleteConversation(key); err != nil {
		log.Printf("error deleting chat %s: %v", key.RoomToken(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete chat"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Chat deleted successfully"})
}

// conversationKeyFromQuery builds the validated key from either a room token
// or the idprof/idalumno pair, funneling both spellings through the same
// parser.
func conversationKeyFromQuery(c *gin.Context) (models.ConversationKey, error) {
	if room := c.Query("room"); room != "" {
		return models.ParseConversationKey(room)
	}

	idprof := c.Query("idprof")
	idalumno := c.Query("idalumno")
	if idprof == "" || idalumno == "" {
		return models.ConversationKey{}, fmt.Errorf("idprof and idalumno are required")
	}

	return models.ParseConversationKey(idprof + "-" + idalumno)
}
