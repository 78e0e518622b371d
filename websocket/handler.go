package websocket

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/learnhub/chat_backend/models"
	"github.com/learnhub/chat_backend/store"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins
	},
}

// Handler owns the hub and the store used by socket events.
type Handler struct {
	Hub   *Hub
	Store *store.Store
}

// NewHandler wires the socket event handlers to their collaborators.
func NewHandler(hub *Hub, st *store.Store) *Handler {
	return &Handler{Hub: hub, Store: st}
}

// HandleConnection handles websocket connections
func (h *Handler) HandleConnection(c *gin.Context) {
	userIDStr := c.Query("user_id")
	if userIDStr == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}

	userID, err := strconv.Atoi(userIDStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	role := c.Query("tipoUsuario")
	if !models.ValidRole(role) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "tipoUsuario must be profesor or alumno"})
		return
	}

	// Upgrade HTTP connection to WebSocket
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("error upgrading connection: %v", err)
		return
	}

	client := &Client{
		hub:    h.Hub,
		conn:   conn,
		send:   make(chan []byte, 256),
		id:     uuid.NewString(),
		userID: userID,
		role:   role,
		rooms:  make(map[string]bool),
	}

	client.hub.register <- client
	log.Printf("client %s connected (user %d, %s)", client.id, userID, role)

	go client.readPump(h)
	go client.writePump()
}
