package main

import (
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/learnhub/chat_backend/controllers"
	"github.com/learnhub/chat_backend/database"
	"github.com/learnhub/chat_backend/docs"
	"github.com/learnhub/chat_backend/middleware"
	"github.com/learnhub/chat_backend/store"
	"github.com/learnhub/chat_backend/websocket"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           Learnhub Chat API
// @version         1.0
// @description     API Server for the Learnhub chat relay
// @host            localhost:3001
// @BasePath        /
// @schemes         http
func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Initialize database
	db := database.Connect()
	database.Migrate(db)
	messageStore := store.New(db)

	// Initialize websocket hub
	hub := websocket.NewHub()
	go hub.Run()

	wsHandler := websocket.NewHandler(hub, messageStore)
	messageController := controllers.NewMessageController(messageStore, hub)

	// Set up Swagger info
	port := os.Getenv("PORT")
	if port == "" {
		port = "3001"
	}
	docs.SwaggerInfo.Host = "localhost:" + port

	// Set up router
	router := gin.Default()

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Liveness
	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "Proyecto Learnhub está funcionando!")
	})

	// Chat API
	api := router.Group("/api")
	if secret := os.Getenv("CHAT_JWT_SECRET"); secret != "" {
		api.Use(middleware.JWTAuth(secret))
	}
	{
		api.POST("/messages", messageController.CreateMessage)
		api.GET("/messages", messageController.GetMessages)
		api.DELETE("/messages/:id", messageController.DeleteMessage)
		api.GET("/chats", messageController.GetChats)
		api.DELETE("/chats", messageController.DeleteChat)
	}

	// WebSocket route
	router.GET("/ws", wsHandler.HandleConnection)

	log.Printf("Server running on port %s", port)
	log.Printf("Swagger documentation available at http://localhost:%s/swagger/index.html", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
