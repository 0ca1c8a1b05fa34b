package api

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/marketdesk/support-chat/internal/api/handlers"
)

// NewServer builds the router and serves on addr. Blocks until the server
// exits.
func NewServer(addr string) error {
	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Authorization"},
	}))

	apiGroup := r.Group("/api")
	{
		apiGroup.POST("/identities/resolve", handlers.ResolveIdentity)
		apiGroup.POST("/bots/resolve", handlers.ResolveBot)

		apiGroup.POST("/chatrooms/support", handlers.OpenSupportRoom)
		apiGroup.POST("/chatrooms/staff-bot", handlers.OpenStaffBotRoom)
		apiGroup.POST("/chatrooms/:id/close", handlers.CloseRoom)

		apiGroup.GET("/chatrooms/:id/messages", handlers.ListMessages)
		apiGroup.POST("/chatrooms/:id/messages", handlers.SendMessage)
	}

	r.GET("/ws/chatrooms/:id", handlers.ChatroomWS)

	return r.Run(addr)
}
