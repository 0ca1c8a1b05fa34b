package handlers

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/marketdesk/support-chat/internal/api/ws"
	"github.com/marketdesk/support-chat/internal/config"
	"github.com/marketdesk/support-chat/internal/repositories"
	"github.com/marketdesk/support-chat/internal/services"
)

// Svcs holds initialized service singletons for handlers to use.
var Svcs struct {
	Identity *services.IdentityService
	Chat     *services.ChatroomService
	Message  *services.MessageService
}

func InitHandlers(settings *config.Settings) {
	identityRepo := repositories.DefaultIdentityRepository()
	primaryRepo := repositories.DefaultPrimaryUserRepository()
	chatRepo := repositories.DefaultChatroomRepository()
	msgRepo := repositories.DefaultMessageRepository()

	Svcs.Identity = services.NewIdentityService(identityRepo, primaryRepo, settings.Roles)
	Svcs.Chat = services.NewChatroomService(chatRepo)
	Svcs.Message = services.NewMessageService(msgRepo, chatRepo)

	// connect/disconnect events drive the room presence flags
	ws.SetPresenceMarker(func(roomID primitive.ObjectID, role string, active bool) {
		_ = Svcs.Chat.SetActive(context.Background(), roomID, services.PresenceRole(role), active)
	})
}
