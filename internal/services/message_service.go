package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/marketdesk/support-chat/internal/api/ws"
	"github.com/marketdesk/support-chat/internal/models"
	"github.com/marketdesk/support-chat/internal/repositories"
)

// maxListLimit caps a single page of message history.
const maxListLimit = 500

// MessageService is the append-only message ledger. Appends are
// status-agnostic: closing a room does not lock it against writes, so a
// sender racing a close still succeeds.
type MessageService struct {
	messages repositories.MessageRepository
	rooms    repositories.ChatroomRepository
}

func NewMessageService(m repositories.MessageRepository, r repositories.ChatroomRepository) *MessageService {
	return &MessageService{messages: m, rooms: r}
}

// Append records a message in a room. The server-assigned created_time is
// clamped to be >= the room's newest message so per-room order is monotonic;
// equal timestamps keep insertion order via the document id.
func (s *MessageService) Append(ctx context.Context, chatroomID, senderID primitive.ObjectID, body string, isFile bool, path string, isBot bool) (*models.Message, error) {
	if _, err := s.rooms.FindByID(ctx, chatroomID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	now := time.Now().UTC()
	last, err := s.messages.LastCreatedTime(ctx, chatroomID)
	if err != nil {
		return nil, err
	}
	if now.Before(last) {
		now = last
	}

	msg := &models.Message{
		ChatroomID:  chatroomID,
		MessageBy:   senderID,
		Message:     body,
		IsFile:      isFile,
		Path:        path,
		IsBot:       isBot,
		CreatedTime: now,
		UpdatedTime: now,
	}
	if err := s.messages.Insert(ctx, msg); err != nil {
		return nil, err
	}

	if data, err := json.Marshal(msg); err == nil {
		ws.BroadcastMessage(chatroomID, ws.WsEvent{Type: "message", Data: json.RawMessage(data)})
	}
	return msg, nil
}

// List returns up to limit messages ascending by (created_time, id),
// resumable from the message id given in after. Returns ErrNotFound when the
// cursor does not belong to the room.
func (s *MessageService) List(ctx context.Context, chatroomID primitive.ObjectID, after *primitive.ObjectID, limit int64) ([]models.Message, error) {
	if limit <= 0 || limit > maxListLimit {
		limit = maxListLimit
	}
	msgs, err := s.messages.List(ctx, chatroomID, after, limit)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrNotFound
	}
	return msgs, err
}
