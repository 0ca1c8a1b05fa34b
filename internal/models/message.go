package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Message is an append-only chat entry. MessageBy is a SupportIdentity or Bot
// id; IsBot caches the sender kind. Per-room order is (created_time, _id).
type Message struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ChatroomID  primitive.ObjectID `bson:"chatroom_id" json:"chatroom_id"`
	MessageBy   primitive.ObjectID `bson:"message_by" json:"message_by"`
	Message     string             `bson:"message,omitempty" json:"message,omitempty"`
	IsFile      bool               `bson:"is_file" json:"is_file"`
	Path        string             `bson:"path,omitempty" json:"path,omitempty"`
	IsBot       bool               `bson:"is_bot" json:"is_bot"`
	CreatedTime time.Time          `bson:"created_time" json:"created_time"`
	UpdatedTime time.Time          `bson:"updated_time" json:"updated_time"`
}
