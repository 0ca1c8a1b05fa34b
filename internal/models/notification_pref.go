package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotificationPref maps a role to the chat destinations the batch jobs
// deliver alerts to. Several documents may exist per role.
type NotificationPref struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Role    string             `bson:"role" json:"role"`
	ChatIDs []string           `bson:"chat_ids" json:"chat_ids"`
}
