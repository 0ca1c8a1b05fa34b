package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Bot is a named non-human sender. Names are globally unique; a bot is
// created once per distinct name and is immutable afterwards except for
// UpdatedTime.
type Bot struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	CreatedTime time.Time          `bson:"created_time" json:"created_time"`
	UpdatedTime time.Time          `bson:"updated_time" json:"updated_time"`
}
