package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SupportIdentity mirrors a primary-directory user inside the support
// subsystem, or stands alone for a bot. PrimaryUserID is nil exactly when
// IsBot is true; a sparse unique index on user_id keeps one mirror per
// primary user while exempting bots.
type SupportIdentity struct {
	ID            primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	PrimaryUserID *primitive.ObjectID `bson:"user_id,omitempty" json:"primary_user_id,omitempty"`
	Role          *primitive.ObjectID `bson:"role,omitempty" json:"role,omitempty"`
	ParentID      *primitive.ObjectID `bson:"parent_id,omitempty" json:"parent_id,omitempty"`
	IsBot         bool                `bson:"is_bot" json:"is_bot"`
	Name          string              `bson:"name,omitempty" json:"name,omitempty"`
	UserName      string              `bson:"user_name,omitempty" json:"user_name,omitempty"`
	Phone         string              `bson:"phone,omitempty" json:"phone,omitempty"`
	CreatedTime   time.Time           `bson:"created_time" json:"created_time"`
	UpdatedTime   time.Time           `bson:"updated_time" json:"updated_time"`
}
