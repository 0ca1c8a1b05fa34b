package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoomTypeSupport  = "support"
	RoomTypeStaffBot = "staff_bot"

	StatusOpen   = "open"
	StatusClosed = "closed"
)

// Chatroom is a conversation context between a client and support staff
// (support room) or between a staff member and the automated agent
// (staff_bot room).
//
// Uniqueness is enforced by partial unique indexes, both applying only while
// status is "open": one on (user_id, owner_id) for support rooms and one on
// (user_id, room_type) for staff_bot rooms. Closing a room frees its key;
// closed rooms are kept forever and never reused.
type Chatroom struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	RoomType string             `bson:"room_type" json:"room_type"`
	UserID   primitive.ObjectID `bson:"user_id" json:"user_id"`

	// Routing hierarchy: required for support rooms, always nil for
	// staff_bot rooms.
	OwnerID      *primitive.ObjectID `bson:"owner_id,omitempty" json:"owner_id,omitempty"`
	SuperAdminID *primitive.ObjectID `bson:"super_admin_id,omitempty" json:"super_admin_id,omitempty"`
	AdminID      *primitive.ObjectID `bson:"admin_id,omitempty" json:"admin_id,omitempty"`

	Status string `bson:"status" json:"status"`
	Title  string `bson:"title,omitempty" json:"title,omitempty"`

	// Presence flags, last-write-wins, informational only.
	IsUserActive       bool `bson:"is_user_active" json:"is_user_active"`
	IsSuperadminActive bool `bson:"is_superadmin_active" json:"is_superadmin_active"`
	IsOwnerActive      bool `bson:"is_owner_active" json:"is_owner_active"`
	IsAdminActive      bool `bson:"is_admin_active" json:"is_admin_active"`

	CreatedTime time.Time `bson:"created_time" json:"created_time"`
	UpdatedTime time.Time `bson:"updated_time" json:"updated_time"`
}
