package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PrimaryUser is a read-only projection of a user document in the primary
// directory. That system owns and mutates these records; this subsystem only
// reads them. Saas/SaasAmount/CreatedAt are consumed by the batch jobs only.
type PrimaryUser struct {
	ID         primitive.ObjectID  `bson:"_id" json:"id"`
	Role       primitive.ObjectID  `bson:"role" json:"role"`
	ParentID   *primitive.ObjectID `bson:"parentId,omitempty" json:"parent_id,omitempty"`
	Name       string              `bson:"name,omitempty" json:"name,omitempty"`
	UserName   string              `bson:"userName,omitempty" json:"user_name,omitempty"`
	Phone      string              `bson:"phone,omitempty" json:"phone,omitempty"`
	Saas       bool                `bson:"saas,omitempty" json:"saas,omitempty"`
	SaasAmount float64             `bson:"saasAmount,omitempty" json:"saas_amount,omitempty"`
	CreatedAt  time.Time           `bson:"createdAt,omitempty" json:"created_at,omitempty"`
}
