package repositories

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/marketdesk/support-chat/internal/config"
	"github.com/marketdesk/support-chat/internal/models"
)

// PrimaryUserRepository reads the external primary directory. It never
// writes.
type PrimaryUserRepository interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.PrimaryUser, error)
	FindSaasAdmins(ctx context.Context, adminRoleID primitive.ObjectID) ([]models.PrimaryUser, error)
}

type MongoPrimaryUserRepository struct {
	users *mongo.Collection
}

func NewPrimaryUserRepository(db *mongo.Database) *MongoPrimaryUserRepository {
	return &MongoPrimaryUserRepository{users: db.Collection("user")}
}

func (r *MongoPrimaryUserRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.PrimaryUser, error) {
	var pu models.PrimaryUser
	err := r.users.FindOne(ctx, bson.M{"_id": id}).Decode(&pu)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &pu, nil
}

func (r *MongoPrimaryUserRepository) FindSaasAdmins(ctx context.Context, adminRoleID primitive.ObjectID) ([]models.PrimaryUser, error) {
	cur, err := r.users.Find(ctx, bson.M{
		"role":      adminRoleID,
		"saas":      true,
		"createdAt": bson.M{"$exists": true},
	})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var admins []models.PrimaryUser
	if err := cur.All(ctx, &admins); err != nil {
		return nil, err
	}
	return admins, nil
}

func DefaultPrimaryUserRepository() PrimaryUserRepository {
	return NewPrimaryUserRepository(config.PrimaryDB)
}
