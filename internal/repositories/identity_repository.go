package repositories

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/marketdesk/support-chat/internal/config"
	"github.com/marketdesk/support-chat/internal/models"
)

type IdentityRepository interface {
	FindByPrimaryUserID(ctx context.Context, primaryID primitive.ObjectID) (*models.SupportIdentity, error)
	Insert(ctx context.Context, su *models.SupportIdentity) error
	RefreshMirror(ctx context.Context, id primitive.ObjectID, name, userName, phone string) error
	Touch(ctx context.Context, id primitive.ObjectID) error
	FindBotByName(ctx context.Context, name string) (*models.Bot, error)
	InsertBot(ctx context.Context, b *models.Bot) error
}

type MongoIdentityRepository struct {
	users *mongo.Collection
	bots  *mongo.Collection
}

func NewIdentityRepository(db *mongo.Database) *MongoIdentityRepository {
	return &MongoIdentityRepository{users: db.Collection("users"), bots: db.Collection("bot")}
}

func (r *MongoIdentityRepository) FindByPrimaryUserID(ctx context.Context, primaryID primitive.ObjectID) (*models.SupportIdentity, error) {
	var su models.SupportIdentity
	err := r.users.FindOne(ctx, bson.M{"user_id": primaryID}).Decode(&su)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &su, nil
}

func (r *MongoIdentityRepository) Insert(ctx context.Context, su *models.SupportIdentity) error {
	res, err := r.users.InsertOne(ctx, su)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicateKey
	}
	if err != nil {
		return err
	}
	su.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *MongoIdentityRepository) RefreshMirror(ctx context.Context, id primitive.ObjectID, name, userName, phone string) error {
	_, err := r.users.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"name":         name,
		"user_name":    userName,
		"phone":        phone,
		"updated_time": time.Now().UTC(),
	}})
	return err
}

func (r *MongoIdentityRepository) Touch(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.users.UpdateByID(ctx, id, bson.M{"$set": bson.M{"updated_time": time.Now().UTC()}})
	return err
}

func (r *MongoIdentityRepository) FindBotByName(ctx context.Context, name string) (*models.Bot, error) {
	var b models.Bot
	err := r.bots.FindOne(ctx, bson.M{"name": name}).Decode(&b)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *MongoIdentityRepository) InsertBot(ctx context.Context, b *models.Bot) error {
	res, err := r.bots.InsertOne(ctx, b)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicateKey
	}
	if err != nil {
		return err
	}
	b.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func DefaultIdentityRepository() IdentityRepository { return NewIdentityRepository(config.SupportDB) }
