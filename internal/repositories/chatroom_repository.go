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

type ChatroomRepository interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Chatroom, error)
	FindOpenSupport(ctx context.Context, userID, ownerID primitive.ObjectID) (*models.Chatroom, error)
	FindOpenStaffBot(ctx context.Context, userID primitive.ObjectID) (*models.Chatroom, error)
	Insert(ctx context.Context, room *models.Chatroom) error
	SetStatus(ctx context.Context, id primitive.ObjectID, status string, when time.Time) error
	SetPresence(ctx context.Context, id primitive.ObjectID, field string, active bool, when time.Time) error
	Touch(ctx context.Context, id primitive.ObjectID, when time.Time) error
}

type MongoChatroomRepository struct {
	rooms *mongo.Collection
}

func NewChatroomRepository(db *mongo.Database) *MongoChatroomRepository {
	return &MongoChatroomRepository{rooms: db.Collection("chatroom")}
}

func (r *MongoChatroomRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Chatroom, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *MongoChatroomRepository) FindOpenSupport(ctx context.Context, userID, ownerID primitive.ObjectID) (*models.Chatroom, error) {
	return r.findOne(ctx, bson.M{
		"user_id":   userID,
		"owner_id":  ownerID,
		"room_type": models.RoomTypeSupport,
		"status":    models.StatusOpen,
	})
}

func (r *MongoChatroomRepository) FindOpenStaffBot(ctx context.Context, userID primitive.ObjectID) (*models.Chatroom, error) {
	return r.findOne(ctx, bson.M{
		"user_id":   userID,
		"room_type": models.RoomTypeStaffBot,
		"status":    models.StatusOpen,
	})
}

func (r *MongoChatroomRepository) findOne(ctx context.Context, filter bson.M) (*models.Chatroom, error) {
	var room models.Chatroom
	err := r.rooms.FindOne(ctx, filter).Decode(&room)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &room, nil
}

func (r *MongoChatroomRepository) Insert(ctx context.Context, room *models.Chatroom) error {
	res, err := r.rooms.InsertOne(ctx, room)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicateKey
	}
	if err != nil {
		return err
	}
	room.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *MongoChatroomRepository) SetStatus(ctx context.Context, id primitive.ObjectID, status string, when time.Time) error {
	return r.update(ctx, id, bson.M{"status": status, "updated_time": when})
}

func (r *MongoChatroomRepository) SetPresence(ctx context.Context, id primitive.ObjectID, field string, active bool, when time.Time) error {
	return r.update(ctx, id, bson.M{field: active, "updated_time": when})
}

func (r *MongoChatroomRepository) Touch(ctx context.Context, id primitive.ObjectID, when time.Time) error {
	return r.update(ctx, id, bson.M{"updated_time": when})
}

func (r *MongoChatroomRepository) update(ctx context.Context, id primitive.ObjectID, set bson.M) error {
	res, err := r.rooms.UpdateByID(ctx, id, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func DefaultChatroomRepository() ChatroomRepository { return NewChatroomRepository(config.SupportDB) }
