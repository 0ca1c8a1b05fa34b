package repositories

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/marketdesk/support-chat/internal/config"
	"github.com/marketdesk/support-chat/internal/models"
)

type MessageRepository interface {
	Insert(ctx context.Context, m *models.Message) error
	// LastCreatedTime returns the newest created_time in the room, or the
	// zero time when the room has no messages yet.
	LastCreatedTime(ctx context.Context, chatroomID primitive.ObjectID) (time.Time, error)
	List(ctx context.Context, chatroomID primitive.ObjectID, after *primitive.ObjectID, limit int64) ([]models.Message, error)
}

type MongoMessageRepository struct {
	messages *mongo.Collection
}

func NewMessageRepository(db *mongo.Database) *MongoMessageRepository {
	return &MongoMessageRepository{messages: db.Collection("messages")}
}

func (r *MongoMessageRepository) Insert(ctx context.Context, m *models.Message) error {
	res, err := r.messages.InsertOne(ctx, m)
	if err != nil {
		return err
	}
	m.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *MongoMessageRepository) LastCreatedTime(ctx context.Context, chatroomID primitive.ObjectID) (time.Time, error) {
	var last models.Message
	err := r.messages.FindOne(ctx, bson.M{"chatroom_id": chatroomID},
		options.FindOne().SetSort(bson.D{{Key: "created_time", Value: -1}, {Key: "_id", Value: -1}}),
	).Decode(&last)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, err
	}
	return last.CreatedTime, nil
}

// List returns messages ascending by (created_time, _id). When after is set,
// only messages strictly past that message in the same order are returned,
// which makes the sequence restartable from any previously seen id.
func (r *MongoMessageRepository) List(ctx context.Context, chatroomID primitive.ObjectID, after *primitive.ObjectID, limit int64) ([]models.Message, error) {
	filter := bson.M{"chatroom_id": chatroomID}
	if after != nil {
		var cursor models.Message
		err := r.messages.FindOne(ctx, bson.M{"_id": *after, "chatroom_id": chatroomID}).Decode(&cursor)
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		if err != nil {
			return nil, err
		}
		filter["$or"] = bson.A{
			bson.M{"created_time": bson.M{"$gt": cursor.CreatedTime}},
			bson.M{"created_time": cursor.CreatedTime, "_id": bson.M{"$gt": *after}},
		}
	}

	cur, err := r.messages.Find(ctx, filter,
		options.Find().
			SetSort(bson.D{{Key: "created_time", Value: 1}, {Key: "_id", Value: 1}}).
			SetLimit(limit),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var msgs []models.Message
	if err := cur.All(ctx, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

func DefaultMessageRepository() MessageRepository { return NewMessageRepository(config.SupportDB) }
