package config

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Global database handles, set by InitDB. PrimaryDB is read-only by
// convention: the primary directory is owned by an external system.
var (
	PrimaryDB *mongo.Database
	SupportDB *mongo.Database
)

// InitDB connects both Mongo deployments and bootstraps the support-side
// indexes. The partial unique indexes are what make room and identity
// uniqueness atomic at write time; application code only reacts to the
// duplicate-key errors they raise.
func InitDB(ctx context.Context, s *Settings) error {
	primary, err := connect(ctx, s.PrimaryMongoURI)
	if err != nil {
		return fmt.Errorf("primary store: %w", err)
	}
	support, err := connect(ctx, s.SupportMongoURI)
	if err != nil {
		return fmt.Errorf("support store: %w", err)
	}

	PrimaryDB = primary.Database(s.PrimaryDBName)
	SupportDB = support.Database(s.SupportDBName)

	return ensureIndexes(ctx, SupportDB)
}

func connect(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, err
	}
	return client, nil
}

func ensureIndexes(ctx context.Context, db *mongo.Database) error {
	openFilter := func(roomType string) bson.D {
		return bson.D{
			{Key: "status", Value: "open"},
			{Key: "room_type", Value: roomType},
		}
	}

	_, err := db.Collection("chatroom").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			// one open support room per (user, owner)
			Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "owner_id", Value: 1}},
			Options: options.Index().SetUnique(true).
				SetPartialFilterExpression(openFilter("support")),
		},
		{
			// one open staff_bot room per user
			Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "room_type", Value: 1}},
			Options: options.Index().SetUnique(true).
				SetPartialFilterExpression(openFilter("staff_bot")),
		},
		{
			// listing by owner
			Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "status", Value: 1}, {Key: "updated_time", Value: -1}},
		},
	})
	if err != nil {
		return err
	}

	_, err = db.Collection("users").Indexes().CreateOne(ctx, mongo.IndexModel{
		// one mirror per primary user; bots have no user_id and are exempt
		Keys: bson.D{{Key: "user_id", Value: 1}},
		Options: options.Index().SetUnique(true).
			SetPartialFilterExpression(bson.D{{Key: "user_id", Value: bson.D{{Key: "$type", Value: "objectId"}}}}),
	})
	if err != nil {
		return err
	}

	_, err = db.Collection("bot").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}

	_, err = db.Collection("messages").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "chatroom_id", Value: 1}, {Key: "created_time", Value: 1}},
	})
	if err != nil {
		return err
	}

	_, err = db.Collection("notification").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "role", Value: 1}},
	})
	return err
}
