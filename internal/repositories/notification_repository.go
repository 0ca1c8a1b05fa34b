package repositories

import (
	"context"
	"strconv"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/marketdesk/support-chat/internal/config"
	"github.com/marketdesk/support-chat/internal/models"
)

// NotificationPrefRepository resolves role names to chat destinations for the
// batch jobs.
type NotificationPrefRepository interface {
	ChatIDsForRole(ctx context.Context, role string) ([]int64, error)
}

type MongoNotificationPrefRepository struct {
	prefs *mongo.Collection
}

func NewNotificationPrefRepository(db *mongo.Database) *MongoNotificationPrefRepository {
	return &MongoNotificationPrefRepository{prefs: db.Collection("notification")}
}

// ChatIDsForRole collects the deduplicated numeric chat ids across all
// preference documents for a role. Unparseable entries are skipped.
func (r *MongoNotificationPrefRepository) ChatIDsForRole(ctx context.Context, role string) ([]int64, error) {
	cur, err := r.prefs.Find(ctx, bson.M{"role": role})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var docs []models.NotificationPref
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}

	seen := make(map[int64]bool)
	var ids []int64
	for _, doc := range docs {
		for _, raw := range doc.ChatIDs {
			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil || seen[id] {
				continue
			}
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func DefaultNotificationPrefRepository() NotificationPrefRepository {
	return NewNotificationPrefRepository(config.SupportDB)
}
