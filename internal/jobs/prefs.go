package jobs

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/marketdesk/support-chat/internal/repositories"
)

// superAdminRole is the notification-preference role the jobs deliver to.
const superAdminRole = "superadmin"

func newPrefsCache() *gocache.Cache {
	return gocache.New(10*time.Minute, 30*time.Minute)
}

// chatDestinations returns the (cached) chat ids for a role. A lookup
// failure degrades to no destinations rather than an error.
func chatDestinations(ctx context.Context, prefs repositories.NotificationPrefRepository, cache *gocache.Cache, role string) []int64 {
	if v, ok := cache.Get(role); ok {
		return v.([]int64)
	}
	ids, err := prefs.ChatIDsForRole(ctx, role)
	if err != nil {
		return nil
	}
	cache.Set(role, ids, gocache.DefaultExpiration)
	return ids
}
