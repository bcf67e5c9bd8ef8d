package memory

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// ActiveSessionCache remembers which session is active per (user, org) so
// repeated GetActiveSession calls skip the database. Entries expire on their
// own; writes happen on create/archive/delete.
type ActiveSessionCache struct {
	cache *cache.Cache
}

func NewActiveSessionCache() *ActiveSessionCache {
	c := cache.New(30*time.Minute, 10*time.Minute)
	return &ActiveSessionCache{
		cache: c,
	}
}

func key(userId, organizationId uuid.UUID) string {
	return fmt.Sprintf("%s:%s", organizationId, userId)
}

func (r *ActiveSessionCache) Save(userId, organizationId, sessionId uuid.UUID) {
	r.cache.Set(key(userId, organizationId), sessionId, cache.DefaultExpiration)
}

func (r *ActiveSessionCache) Get(userId, organizationId uuid.UUID) (uuid.UUID, bool) {
	if x, found := r.cache.Get(key(userId, organizationId)); found {
		return x.(uuid.UUID), true
	}
	return uuid.Nil, false
}

func (r *ActiveSessionCache) Invalidate(userId, organizationId uuid.UUID) {
	r.cache.Delete(key(userId, organizationId))
}
