// Package matchcache is a read-through cache for computed match results,
// keyed by (student, job, profileVersion, jobVersion) so any profile or job
// edit naturally invalidates the entry. The cache is an optimization only;
// the database never stores match results.
package matchcache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"CampusReady-backend/internal/match"
)

// DefaultTTL bounds staleness for entries whose versions never change
const DefaultTTL = 15 * time.Minute

// Cache wraps a redis client. A nil *Cache is valid and caches nothing.
type Cache struct {
	rdb *redis.Client
	ttl time.Duration
}

// New creates a Cache on the given redis address. Returns nil (cache
// disabled) when addr is empty.
func New(addr, password string) *Cache {
	if addr == "" {
		return nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	return &Cache{rdb: rdb, ttl: DefaultTTL}
}

// NewWithClient wraps an existing redis client; used by tests
func NewWithClient(rdb *redis.Client, ttl time.Duration) *Cache {
	return &Cache{rdb: rdb, ttl: ttl}
}

func key(studentID uuid.UUID, jobID uint, profileVersion, jobVersion int) string {
	return fmt.Sprintf("match:%s:%d:p%d:j%d", studentID, jobID, profileVersion, jobVersion)
}

// Get returns the cached result for the exact version pair, or false on miss.
// Redis failures count as misses; the caller recomputes.
func (c *Cache) Get(ctx context.Context, studentID uuid.UUID, jobID uint, profileVersion, jobVersion int) (match.Result, bool) {
	var res match.Result
	if c == nil {
		return res, false
	}
	val, err := c.rdb.Get(ctx, key(studentID, jobID, profileVersion, jobVersion)).Result()
	if err != nil {
		if err != redis.Nil {
			log.WithError(err).Warn("match cache read failed")
		}
		return res, false
	}
	if err := json.Unmarshal([]byte(val), &res); err != nil {
		return res, false
	}
	return res, true
}

// Set stores the result under the version pair. Write failures are logged
// and ignored.
func (c *Cache) Set(ctx context.Context, studentID uuid.UUID, jobID uint, profileVersion, jobVersion int, res match.Result) {
	if c == nil {
		return
	}
	payload, err := json.Marshal(res)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, key(studentID, jobID, profileVersion, jobVersion), payload, c.ttl).Err(); err != nil {
		log.WithError(err).Warn("match cache write failed")
	}
}
