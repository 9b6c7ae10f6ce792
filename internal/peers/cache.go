package peers

import (
	"context"
	"encoding/json"
	"time"

	platformredis "enrollsvc/internal/platform/redis"
)

// ValidationCacheTTL bounds how long a peer lookup may be reused. Short on
// purpose: a student dropped from the directory should stop enrolling soon.
const ValidationCacheTTL = 5 * time.Minute

// Cache memoizes successful student and course lookups in Redis. A nil *Cache
// is valid and disables caching, matching the optional Redis configuration.
type Cache struct {
	client *platformredis.Client
}

// NewCache wraps the optional Redis client. Returns nil when client is nil so
// callers can pass the result straight through.
func NewCache(client *platformredis.Client) *Cache {
	if client == nil {
		return nil
	}
	return &Cache{client: client}
}

func (c *Cache) GetStudent(ctx context.Context, id string) (StudentRecord, bool) {
	var record StudentRecord
	if c == nil {
		return record, false
	}
	return record, c.get(ctx, "peer:student:"+id, &record)
}

func (c *Cache) SaveStudent(ctx context.Context, id string, record StudentRecord) {
	c.save(ctx, "peer:student:"+id, record)
}

func (c *Cache) GetCourse(ctx context.Context, id string) (CourseRecord, bool) {
	var record CourseRecord
	if c == nil {
		return record, false
	}
	return record, c.get(ctx, "peer:course:"+id, &record)
}

func (c *Cache) SaveCourse(ctx context.Context, id string, record CourseRecord) {
	c.save(ctx, "peer:course:"+id, record)
}

func (c *Cache) get(ctx context.Context, key string, out any) bool {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(raw, out) == nil
}

// save is best effort; a cache write failure never fails the request.
func (c *Cache) save(ctx context.Context, key string, v any) {
	if c == nil {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, key, raw, ValidationCacheTTL).Err()
}
