package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Julius14h/FlyNext/config"
	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	client    *redis.Client
	searchTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, searchTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:    redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		searchTTL: searchTTL,
	}
}

// GetSearch returns a cached AFS search payload, nil on a miss.
func (c *RedisCache) GetSearch(ctx context.Context, key string) (json.RawMessage, error) {
	data, err := c.client.Get(ctx, searchKey(key)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}
	return json.RawMessage(data), nil
}

func (c *RedisCache) SetSearch(ctx context.Context, key string, payload json.RawMessage) error {
	return c.client.Set(ctx, searchKey(key), []byte(payload), c.searchTTL).Err()
}

// AcquireRoomHold places a short-lived hold on one room-night while a
// booking is being written. The conditional decrement in the database is the
// actual invariant; the hold just keeps concurrent checkouts from racing to
// the same night.
func (c *RedisCache) AcquireRoomHold(ctx context.Context, roomTypeID int64, date time.Time, ttl time.Duration) (bool, error) {
	return c.client.SetNX(ctx, roomHoldKey(roomTypeID, date), "held", ttl).Result()
}

func (c *RedisCache) ReleaseRoomHold(ctx context.Context, roomTypeID int64, date time.Time) error {
	return c.client.Del(ctx, roomHoldKey(roomTypeID, date)).Err()
}

func searchKey(key string) string {
	return "cache:afs:" + key
}

func roomHoldKey(roomTypeID int64, date time.Time) string {
	return fmt.Sprintf("hold:room:%d:%s", roomTypeID, date.Format("2006-01-02"))
}
