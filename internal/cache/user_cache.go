package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"suggestboard/internal/model"
)

const userListKey = "users:all"

// UserListCache keeps the allUsers listing in Redis for a short TTL.
// Any mutation of the user table invalidates it.
type UserListCache struct {
	client *redisv9.Client
	ttl    time.Duration
}

func NewUserListCache(client *redisv9.Client, ttl time.Duration) *UserListCache {
	if ttl <= 0 {
		ttl = 60 * time.Second
	}
	return &UserListCache{
		client: client,
		ttl:    ttl,
	}
}

func (c *UserListCache) Get(ctx context.Context) ([]model.User, bool, error) {
	raw, err := c.client.Get(ctx, userListKey).Result()
	if err == redisv9.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get user list failed: %w", err)
	}

	var users []model.User
	if err := json.Unmarshal([]byte(raw), &users); err != nil {
		return nil, false, fmt.Errorf("unmarshal cached user list failed: %w", err)
	}
	return users, true, nil
}

func (c *UserListCache) Set(ctx context.Context, users []model.User) error {
	payload, err := json.Marshal(users)
	if err != nil {
		return fmt.Errorf("marshal user list cache failed: %w", err)
	}
	if err := c.client.Set(ctx, userListKey, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set user list failed: %w", err)
	}
	return nil
}

func (c *UserListCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, userListKey).Err(); err != nil {
		return fmt.Errorf("redis delete user list failed: %w", err)
	}
	return nil
}
