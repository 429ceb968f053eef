package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/Sam1808/Fish-shop-bot/models"
)

const redisKeyPrefix = "session:"

// RedisStore keeps session state in Redis, the default production backend.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to Redis and verifies the connection with a PING.
func NewRedisStore(ctx context.Context, addr, password string, db int) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &RedisStore{client: client}, nil
}

func key(chatID int64) string {
	return fmt.Sprintf("%s%d", redisKeyPrefix, chatID)
}

// Get returns the stored state, or ErrNotFound for a fresh chat.
func (s *RedisStore) Get(ctx context.Context, chatID int64) (models.State, error) {
	value, err := s.client.Get(ctx, key(chatID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("redis get: %w", err)
	}
	return models.State(value), nil
}

// Set stores the state with no TTL; sessions live until the key is evicted.
func (s *RedisStore) Set(ctx context.Context, chatID int64, state models.State) error {
	if err := s.client.Set(ctx, key(chatID), string(state), 0).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Ping reports store reachability for the health endpoint.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
