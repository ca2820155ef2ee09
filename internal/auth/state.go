package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/tradingzen/backend/internal/utils"
)

var ErrInvalidState = errors.New("invalid or expired oauth state")

// StateStore issues single-use OAuth state values.
type StateStore interface {
	Issue(ctx context.Context) (string, error)
	Consume(ctx context.Context, state string) error
}

// RedisStateStore keeps issued states in Redis with a TTL so any API
// instance can finish a flow another one started.
type RedisStateStore struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

var _ StateStore = (*RedisStateStore)(nil)

func NewRedisStateStore(client *redis.Client, ttl time.Duration) *RedisStateStore {
	return &RedisStateStore{
		client: client,
		ttl:    ttl,
		prefix: "oauth_state:",
	}
}

func (s *RedisStateStore) Issue(ctx context.Context) (string, error) {
	state, err := utils.RandomToken(16)
	if err != nil {
		return "", err
	}
	if err := s.client.Set(ctx, s.prefix+state, "1", s.ttl).Err(); err != nil {
		return "", fmt.Errorf("store oauth state: %w", err)
	}
	return state, nil
}

// Consume deletes the state atomically; a replayed or unknown state fails.
func (s *RedisStateStore) Consume(ctx context.Context, state string) error {
	if state == "" {
		return ErrInvalidState
	}
	_, err := s.client.GetDel(ctx, s.prefix+state).Result()
	if errors.Is(err, redis.Nil) {
		return ErrInvalidState
	}
	if err != nil {
		return fmt.Errorf("consume oauth state: %w", err)
	}
	return nil
}
