package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "notifyhub:processed:"

// RedisStore keeps the ledger as one key per event ID, claimed with SETNX.
// Retention > 0 lets records expire; choosing an expiry shorter than the
// bus's maximum redelivery horizon reopens the duplicate window, so the
// default is no expiry.
type RedisStore struct {
	client    *redis.Client
	retention time.Duration
	timeout   time.Duration
}

func NewRedisStore(client *redis.Client, retention, timeout time.Duration) *RedisStore {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &RedisStore{client: client, retention: retention, timeout: timeout}
}

func (s *RedisStore) Exists(ctx context.Context, eventID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	n, err := s.client.Exists(ctx, redisKeyPrefix+eventID).Result()
	if err != nil {
		return false, fmt.Errorf("%w: redis exists: %v", ErrUnavailable, err)
	}
	return n > 0, nil
}

// TryReserve claims the event key with SETNX; the stored value is a small
// record so ops can inspect what claimed a key and when.
func (s *RedisStore) TryReserve(ctx context.Context, eventID, eventType string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	val, _ := json.Marshal(Record{
		EventID:     eventID,
		EventType:   eventType,
		ProcessedAt: time.Now().UTC(),
	})
	ok, err := s.client.SetNX(ctx, redisKeyPrefix+eventID, val, s.retention).Result()
	if err != nil {
		return false, fmt.Errorf("%w: redis setnx: %v", ErrUnavailable, err)
	}
	return ok, nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.client.Ping(ctx).Err()
}
