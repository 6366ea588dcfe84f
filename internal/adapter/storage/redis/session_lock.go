package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// SessionLock implements ports.SessionLock using Redis SET NX.
// One lock per user keeps a buyer from opening a second purchase or
// top-up flow while the first is still in flight.
type SessionLock struct {
	client *goredis.Client
	prefix string
}

// NewSessionLock creates a new Redis-backed session lock.
func NewSessionLock(client *goredis.Client) *SessionLock {
	return &SessionLock{
		client: client,
		prefix: "session:",
	}
}

// Acquire atomically takes the user's lock. Returns false if the user
// already holds it. The TTL bounds how long an abandoned flow can block
// the user.
func (s *SessionLock) Acquire(ctx context.Context, userID int64, ttl time.Duration) (bool, error) {
	key := s.prefix + strconv.FormatInt(userID, 10)
	result, err := s.client.SetArgs(ctx, key, 1, goredis.SetArgs{
		Mode: "NX",
		TTL:  ttl,
	}).Result()
	if err != nil {
		if err == goredis.Nil {
			// Key already exists — flow already open
			return false, nil
		}
		return false, fmt.Errorf("redis session acquire: %w", err)
	}
	return result == "OK", nil
}

// Release frees the user's lock. Releasing an unheld lock is a no-op.
func (s *SessionLock) Release(ctx context.Context, userID int64) error {
	key := s.prefix + strconv.FormatInt(userID, 10)
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis session release: %w", err)
	}
	return nil
}
