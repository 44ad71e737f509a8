package presence

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	lastActiveTTL       = 15 * time.Minute
	lastActiveKeyPrefix = "admin:lastactive:"
	redisTimeout        = 2 * time.Second
)

// Store keeps each administrator's last heartbeat in Redis. A Store without a
// client, including a nil *Store, is disabled: writes succeed and reads return nil.
type Store struct {
	client *redis.Client
	now    func() time.Time
}

func NewStore(client *redis.Client) *Store {
	return &Store{client: client, now: time.Now}
}

// Enabled reports whether a Redis client is configured
func (s *Store) Enabled() bool {
	return s != nil && s.client != nil
}

func key(adminID string) string {
	return lastActiveKeyPrefix + adminID
}

// SetLastActive stores the current timestamp for adminID
func (s *Store) SetLastActive(ctx context.Context, adminID string) error {
	if !s.Enabled() {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, redisTimeout)
	defer cancel()

	val := strconv.FormatInt(s.now().UnixMilli(), 10)
	return s.client.Set(ctx, key(adminID), val, lastActiveTTL).Err()
}

// GetLastActive returns the last heartbeat of adminID, or nil when the key
// has expired or Redis is unavailable.
func (s *Store) GetLastActive(ctx context.Context, adminID string) *time.Time {
	if !s.Enabled() {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, redisTimeout)
	defer cancel()

	val, err := s.client.Get(ctx, key(adminID)).Result()
	if err != nil {
		return nil
	}
	ms, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return nil
	}

	t := time.UnixMilli(ms).UTC()
	return &t
}

// Ping checks the Redis connection
func (s *Store) Ping(ctx context.Context) error {
	if !s.Enabled() {
		return nil
	}
	return s.client.Ping(ctx).Err()
}
