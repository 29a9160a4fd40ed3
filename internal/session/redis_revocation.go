package session

import (
	"context"
	"time"

	redis "github.com/redis/go-redis/v9"
)

type redisRevocationStore struct {
	client  *redis.Client
	prefix  string
	timeout time.Duration
}

// NewRedisRevocationStore constructs a Redis backed RevocationStore, so that
// logout holds across API replicas and restarts. Keys carry a TTL matching
// the proof's remaining lifetime and expire on their own.
func NewRedisRevocationStore(addr, password string, db int) (RevocationStore, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	return &redisRevocationStore{
		client:  client,
		prefix:  "swifttalk:session:revoked:",
		timeout: 250 * time.Millisecond,
	}, nil
}

func (s *redisRevocationStore) Revoke(ctx context.Context, id string, until time.Time) error {
	ttl := time.Until(until)
	if ttl <= 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.client.Set(ctx, s.prefix+id, "1", ttl).Err()
}

func (s *redisRevocationStore) IsRevoked(ctx context.Context, id string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	n, err := s.client.Exists(ctx, s.prefix+id).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *redisRevocationStore) Close() {
	if s.client != nil {
		_ = s.client.Close()
	}
}
