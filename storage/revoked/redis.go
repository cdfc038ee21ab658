package revoked

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-portal/core"
)

const keyPrefix = "revoked-session:"

// RedisStore keeps revoked session ids in redis, expiring with the session cookie.
type RedisStore struct {
	client *redis.Client
}

var _ core.RevocationStore = (*RedisStore)(nil)

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// OpenRedis connects to the redis server of conf and checks it is reachable.
func OpenRedis(ctx context.Context, conf core.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     conf.Addr,
		Password: conf.Password,
		DB:       conf.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(err, "connecting to redis")
	}
	return client, nil
}

func (s *RedisStore) Revoke(ctx context.Context, sessionID string, ttl time.Duration) error {
	if err := s.client.Set(ctx, keyPrefix+sessionID, 1, ttl).Err(); err != nil {
		return errors.Wrap(err, "revoking session")
	}
	return nil
}

func (s *RedisStore) IsRevoked(ctx context.Context, sessionID string) (bool, error) {
	err := s.client.Get(ctx, keyPrefix+sessionID).Err()
	switch {
	case err == redis.Nil:
		return false, nil
	case err != nil:
		return false, errors.Wrap(err, "checking session")
	}
	return true, nil
}
