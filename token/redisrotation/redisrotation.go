// Package redisrotation backs the refresh rotation record with Redis, so a
// multi-process deployment still guarantees that a rotated refresh token is
// rejected everywhere. SET NX provides the atomic check-and-mark; the entry
// expires with the token's natural expiry.
package redisrotation

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/tentolabs/tento/token"
)

const keyPrefix = "rotated_jti:"

var _ token.RotationStore = (*Store)(nil)

type Store struct {
	client *redis.Client
}

func New(client *redis.Client) *Store {
	return &Store{client: client}
}

func (s *Store) MarkRotated(ctx context.Context, jti string, exp time.Time) (bool, error) {
	ttl := time.Until(exp)
	if ttl <= 0 {
		// Token already past expiry; keep a short-lived record anyway so a
		// concurrent call still loses the race.
		ttl = time.Minute
	}

	fresh, err := s.client.SetNX(ctx, keyPrefix+jti, "1", ttl).Result()
	if err != nil {
		return false, errors.Wrap(err, "[redisrotation.MarkRotated] SetNX")
	}
	return fresh, nil
}
