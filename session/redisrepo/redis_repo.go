package redisrepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	lmserrors "github.com/jrsteele09/go-lms-client/internal/errors"
	"github.com/jrsteele09/go-lms-client/session"
	"github.com/redis/go-redis/v9"
)

var _ session.Repo = (*RedisSessionRepo)(nil)

// RedisSessionRepo stores the session as a JSON string under prefix:key. The
// key never expires on its own; the refresh token's lifetime is enforced by
// the API, not by storage.
type RedisSessionRepo struct {
	rdb redis.UniversalClient
	key string
}

func New(rdb redis.UniversalClient, prefix, key string) *RedisSessionRepo {
	if prefix != "" {
		key = prefix + ":" + key
	}
	return &RedisSessionRepo{rdb: rdb, key: key}
}

func (r *RedisSessionRepo) Load(ctx context.Context) (*session.Session, error) {
	data, err := r.rdb.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, lmserrors.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("[RedisSessionRepo Load] redis get %s: %w", r.key, err)
	}

	var s session.Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("[RedisSessionRepo Load] corrupt session at %s: %w", r.key, err)
	}
	return &s, nil
}

func (r *RedisSessionRepo) Save(ctx context.Context, s session.Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("[RedisSessionRepo Save] failed to encode session: %w", err)
	}
	if err := r.rdb.Set(ctx, r.key, data, 0).Err(); err != nil {
		return fmt.Errorf("[RedisSessionRepo Save] redis set %s: %w", r.key, err)
	}
	return nil
}

func (r *RedisSessionRepo) Delete(ctx context.Context) error {
	if err := r.rdb.Del(ctx, r.key).Err(); err != nil {
		return fmt.Errorf("[RedisSessionRepo Delete] redis del %s: %w", r.key, err)
	}
	return nil
}
