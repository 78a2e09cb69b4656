package main

import (
	"context"
	"fmt"

	"github.com/jrsteele09/go-lms-client/internal/config"
	"github.com/jrsteele09/go-lms-client/session"
	"github.com/jrsteele09/go-lms-client/session/filerepo"
	"github.com/jrsteele09/go-lms-client/session/redisrepo"
	"github.com/jrsteele09/go-lms-client/session/repofake"
	"github.com/redis/go-redis/v9"
)

// openSessions restores the session from the configured backend. The
// returned close func releases the backend's connections.
func openSessions(ctx context.Context, c config.SessionConfig) (*session.Manager, func(), error) {
	var (
		repo    session.Repo
		closeFn = func() {}
	)
	switch c.GetSessionBackend() {
	case config.SessionBackendMemory:
		repo = repofake.NewFakeSessionRepo()
	case config.SessionBackendRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     c.GetRedisAddr(),
			Password: c.GetRedisPassword(),
			DB:       c.GetRedisDB(),
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			rdb.Close()
			return nil, nil, fmt.Errorf("failed to connect to redis at %s: %w", c.GetRedisAddr(), err)
		}
		repo = redisrepo.New(rdb, "lms", c.GetSessionKey())
		closeFn = func() { _ = rdb.Close() }
	default:
		repo = filerepo.New(c.GetSessionFile(), c.GetSessionKey())
	}

	m, err := session.NewManager(ctx, repo)
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	return m, closeFn, nil
}
