// Package counter holds the Redis-backed sequence counter used when
// COUNTER_BACKEND=redis.
package counter

import (
	"context"
	"fmt"
	"time"

	lowimpl "github.com/redis/go-redis/v9"
)

type Options struct {
	Addr     string
	Password string
	DB       int
}

type Redis struct {
	// implementation details, not exported
	internal *lowimpl.Client
}

func NewRedis(opts Options) *Redis {
	return &Redis{internal: lowimpl.NewClient(&lowimpl.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})}
}

func (r *Redis) Ping(ctx context.Context) error {
	return r.internal.Ping(ctx).Err()
}

func (r *Redis) Close() error {
	if r.internal == nil {
		return nil
	}
	return r.internal.Close()
}

func Key(scope string, year int, month time.Month) string {
	return fmt.Sprintf("counter:%s:%04d:%02d", scope, year, int(month))
}

// Next relies on INCR being atomic on the server.
func (r *Redis) Next(ctx context.Context, scope string, year int, month time.Month) (int64, error) {
	v, err := r.internal.Incr(ctx, Key(scope, year, month)).Result()
	if err != nil {
		return 0, fmt.Errorf("redis INCR %s: %w", Key(scope, year, month), err)
	}
	return v, nil
}
