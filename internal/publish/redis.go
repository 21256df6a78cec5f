// Package publish mirrors appended samples to Redis pub/sub for external
// read-only consumers. The mirror is optional; when no Redis address is
// configured the tracker runs without it. Nothing flows back: the rolling
// buffer stays owned by the running session.
package publish

import (
	"context"
	"fmt"
	"log/slog"

	goredis "github.com/go-redis/redis/v8"

	"nav-tracker/internal/model"
)

// RedisPublisher publishes each sample as JSON on "pub:sample:<SYMBOL>".
type RedisPublisher struct {
	rdb     *goredis.Client
	channel string
}

// NewRedis connects to Redis and verifies the connection with a ping.
func NewRedis(ctx context.Context, addr, password, symbol string) (*RedisPublisher, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis connect %s: %w", addr, err)
	}
	return &RedisPublisher{
		rdb:     rdb,
		channel: fmt.Sprintf("pub:sample:%s", symbol),
	}, nil
}

// Notify publishes the sample. Publish failures are logged and swallowed;
// the mirror must never stall or fail a tick.
func (p *RedisPublisher) Notify(ctx context.Context, s model.Sample) {
	if err := p.rdb.Publish(ctx, p.channel, s.JSON()).Err(); err != nil {
		slog.Warn("redis sample publish failed", "channel", p.channel, "err", err)
	}
}

// Close releases the Redis connection.
func (p *RedisPublisher) Close() error {
	return p.rdb.Close()
}
