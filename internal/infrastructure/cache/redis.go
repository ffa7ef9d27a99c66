package cache

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"walletrep/internal/domain"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix  = "walletrep:history"
	defaultTTL = 4 * time.Hour
)

type Config struct {
	Addr string
	TTL  time.Duration
}

// Redis is a payload cache keyed (address, kind) with an explicit TTL.
// Failures are soft: a read error is a miss, a write error is dropped with a
// warning.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedis(cfg Config) (*Redis, error) {
	if strings.TrimSpace(cfg.Addr) == "" {
		return nil, errors.New("redis addr is required")
	}
	if cfg.TTL <= 0 {
		cfg.TTL = defaultTTL
	}
	client := redis.NewClient(&redis.Options{
		Addr: cfg.Addr,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return &Redis{client: client, ttl: cfg.TTL}, nil
}

func (r *Redis) Get(ctx context.Context, address, kind string) ([]byte, bool) {
	payload, err := r.client.Get(ctx, cacheKey(address, kind)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.Warn("cache read error", "kind", kind, "err", err)
		}
		return nil, false
	}
	return payload, true
}

func (r *Redis) Set(ctx context.Context, address, kind string, payload []byte) {
	if err := r.client.Set(ctx, cacheKey(address, kind), payload, r.ttl).Err(); err != nil {
		slog.Warn("cache write error", "kind", kind, "err", err)
	}
}

func (r *Redis) Close() error {
	return r.client.Close()
}

func cacheKey(address, kind string) string {
	return keyPrefix + ":" + kind + ":" + domain.NormalizeAddress(address)
}
