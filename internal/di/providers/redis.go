package providers

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/samber/do/v2"

	"github.com/lyricsplit/lyricsplit-server/internal/cache"
	"github.com/lyricsplit/lyricsplit-server/internal/config"
	"github.com/lyricsplit/lyricsplit-server/internal/events"
	"github.com/lyricsplit/lyricsplit-server/internal/logger"
)

// RedisHandle wraps the optional Redis client. Client is nil when Redis is
// not configured.
type RedisHandle struct {
	Client *redis.Client
}

// Ping reports whether Redis answers. Only valid when Client is set.
func (h *RedisHandle) Ping(ctx context.Context) error {
	return h.Client.Ping(ctx).Err()
}

// Shutdown implements do.Shutdownable.
func (h *RedisHandle) Shutdown() error {
	if h.Client == nil {
		return nil
	}
	return h.Client.Close()
}

// ProvideRedis connects to Redis when a URL is configured. An unreachable
// server is logged, not fatal: the cache and publisher tolerate outages.
func ProvideRedis(i do.Injector) (*RedisHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if !cfg.Redis.Enabled() {
		log.Info("Redis not configured - snapshot cache and change events disabled")
		return &RedisHandle{}, nil
	}

	opts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Warn("Redis unreachable at startup", "addr", opts.Addr, "error", err)
	} else {
		log.Info("Redis connected", "addr", opts.Addr, "db", opts.DB)
	}

	return &RedisHandle{Client: client}, nil
}

// EmitterHandle wraps the change event emitter with its lifecycle.
type EmitterHandle struct {
	events.Emitter
	publisher *events.Publisher
	cancel    context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *EmitterHandle) Shutdown() error {
	if h.publisher == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := h.publisher.Shutdown(ctx)
	h.cancel()
	return err
}

// ProvideEmitter provides the Redis change event publisher, or a no-op
// emitter when Redis is not configured.
func ProvideEmitter(i do.Injector) (*EmitterHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	redisHandle := do.MustInvoke[*RedisHandle](i)

	if redisHandle.Client == nil {
		return &EmitterHandle{Emitter: events.Noop{}}, nil
	}

	publisher := events.NewPublisher(redisHandle.Client, cfg.Redis.Channel, log.Logger)

	ctx, cancel := context.WithCancel(context.Background())
	go publisher.Start(ctx)

	return &EmitterHandle{
		Emitter:   publisher,
		publisher: publisher,
		cancel:    cancel,
	}, nil
}

// ProvideSnapshotCache provides the Redis snapshot cache, or direct
// computation when Redis is not configured.
func ProvideSnapshotCache(i do.Injector) (cache.Snapshots, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	redisHandle := do.MustInvoke[*RedisHandle](i)

	if redisHandle.Client == nil {
		return cache.Direct{}, nil
	}
	log.Info("Snapshot cache enabled", "ttl", cfg.Redis.SnapshotTTL)
	return cache.NewSnapshotCache(redisHandle.Client, cfg.Redis.SnapshotTTL, log.Logger), nil
}
