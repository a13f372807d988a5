// Package cache keeps computed distribution snapshots in Redis so that the
// presentation screen can reload them without recomputing every tick.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/lyricsplit/lyricsplit-server/internal/distribution"
	"github.com/lyricsplit/lyricsplit-server/internal/domain"
)

const (
	keyPrefix = "lyricsplit:snapshots:"

	// DefaultTTL bounds how long an unused snapshot set stays in Redis.
	DefaultTTL = 24 * time.Hour
)

// Snapshots returns the computed snapshots of a distribution.
type Snapshots interface {
	Snapshots(ctx context.Context, song *domain.Song, dist *domain.Distribution) (*distribution.Result, error)
	Invalidate(ctx context.Context, distributionID string) error
}

// Direct computes snapshots on every call. Used when Redis is not configured.
type Direct struct{}

// Snapshots implements Snapshots without caching.
func (Direct) Snapshots(_ context.Context, song *domain.Song, dist *domain.Distribution) (*distribution.Result, error) {
	result := distribution.Compute(song, dist)
	return &result, nil
}

// Invalidate is a no-op.
func (Direct) Invalidate(context.Context, string) error { return nil }

// SnapshotCache caches distribution.Result values keyed by distribution id
// and a fingerprint of both inputs. Any change to the song or the
// distribution changes the fingerprint, so stale entries are never served;
// they simply expire.
type SnapshotCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewSnapshotCache creates a cache. A non-positive ttl uses DefaultTTL.
func NewSnapshotCache(rdb *redis.Client, ttl time.Duration, logger *slog.Logger) *SnapshotCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &SnapshotCache{rdb: rdb, ttl: ttl, logger: logger}
}

// Fingerprint identifies the exact inputs of a computation.
func Fingerprint(song *domain.Song, dist *domain.Distribution) string {
	h := sha256.New()
	for _, part := range []string{
		song.ID,
		strconv.FormatInt(song.UpdatedAt.UnixNano(), 10),
		dist.ID,
		strconv.FormatInt(dist.UpdatedAt.UnixNano(), 10),
	} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil)[:12])
}

func key(distributionID, fingerprint string) string {
	return keyPrefix + distributionID + ":" + fingerprint
}

// Get returns the cached result, or false on a miss.
func (c *SnapshotCache) Get(ctx context.Context, song *domain.Song, dist *domain.Distribution) (*distribution.Result, bool, error) {
	data, err := c.rdb.Get(ctx, key(dist.ID, Fingerprint(song, dist))).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read snapshots: %w", err)
	}

	var result distribution.Result
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, false, fmt.Errorf("decode snapshots: %w", err)
	}
	return &result, true, nil
}

// Set stores a result under the inputs' fingerprint.
func (c *SnapshotCache) Set(ctx context.Context, song *domain.Song, dist *domain.Distribution, result *distribution.Result) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode snapshots: %w", err)
	}
	if err := c.rdb.Set(ctx, key(dist.ID, Fingerprint(song, dist)), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("write snapshots: %w", err)
	}
	return nil
}

// Snapshots returns the cached result or computes and caches it. Redis
// failures are logged and fall back to computing.
func (c *SnapshotCache) Snapshots(ctx context.Context, song *domain.Song, dist *domain.Distribution) (*distribution.Result, error) {
	result, ok, err := c.Get(ctx, song, dist)
	if err != nil {
		c.logger.Warn("snapshot cache read failed", "distribution_id", dist.ID, "error", err)
	}
	if ok {
		return result, nil
	}

	computed := distribution.Compute(song, dist)
	if err := c.Set(ctx, song, dist, &computed); err != nil {
		c.logger.Warn("snapshot cache write failed", "distribution_id", dist.ID, "error", err)
	}
	return &computed, nil
}

// Invalidate removes every cached result of a distribution.
func (c *SnapshotCache) Invalidate(ctx context.Context, distributionID string) error {
	iter := c.rdb.Scan(ctx, 0, keyPrefix+distributionID+":*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("scan snapshots: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	return c.rdb.Del(ctx, keys...).Err()
}
