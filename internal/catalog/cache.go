package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/m3rciful/kinobot/core/logger"
	"github.com/m3rciful/kinobot/core/metrics"
)

// Cache is the subset of the Redis client used by CachedStore.
type Cache interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Scan(ctx context.Context, cursor uint64, match string, count int64) *redis.ScanCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// CachedStore reads through Redis for single lookups and whole-catalog
// listings. Cache failures fall back to the wrapped store.
type CachedStore struct {
	Store
	cache  Cache
	ttl    time.Duration
	prefix string
	log    *slog.Logger
}

// NewCachedStore wraps next with a Redis cache.
func NewCachedStore(next Store, cache Cache, ttl time.Duration, prefix string) *CachedStore {
	if prefix == "" {
		prefix = "kinobot"
	}
	return &CachedStore{
		Store:  next,
		cache:  cache,
		ttl:    ttl,
		prefix: prefix,
		log:    logger.Component("service.catalog"),
	}
}

// Films returns films matching f, cached per filter.
func (s *CachedStore) Films(ctx context.Context, f Filter) ([]Film, error) {
	key := s.prefix + ":films:" + f.Type
	if f.Type == "" {
		key = s.prefix + ":films:*"
	}
	return readThrough(ctx, s, key, func() ([]Film, error) { return s.Store.Films(ctx, f) })
}

// Film returns the film with uuid.
func (s *CachedStore) Film(ctx context.Context, uuid string) (Film, error) {
	return readThrough(ctx, s, s.prefix+":film:"+uuid, func() (Film, error) { return s.Store.Film(ctx, uuid) })
}

// Cinemas returns all cinemas.
func (s *CachedStore) Cinemas(ctx context.Context) ([]Cinema, error) {
	return readThrough(ctx, s, s.prefix+":cinemas", func() ([]Cinema, error) { return s.Store.Cinemas(ctx) })
}

// Cinema returns the cinema with uuid.
func (s *CachedStore) Cinema(ctx context.Context, uuid string) (Cinema, error) {
	return readThrough(ctx, s, s.prefix+":cinema:"+uuid, func() (Cinema, error) { return s.Store.Cinema(ctx, uuid) })
}

// Purge drops every cached catalog key. It runs after seeding so a changed
// seed file is visible before the TTL expires.
func (s *CachedStore) Purge(ctx context.Context) (int, error) {
	var (
		cursor  uint64
		removed int
	)
	for {
		keys, next, err := s.cache.Scan(ctx, cursor, s.prefix+":*", 100).Result()
		if err != nil {
			return removed, fmt.Errorf("catalog: scan cache: %w", err)
		}
		if len(keys) > 0 {
			n, err := s.cache.Del(ctx, keys...).Result()
			if err != nil {
				return removed, fmt.Errorf("catalog: purge cache: %w", err)
			}
			removed += int(n)
		}
		if next == 0 {
			break
		}
		cursor = next
	}
	logger.LogEvent(ctx, s.log, slog.LevelInfo, "cache.purged",
		slog.String("prefix", s.prefix),
		slog.Int("keys", removed),
	)
	return removed, nil
}

func readThrough[T any](ctx context.Context, s *CachedStore, key string, load func() (T, error)) (T, error) {
	raw, err := s.cache.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var v T
		if jsonErr := json.Unmarshal(raw, &v); jsonErr == nil {
			metrics.CacheOperations.WithLabelValues("hit").Inc()
			return v, nil
		}
		metrics.CacheOperations.WithLabelValues("error").Inc()
	case errors.Is(err, redis.Nil):
		metrics.CacheOperations.WithLabelValues("miss").Inc()
	default:
		metrics.CacheOperations.WithLabelValues("error").Inc()
		logger.LogEvent(ctx, s.log, slog.LevelWarn, "cache.get_failed",
			slog.String("key", key),
			slog.String("err", err.Error()),
		)
	}

	v, err := load()
	if err != nil {
		return v, err
	}
	if payload, jsonErr := json.Marshal(v); jsonErr == nil {
		if setErr := s.cache.Set(ctx, key, payload, s.ttl).Err(); setErr != nil {
			logger.LogEvent(ctx, s.log, slog.LevelWarn, "cache.set_failed",
				slog.String("key", key),
				slog.String("err", setErr.Error()),
			)
		}
	}
	return v, nil
}
