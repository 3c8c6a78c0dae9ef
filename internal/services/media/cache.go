package media

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	goredis "github.com/redis/go-redis/v9"

	"github.com/Shimizu-Technology/storyboard-api/internal/models"
)

// Cache stores search results keyed by provider, type and query.
type Cache interface {
	Name() string
	Get(ctx context.Context, key string) ([]models.MediaResult, bool, error)
	Set(ctx context.Context, key string, results []models.MediaResult) error
	Ping(ctx context.Context) error
}

// ============================================================================
// In-process cache
// ============================================================================

type memoryCache struct {
	c *gocache.Cache
}

// NewMemoryCache returns a process-local cache with the given TTL.
func NewMemoryCache(ttl time.Duration) Cache {
	return &memoryCache{c: gocache.New(ttl, 2*ttl)}
}

func (m *memoryCache) Name() string { return "memory" }

func (m *memoryCache) Get(_ context.Context, key string) ([]models.MediaResult, bool, error) {
	v, ok := m.c.Get(key)
	if !ok {
		return nil, false, nil
	}
	results, ok := v.([]models.MediaResult)
	return results, ok, nil
}

func (m *memoryCache) Set(_ context.Context, key string, results []models.MediaResult) error {
	m.c.SetDefault(key, results)
	return nil
}

func (m *memoryCache) Ping(context.Context) error { return nil }

// ============================================================================
// Redis cache (shared between replicas)
// ============================================================================

type redisCache struct {
	rdb    *goredis.Client
	ttl    time.Duration
	prefix string
}

// NewRedisCache wraps an existing client. Keys are prefixed with "media:".
func NewRedisCache(rdb *goredis.Client, ttl time.Duration) Cache {
	return &redisCache{rdb: rdb, ttl: ttl, prefix: "media:"}
}

// NewRedisClient connects to addr, which may be host:port or a redis:// URL,
// and pings it once.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*goredis.Client, error) {
	opts := &goredis.Options{
		Addr:        addr,
		Password:    password,
		DB:          db,
		DialTimeout: 5 * time.Second,
	}
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		parsed, err := goredis.ParseURL(addr)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		opts = parsed
	}

	rdb := goredis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

func (r *redisCache) Name() string { return "redis" }

func (r *redisCache) Get(ctx context.Context, key string) ([]models.MediaResult, bool, error) {
	raw, err := r.rdb.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var results []models.MediaResult
	if err := json.Unmarshal(raw, &results); err != nil {
		return nil, false, err
	}
	return results, true, nil
}

func (r *redisCache) Set(ctx context.Context, key string, results []models.MediaResult) error {
	raw, err := json.Marshal(results)
	if err != nil {
		return err
	}
	return r.rdb.Set(ctx, r.prefix+key, raw, r.ttl).Err()
}

func (r *redisCache) Ping(ctx context.Context) error {
	return r.rdb.Ping(ctx).Err()
}
