package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/upao-inso/restaurant-pos/internal/cart"
)

const keyNamespace = "pos:catalog:"

// RedisClient is the part of *redis.Client the cache uses.
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, ttl time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Scan(ctx context.Context, cursor uint64, match string, count int64) *redis.ScanCmd
}

// Cached is a read-through Redis cache in front of another Catalog. Redis
// failures are logged and the request falls through to the source.
type Cached struct {
	src Catalog
	rdb RedisClient
	ttl time.Duration
	log *zap.Logger
}

func NewCached(src Catalog, rdb RedisClient, ttl time.Duration, log *zap.Logger) *Cached {
	if log == nil {
		log = zap.NewNop()
	}
	return &Cached{src: src, rdb: rdb, ttl: ttl, log: log.Named("catalog")}
}

func productKey(id uuid.UUID) string { return keyNamespace + "product:" + id.String() }

func listKey() string { return keyNamespace + "products" }

func (c *Cached) GetProduct(ctx context.Context, id uuid.UUID) (cart.Product, error) {
	var p cart.Product
	if c.load(ctx, productKey(id), &p) {
		return p, nil
	}
	p, err := c.src.GetProduct(ctx, id)
	if err != nil {
		return cart.Product{}, err
	}
	c.store(ctx, productKey(id), p)
	return p, nil
}

func (c *Cached) ListProducts(ctx context.Context) ([]cart.Product, error) {
	var ps []cart.Product
	if c.load(ctx, listKey(), &ps) {
		return ps, nil
	}
	ps, err := c.src.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	c.store(ctx, listKey(), ps)
	return ps, nil
}

// Invalidate drops every cached catalog entry.
func (c *Cached) Invalidate(ctx context.Context) error {
	keys := []string{listKey()}
	iter := c.rdb.Scan(ctx, 0, keyNamespace+"product:*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	return c.rdb.Del(ctx, keys...).Err()
}

func (c *Cached) load(ctx context.Context, key string, dst any) bool {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn("catalog cache read failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		c.log.Warn("discarding corrupt catalog cache entry", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (c *Cached) store(ctx context.Context, key string, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		c.log.Warn("catalog cache encode failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.rdb.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.log.Warn("catalog cache write failed", zap.String("key", key), zap.Error(err))
	}
}
