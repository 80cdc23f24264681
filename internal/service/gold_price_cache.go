package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// GoldPrice is one observation of the per-gram gold price.
type GoldPrice struct {
	Price     decimal.Decimal `json:"price"`
	FetchedAt time.Time       `json:"fetched_at"`
}

// GoldPriceCache stores the last upstream price. Get reports fresh=false on a
// miss or once the entry is older than the cache TTL.
type GoldPriceCache interface {
	Get(ctx context.Context) (price GoldPrice, fresh bool)
	Set(ctx context.Context, price GoldPrice)
}

// ── Redis ─────────────────────────────────────────────────────────────────────

const goldPriceKey = "cache:gold_price:inr_gram"

type redisGoldPriceCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisGoldPriceCache shares the cached price across all server instances.
func NewRedisGoldPriceCache(rdb *redis.Client, ttl time.Duration) GoldPriceCache {
	return &redisGoldPriceCache{rdb: rdb, ttl: ttl}
}

func (c *redisGoldPriceCache) Get(ctx context.Context) (GoldPrice, bool) {
	raw, err := c.rdb.Get(ctx, goldPriceKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Warn().Err(err).Msg("gold price cache: redis get failed")
		}
		return GoldPrice{}, false
	}
	var p GoldPrice
	if err := json.Unmarshal(raw, &p); err != nil {
		log.Warn().Err(err).Msg("gold price cache: corrupt entry")
		return GoldPrice{}, false
	}
	return p, true
}

func (c *redisGoldPriceCache) Set(ctx context.Context, p GoldPrice) {
	raw, err := json.Marshal(p)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, goldPriceKey, raw, c.ttl).Err(); err != nil {
		log.Warn().Err(err).Msg("gold price cache: redis set failed")
	}
}

// ── In-process ────────────────────────────────────────────────────────────────

type memoryGoldPriceCache struct {
	mu    sync.RWMutex
	price GoldPrice
	set   bool
	ttl   time.Duration
	now   func() time.Time
}

// NewMemoryGoldPriceCache is used when Redis is not available.
func NewMemoryGoldPriceCache(ttl time.Duration) GoldPriceCache {
	return &memoryGoldPriceCache{ttl: ttl, now: time.Now}
}

func (c *memoryGoldPriceCache) Get(_ context.Context) (GoldPrice, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.set {
		return GoldPrice{}, false
	}
	return c.price, c.now().Sub(c.price.FetchedAt) < c.ttl
}

func (c *memoryGoldPriceCache) Set(_ context.Context, p GoldPrice) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.price = p
	c.set = true
}
