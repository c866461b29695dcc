// Package cache keeps computed championship balances in Redis. Entries are
// dropped whenever a championship's wagers or settlement rules change.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/EvertonDSS/corrida-app11/internal/config"
	"github.com/EvertonDSS/corrida-app11/internal/settlement"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ConnectRedis opens a client and pings it.
func ConnectRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("cache.ConnectRedis: %w", err)
	}
	return rdb, nil
}

// SettlementCache stores one ChampionshipBalance per (championship, rounding
// policy). Each championship also has a generation counter that Invalidate
// bumps; a balance is only written while the generation it was computed
// under is still current. A nil *SettlementCache is a valid, always-missing
// cache.
type SettlementCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewSettlementCache wraps rdb. ttl <= 0 keeps entries until invalidated.
func NewSettlementCache(rdb *redis.Client, ttl time.Duration) *SettlementCache {
	return &SettlementCache{rdb: rdb, ttl: ttl}
}

// Key is the Redis key of a cached balance.
func Key(championshipID uuid.UUID, policy settlement.RoundingPolicy) string {
	return fmt.Sprintf("settlement:%s:balance:%s", championshipID, policy)
}

// GenerationKey is the Redis key of a championship's generation counter. It
// sits outside the balance key space so Invalidate never deletes it.
func GenerationKey(championshipID uuid.UUID) string {
	return fmt.Sprintf("settlement-gen:%s", championshipID)
}

func pattern(championshipID uuid.UUID) string {
	return fmt.Sprintf("settlement:%s:*", championshipID)
}

// setIfGeneration writes KEYS[2] only while KEYS[1] still holds ARGV[1]. A
// missing counter reads as generation 0. ARGV[3] is the TTL in milliseconds,
// 0 for none.
var setIfGeneration = redis.NewScript(`
local cur = redis.call('GET', KEYS[1]) or '0'
if cur ~= ARGV[1] then
  return 0
end
if tonumber(ARGV[3]) > 0 then
  redis.call('SET', KEYS[2], ARGV[2], 'PX', ARGV[3])
else
  redis.call('SET', KEYS[2], ARGV[2])
end
return 1
`)

// Generation returns the championship's current generation, 0 when it was
// never invalidated.
func (c *SettlementCache) Generation(ctx context.Context, championshipID uuid.UUID) (int64, error) {
	if c == nil || c.rdb == nil {
		return 0, nil
	}
	gen, err := c.rdb.Get(ctx, GenerationKey(championshipID)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("cache.Generation: %w", err)
	}
	return gen, nil
}

// GetBalance returns the cached balance. ok is false on a miss.
func (c *SettlementCache) GetBalance(ctx context.Context, championshipID uuid.UUID, policy settlement.RoundingPolicy) (*settlement.ChampionshipBalance, bool, error) {
	if c == nil || c.rdb == nil {
		return nil, false, nil
	}
	raw, err := c.rdb.Get(ctx, Key(championshipID, policy)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("cache.GetBalance: %w", err)
	}
	var b settlement.ChampionshipBalance
	if err := json.Unmarshal(raw, &b); err != nil {
		return nil, false, fmt.Errorf("cache.GetBalance decode: %w", err)
	}
	return &b, true, nil
}

// SetBalance stores b if the championship is still at generation gen, which
// the caller read before loading the data b was computed from. A write
// skipped because of a newer generation is not an error.
func (c *SettlementCache) SetBalance(ctx context.Context, policy settlement.RoundingPolicy, gen int64, b *settlement.ChampionshipBalance) error {
	if c == nil || c.rdb == nil {
		return nil
	}
	raw, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("cache.SetBalance encode: %w", err)
	}
	keys := []string{GenerationKey(b.ChampionshipID), Key(b.ChampionshipID, policy)}
	if err := setIfGeneration.Run(ctx, c.rdb, keys, strconv.FormatInt(gen, 10), raw, c.ttl.Milliseconds()).Err(); err != nil {
		return fmt.Errorf("cache.SetBalance: %w", err)
	}
	return nil
}

// Invalidate bumps the championship's generation, then drops every cached
// entry of it.
func (c *SettlementCache) Invalidate(ctx context.Context, championshipID uuid.UUID) error {
	if c == nil || c.rdb == nil {
		return nil
	}
	if err := c.rdb.Incr(ctx, GenerationKey(championshipID)).Err(); err != nil {
		return fmt.Errorf("cache.Invalidate generation: %w", err)
	}
	var keys []string
	iter := c.rdb.Scan(ctx, 0, pattern(championshipID), 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("cache.Invalidate scan: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("cache.Invalidate: %w", err)
	}
	return nil
}
