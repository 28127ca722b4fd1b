package cache

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis"
	"github.com/jellydator/ttlcache/v3"
	"github.com/quarkid/vcsl-core/types"
	"github.com/tendermint/tendermint/libs/log"
)

const utxoKeyPrefix = "utxos:"

// Cache is a short-lived read cache of fetched unspent outputs, keyed by
// funding address. Redis is the primary tier when configured; an in-memory
// TTL cache serves single-instance deployments. Not required for
// correctness: entries must be invalidated on every successful broadcast
// for the address.
type Cache struct {
	RedisClient *redis.Client
	memory      *ttlcache.Cache[string, string]
	ttl         time.Duration
	logger      log.Logger
}

func NewCache(redisClient *redis.Client, ttl time.Duration, logger log.Logger) *Cache {
	memory := ttlcache.New[string, string](
		ttlcache.WithTTL[string, string](ttl),
	)
	go memory.Start()
	return &Cache{
		RedisClient: redisClient,
		memory:      memory,
		ttl:         ttl,
		logger:      logger,
	}
}

// GetUnspent : cached outputs for an address, or false on a miss
func (c *Cache) GetUnspent(address string) ([]types.Utxo, bool) {
	var raw string
	if c.RedisClient != nil {
		val, err := c.RedisClient.Get(utxoKeyPrefix + address).Result()
		if err != nil {
			return nil, false
		}
		raw = val
	} else {
		item := c.memory.Get(utxoKeyPrefix + address)
		if item == nil {
			return nil, false
		}
		raw = item.Value()
	}
	var utxos []types.Utxo
	if err := json.Unmarshal([]byte(raw), &utxos); err != nil {
		return nil, false
	}
	return utxos, true
}

func (c *Cache) SetUnspent(address string, utxos []types.Utxo) {
	raw, err := json.Marshal(utxos)
	if err != nil {
		return
	}
	if c.RedisClient != nil {
		if err := c.RedisClient.Set(utxoKeyPrefix+address, string(raw), c.ttl).Err(); err != nil {
			c.logger.Error(fmt.Sprintf("utxo cache write for %s failed: %s", address, err.Error()))
		}
		return
	}
	c.memory.Set(utxoKeyPrefix+address, string(raw), ttlcache.DefaultTTL)
}

// InvalidateUnspent drops the cached outputs for an address. Called after
// every successful broadcast, since the broadcast spends one of them.
func (c *Cache) InvalidateUnspent(address string) {
	if c.RedisClient != nil {
		if err := c.RedisClient.Del(utxoKeyPrefix + address).Err(); err != nil {
			c.logger.Error(fmt.Sprintf("utxo cache invalidation for %s failed: %s", address, err.Error()))
		}
		return
	}
	c.memory.Delete(utxoKeyPrefix + address)
}
