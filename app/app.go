package app

import (
	"fmt"
	"time"

	"github.com/go-redis/redis"
	"github.com/quarkid/vcsl-core/anchor"
	"github.com/quarkid/vcsl-core/anchor/bsv"
	"github.com/quarkid/vcsl-core/cache"
	"github.com/quarkid/vcsl-core/database/postgres"
	"github.com/quarkid/vcsl-core/lock"
	"github.com/quarkid/vcsl-core/types"
	"github.com/quarkid/vcsl-core/vcsl"
	"github.com/quarkid/vcsl-core/wallet"
	"github.com/quarkid/vcsl-core/whatsonchain"
	"github.com/tendermint/tendermint/libs/log"
)

// AnchorApplication : wires the wallet, indexer, storage and anchoring
// service together from a resolved config
type AnchorApplication struct {
	Config      types.AnchorConfig
	Wallet      *wallet.Wallet
	PgClient    *postgres.Postgres
	RedisClient *redis.Client
	Cache       *cache.Cache
	Anchor      anchor.AnchorEngine
	Service     *vcsl.Service
	logger      log.Logger
}

// NewAnchorApplication : a failure here is fatal, there is no degraded mode
// without a wallet or a database
func NewAnchorApplication(config types.AnchorConfig) *AnchorApplication {
	logger := *config.Logger

	w, err := wallet.NewWallet(config.WalletWIF, config.BitcoinNetwork)
	if err != nil {
		panic(err)
	}
	logger.Info(fmt.Sprintf("Funding wallet loaded for %s network, address %s", config.BitcoinNetwork, w.Address()))

	pgClient, err := postgres.NewPGFromURI(config.PostgresURI, logger)
	if err != nil {
		panic(err)
	}

	lockTTL := time.Duration(config.LockTTLSeconds) * time.Second
	lockWait := time.Duration(config.LockWaitSeconds) * time.Second
	cacheTTL := time.Duration(config.UtxoCacheTTL) * time.Second

	var redisClient *redis.Client
	var locker lock.Locker
	if config.RedisHost != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr: fmt.Sprintf("%s:%s", config.RedisHost, config.RedisPort),
		})
		if err := redisClient.Ping().Err(); err != nil {
			panic(err)
		}
		locker = lock.NewRedisLock(redisClient, lockTTL, lockWait, logger)
	} else {
		logger.Info("No redis host configured, using in-process locking")
		locker = lock.NewLocalLock()
	}

	utxoCache := cache.NewCache(redisClient, cacheTTL, logger)
	indexer := whatsonchain.NewClient(config.WocBaseURL, config.BitcoinNetwork, logger)
	engine := bsv.NewBSVAnchorEngine(w, indexer, locker, utxoCache, config.FeeRate, logger)
	service := vcsl.NewService(pgClient, engine, logger)

	return &AnchorApplication{
		Config:      config,
		Wallet:      w,
		PgClient:    pgClient,
		RedisClient: redisClient,
		Cache:       utxoCache,
		Anchor:      engine,
		Service:     service,
		logger:      logger,
	}
}
