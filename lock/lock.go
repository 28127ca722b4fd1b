package lock

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis"
	"github.com/tendermint/tendermint/libs/log"
)

// Locker serializes anchoring attempts per funding address. Acquire blocks
// until the resource is exclusively held or the wait budget runs out; the
// returned release func must be called on every exit path.
type Locker interface {
	Acquire(resource string) (func(), error)
}

// RedisLock implements Locker with SET NX and a TTL, so a crashed holder
// cannot wedge the funding address forever.
type RedisLock struct {
	client     *redis.Client
	ttl        time.Duration
	retryEvery time.Duration
	maxWait    time.Duration
	logger     log.Logger
}

func NewRedisLock(client *redis.Client, ttl time.Duration, maxWait time.Duration, logger log.Logger) *RedisLock {
	return &RedisLock{
		client:     client,
		ttl:        ttl,
		retryEvery: 250 * time.Millisecond,
		maxWait:    maxWait,
		logger:     logger,
	}
}

func (l *RedisLock) Acquire(resource string) (func(), error) {
	key := "lock:" + resource
	tokenBytes := make([]byte, 16)
	if _, err := rand.Read(tokenBytes); err != nil {
		return nil, err
	}
	token := hex.EncodeToString(tokenBytes)

	deadline := time.Now().Add(l.maxWait)
	for {
		ok, err := l.client.SetNX(key, token, l.ttl).Result()
		if err != nil {
			return nil, err
		}
		if ok {
			break
		}
		if time.Now().After(deadline) {
			return nil, errors.New(fmt.Sprintf("could not acquire lock on %s within %s", resource, l.maxWait))
		}
		time.Sleep(l.retryEvery)
	}

	release := func() {
		// only delete the lock if we still hold it
		val, err := l.client.Get(key).Result()
		if err == nil && val == token {
			if _, err := l.client.Del(key).Result(); err != nil {
				l.logger.Error(fmt.Sprintf("failed releasing lock on %s: %s", resource, err.Error()))
			}
		}
	}
	return release, nil
}

// LocalLock is an in-process Locker for single-instance deployments and
// tests. Not safe across processes.
type LocalLock struct {
	mtx   sync.Mutex
	locks map[string]*sync.Mutex
}

func NewLocalLock() *LocalLock {
	return &LocalLock{locks: map[string]*sync.Mutex{}}
}

func (l *LocalLock) Acquire(resource string) (func(), error) {
	l.mtx.Lock()
	m, exists := l.locks[resource]
	if !exists {
		m = &sync.Mutex{}
		l.locks[resource] = m
	}
	l.mtx.Unlock()
	m.Lock()
	return m.Unlock, nil
}
