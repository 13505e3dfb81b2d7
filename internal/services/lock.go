package services

import (
	"context"
	"fmt"
	"os"
	"strings"
	gosync "sync"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/healthyback-backend/internal/platform/logger"
)

// WriteLocker serializes writers per (ownerKey, dataType) key. The store
// itself does not order concurrent writers, so the service layer owns this
// policy: one in-flight write per key, later writers wait.
type WriteLocker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

// NewWriteLocker returns a redis-backed locker when REDIS_ADDR is configured
// (covers multi-instance deployments), otherwise an in-process one.
func NewWriteLocker(log *logger.Logger) (WriteLocker, error) {
	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return NewLocalWriteLocker(), nil
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &redisWriteLocker{
		log:   log.With("service", "RedisWriteLocker"),
		rdb:   rdb,
		lease: 10 * time.Second,
	}, nil
}

type localWriteLocker struct {
	mu    gosync.Mutex
	locks map[string]chan struct{}
}

func NewLocalWriteLocker() WriteLocker {
	return &localWriteLocker{locks: map[string]chan struct{}{}}
}

func (l *localWriteLocker) Acquire(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	ch, ok := l.locks[key]
	if !ok {
		ch = make(chan struct{}, 1)
		l.locks[key] = ch
	}
	l.mu.Unlock()

	select {
	case ch <- struct{}{}:
		return func() { <-ch }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

type redisWriteLocker struct {
	log   *logger.Logger
	rdb   *goredis.Client
	lease time.Duration
}

// releaseScript deletes the lock only when it still holds our token, so an
// expired lease reclaimed by another writer is never released from here.
var releaseScript = goredis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

func (l *redisWriteLocker) Acquire(ctx context.Context, key string) (func(), error) {
	lockKey := "wlock:" + key
	token := uuid.NewString()
	for {
		ok, err := l.rdb.SetNX(ctx, lockKey, token, l.lease).Result()
		if err != nil {
			return nil, fmt.Errorf("acquire write lock: %w", err)
		}
		if ok {
			return func() {
				releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				defer cancel()
				if err := releaseScript.Run(releaseCtx, l.rdb, []string{lockKey}, token).Err(); err != nil && err != goredis.Nil {
					l.log.Warn("Failed to release write lock", "key", key, "error", err)
				}
			}, nil
		}
		select {
		case <-time.After(50 * time.Millisecond):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}
