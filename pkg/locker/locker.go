// Package locker serializes like toggles per (actor, target) key. Two
// concurrent toggles for the same pair would otherwise both observe "absent"
// and both insert; the store's unique index rejects the duplicate, but the
// lock keeps the second request well-behaved instead of erroring.
package locker

import (
	"fmt"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	redislib "github.com/redis/go-redis/v9"
)

// Locker acquires a named mutex and returns its release func.
type Locker interface {
	Lock(key string) (unlock func(), err error)
}

var defaultLocker Locker

// Init sets up the process-wide locker on top of the shared redis client.
func Init(client *redislib.Client) {
	defaultLocker = NewRedsyncLocker(client)
}

func Default() Locker {
	return defaultLocker
}

// RedsyncLocker is the redis-backed Locker shared by the API processes.
type RedsyncLocker struct {
	rs *redsync.Redsync
}

func NewRedsyncLocker(client *redislib.Client) *RedsyncLocker {
	pool := goredis.NewPool(client)
	return &RedsyncLocker{rs: redsync.New(pool)}
}

func (l *RedsyncLocker) Lock(key string) (func(), error) {
	mutex := l.rs.NewMutex("lock:"+key,
		redsync.WithExpiry(8*time.Second),
		redsync.WithTries(16),
	)
	if err := mutex.Lock(); err != nil {
		return nil, fmt.Errorf("failed to acquire lock %s: %w", key, err)
	}
	return func() {
		// Unlock failure means the expiry will release it.
		_, _ = mutex.Unlock()
	}, nil
}

// ToggleKey builds the lock key for a like toggle.
func ToggleKey(actor, targetKind, targetID string) string {
	return fmt.Sprintf("like:%s:%s:%s", actor, targetKind, targetID)
}
