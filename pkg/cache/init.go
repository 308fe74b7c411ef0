package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

var rdb *redis.Client

// InitRedis connects the shared redis client used by the stats cache and the
// toggle locker.
func InitRedis(addr, password string) error {
	rdb = redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return err
	}
	logrus.Infof("connected to redis at %s", addr)
	return nil
}

func RedisClient() *redis.Client {
	return rdb
}
