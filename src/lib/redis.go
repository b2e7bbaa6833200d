package lib

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"staynearev/src/types"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var redisClient *redis.Client

func GetRedisClient() *redis.Client {
	if redisClient != nil {
		return redisClient
	}
	redisHost := os.Getenv("REDIS_HOST")
	opt, err := redis.ParseURL(redisHost)
	if err != nil {
		log.Printf("[redis] Error parsing connection string: %s\n", err.Error())
		return nil
	}
	rdb := redis.NewClient(opt)
	redisClient = rdb
	return rdb
}

// NewRedisClient Replace redis instance with custom client implementation
func NewRedisClient(c *redis.Client) *redis.Client {
	redisClient = c
	return redisClient
}

const (
	stationLockTTL      = 10 * time.Second
	stationLockRetries  = 50
	stationLockInterval = 100 * time.Millisecond
)

// AcquireStationLock takes a short-lived per-station lock so concurrent
// booking requests for the same station serialize before the overlap check.
// Returns the lock token to pass to ReleaseStationLock. When redis is not
// configured the lock degrades to a no-op and the transactional overlap
// check remains the only guard; a configured redis that errors or stays
// contended past the retry budget fails the request instead.
func AcquireStationLock(ctx context.Context, stationID uint) (string, error) {
	rdb := GetRedisClient()
	if rdb == nil {
		return "", nil
	}
	key := stationLockKey(stationID)
	token := uuid.NewString()
	for i := 0; i < stationLockRetries; i++ {
		ok, err := rdb.SetNX(ctx, key, token, stationLockTTL).Result()
		if err != nil {
			log.Printf("[redis] Failed to acquire lock for %s: %s\n", key, err.Error())
			return "", types.NewAPIError(types.ErrStorage, "could not serialize booking request")
		}
		if ok {
			return token, nil
		}
		select {
		case <-ctx.Done():
			return "", types.NewAPIError(types.ErrStorage, "could not serialize booking request")
		case <-time.After(stationLockInterval):
		}
	}
	return "", types.NewAPIError(types.ErrConflict, "station is busy, please retry")
}

// ReleaseStationLock frees the station lock if it is still held by token.
func ReleaseStationLock(ctx context.Context, stationID uint, token string) {
	rdb := GetRedisClient()
	if rdb == nil || token == "" {
		return
	}
	key := stationLockKey(stationID)
	val, err := rdb.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			log.Printf("[redis] Failed to read lock %s: %s\n", key, err.Error())
		}
		return
	}
	if val != token {
		return
	}
	if err := rdb.Del(ctx, key).Err(); err != nil {
		log.Printf("[redis] Failed to release lock %s: %s\n", key, err.Error())
	}
}

func stationLockKey(stationID uint) string {
	return fmt.Sprintf("booking_lock:station:%d", stationID)
}
