package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"patchbay/config"
)

var RDB *redis.Client

// ConnectRedis wires the optional pub/sub fan-out for session events. When
// Redis is not configured or unreachable, RDB stays nil and publishers
// skip it; the event stream is best-effort, not part of the store contract.
func ConnectRedis(cfg *config.Config) {
	if cfg.RedisURL == "" {
		return
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisURL,
		DB:           0,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Printf("[Redis] unavailable at %s, continuing without sync: %v", cfg.RedisURL, err)
		return
	}

	RDB = rdb
	fmt.Println("Redis connected")
}
