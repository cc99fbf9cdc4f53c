package db

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

var Redis *redis.Client

const runLockKey = "worldmon:monitor:lock"

func ConnectRedis() error {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		fmt.Println("REDIS_URL environment variable is not set")
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		opt = &redis.Options{Addr: redisURL}
	}

	Redis = redis.NewClient(opt)

	_, err = Redis.Ping(context.Background()).Result()
	return err
}

func CloseRedis() {
	if Redis != nil {
		Redis.Close()
	}
}

// RunLock is a cross-instance guard around monitoring runs, held for at most
// ttl so a crashed holder cannot wedge the schedule.
type RunLock struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRunLock(client *redis.Client) *RunLock {
	return &RunLock{client: client, ttl: 10 * time.Minute}
}

// Acquire returns false only when another instance verifiably holds the lock.
// If Redis is unreachable the run proceeds on the local single-flight guard.
func (l *RunLock) Acquire(ctx context.Context) bool {
	ok, err := l.client.SetNX(ctx, runLockKey, "1", l.ttl).Result()
	if err != nil {
		slog.Warn("redis run lock unavailable, proceeding without it", "error", err)
		return true
	}
	return ok
}

func (l *RunLock) Release(ctx context.Context) {
	if err := l.client.Del(ctx, runLockKey).Err(); err != nil {
		slog.Warn("error releasing redis run lock", "error", err)
	}
}
