package repo

import (
	"SwipeVault/config"
	"SwipeVault/model"
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

var Redis *redis.Client

// JobLeaseKeyPrefix namespaces the per-job lease keys the ingest worker
// holds while a job is running.
const JobLeaseKeyPrefix = "job_lease:"

// InitRedis initializes the Redis client.
func InitRedis() {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", config.AppConfig.RedisHost, config.AppConfig.RedisPort),
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisDB,
	})
	_, err := client.Ping(context.Background()).Result()
	if err != nil {
		log.Fatal("init redis fail", err)
	}
	log.Println("init redis success")
	Redis = client
}

// EnableKeyspaceNotifications enables Redis expired-key events.
func EnableKeyspaceNotifications(ctx context.Context) error {
	if Redis == nil {
		return errors.New("redis not initialized")
	}
	return Redis.ConfigSet(ctx, "notify-keyspace-events", "Ex").Err()
}

// ListenRedisExpired listens for Redis expired-key events.
func ListenRedisExpired(ctx context.Context, rdb *redis.Client, ready chan<- struct{}) {
	pubsub := rdb.Subscribe(ctx, "__keyevent@0__:expired")
	_, err := pubsub.Receive(ctx)
	if err != nil {
		log.Fatalf("subscribe failed: %v", err)
	}
	close(ready)
	ch := pubsub.Channel()

	for msg := range ch {
		handleExpiredKey(ctx, msg.Payload)
	}
}

// handleExpiredKey dispatches expired-key handlers.
func handleExpiredKey(ctx context.Context, key string) {
	switch {
	case strings.HasPrefix(key, JobLeaseKeyPrefix):
		handleJobLeaseExpired(ctx, key)
	default:
	}
}

// handleJobLeaseExpired marks a job whose worker lease lapsed as failed.
// A job still "running" when its lease expires belongs to a worker that
// died mid-flight; the message itself is gone, so the job cannot finish.
func handleJobLeaseExpired(ctx context.Context, key string) {
	jobID := strings.TrimPrefix(key, JobLeaseKeyPrefix)
	now := time.Now()
	res := Db.Model(&model.MediaJob{}).
		Where("id = ? AND status = ?", jobID, model.JobStatusRunning).
		Updates(map[string]interface{}{
			"status":      model.JobStatusFailed,
			"error_msg":   "worker lease expired",
			"finished_at": &now,
		})
	if res.Error != nil {
		logrus.WithError(res.Error).WithField("job_id", jobID).Warn("mark leaked job failed")
		return
	}
	if res.RowsAffected > 0 {
		logrus.WithField("job_id", jobID).Warn("job lease expired, marked failed")
	}
}
