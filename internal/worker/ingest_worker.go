package worker

import (
	"SwipeVault/config"
	"SwipeVault/internal/mq"
	"SwipeVault/internal/repo"
	"SwipeVault/internal/task"
	"SwipeVault/model"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

type dlqMessage struct {
	JobID    string    `json:"job_id"`
	Attempt  int       `json:"attempt"`
	Error    string    `json:"error"`
	FailedAt time.Time `json:"failed_at"`
}

// RunIngestWorker consumes ingest jobs from RabbitMQ.
func RunIngestWorker(ctx context.Context) error {
	client, err := mq.Dial()
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.DeclareTopology(); err != nil {
		return err
	}

	prefetch := config.AppConfig.RabbitMQPrefetch
	if prefetch <= 0 {
		prefetch = 1
	}
	if err := client.Channel.Qos(prefetch, 0, false); err != nil {
		return err
	}

	deliveries, err := client.Channel.Consume(
		mq.QueueIngest,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return err
	}

	concurrency := config.AppConfig.IngestWorkerConcurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	sem := make(chan struct{}, concurrency)

	burst := config.AppConfig.IngestBurst
	if burst <= 0 {
		burst = 1
	}
	rateLimit := config.AppConfig.IngestRate
	var limiter *rate.Limiter
	if rateLimit <= 0 {
		limiter = rate.NewLimiter(rate.Inf, burst)
	} else {
		limiter = rate.NewLimiter(rate.Limit(rateLimit), burst)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case delivery, ok := <-deliveries:
			if !ok {
				return errors.New("ingest worker: delivery channel closed")
			}
			sem <- struct{}{}
			go func(d amqp.Delivery) {
				defer func() { <-sem }()
				handleIngestMessage(ctx, client, limiter, d)
			}(delivery)
		}
	}
}

func handleIngestMessage(ctx context.Context, client *mq.Client, limiter *rate.Limiter, delivery amqp.Delivery) {
	var msg task.IngestMessage
	if err := json.Unmarshal(delivery.Body, &msg); err != nil {
		logrus.WithError(err).Warn("ingest worker: invalid message")
		_ = delivery.Ack(false)
		return
	}

	if limiter != nil {
		if err := limiter.Wait(ctx); err != nil {
			_ = delivery.Nack(false, true)
			return
		}
	}

	if err := task.ProcessIngestJob(ctx, msg.JobID); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			_ = delivery.Nack(false, true)
			return
		}
		if shouldRetry(err) {
			if err := scheduleRetry(ctx, client, msg, err); err != nil {
				logrus.WithError(err).Warn("ingest worker: retry schedule failed")
				_ = delivery.Nack(false, true)
				return
			}
		} else {
			if err := markFailed(ctx, client, msg, err); err != nil {
				logrus.WithError(err).Warn("ingest worker: mark failed failed")
				_ = delivery.Nack(false, true)
				return
			}
		}
	}

	_ = delivery.Ack(false)
}

func shouldRetry(err error) bool {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false
	}
	var httpErr *task.HTTPStatusError
	if errors.As(err, &httpErr) {
		if httpErr.StatusCode == http.StatusRequestTimeout || httpErr.StatusCode == http.StatusTooManyRequests {
			return true
		}
		return httpErr.StatusCode >= http.StatusInternalServerError
	}
	return true
}

func retryDelay(attempt int) time.Duration {
	delays := config.AppConfig.IngestRetryDelays
	if len(delays) == 0 {
		return 30 * time.Second
	}
	if attempt >= len(delays) {
		return delays[len(delays)-1]
	}
	return delays[attempt]
}

func scheduleRetry(ctx context.Context, client *mq.Client, msg task.IngestMessage, procErr error) error {
	maxRetry := config.AppConfig.IngestRetryMax
	if msg.Attempt >= maxRetry {
		return markFailed(ctx, client, msg, procErr)
	}

	next := task.IngestMessage{
		JobID:   msg.JobID,
		Attempt: msg.Attempt + 1,
	}
	if err := task.RequeueIngestJob(msg.JobID, next.Attempt, procErr); err != nil {
		return err
	}
	body, err := json.Marshal(next)
	if err != nil {
		return err
	}
	return client.PublishRetry(ctx, body, retryDelay(msg.Attempt))
}

func markFailed(ctx context.Context, client *mq.Client, msg task.IngestMessage, procErr error) error {
	var job model.MediaJob
	itemID := ""
	if err := repo.Db.Select("id", "research_item_id").Where("id = ?", msg.JobID).First(&job).Error; err == nil {
		itemID = job.ResearchItemID
	}
	task.MarkIngestJobFailed(msg.JobID, itemID, procErr)

	body, err := json.Marshal(dlqMessage{
		JobID:    msg.JobID,
		Attempt:  msg.Attempt,
		Error:    procErr.Error(),
		FailedAt: time.Now(),
	})
	if err != nil {
		return err
	}
	return client.PublishDLQ(ctx, body)
}
