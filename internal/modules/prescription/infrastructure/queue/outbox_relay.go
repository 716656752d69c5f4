package queue

import (
	"context"
	"errors"
	"strings"
	"time"

	"MediLink/internal/modules/prescription/domain/repository"
	"MediLink/internal/modules/prescription/infrastructure/mq"
	"MediLink/pkg/zlog"

	"go.uber.org/zap"
)

// OutboxRelay 把流转事务内落库的事件搬运到 Kafka。
// 发布失败指数退避重试，成功后置为已发布，至少投递一次，
// 下游按 dedup_key 去重。
type OutboxRelay struct {
	repo         repository.PrescriptionEventRepository
	pub          mq.Publisher
	topic        string
	batchSize    int
	pollInterval time.Duration
}

func NewOutboxRelay(repo repository.PrescriptionEventRepository, pub mq.Publisher, topic string, batchSize int, pollInterval time.Duration) *OutboxRelay {
	if batchSize <= 0 {
		batchSize = 200
	}
	if pollInterval <= 0 {
		pollInterval = 500 * time.Millisecond
	}
	return &OutboxRelay{
		repo:         repo,
		pub:          pub,
		topic:        strings.TrimSpace(topic),
		batchSize:    batchSize,
		pollInterval: pollInterval,
	}
}

// Run 轮询直到 ctx 取消
func (r *OutboxRelay) Run(ctx context.Context) error {
	if r.repo == nil {
		return errors.New("prescription event repo is nil")
	}
	if r.pub == nil {
		return errors.New("publisher is nil")
	}
	if r.topic == "" {
		return errors.New("kafka topic is empty")
	}

	backoff := r.pollInterval
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		n, err := r.RunOnce(ctx)
		if err != nil {
			time.Sleep(backoff)
			backoff = backoff * 2
			if backoff > 30*time.Second {
				backoff = 30 * time.Second
			}
			continue
		}
		backoff = r.pollInterval

		if n == 0 {
			time.Sleep(r.pollInterval)
		}
	}
}

// RunOnce 认领一批待发布事件并逐条发布，返回成功数
func (r *OutboxRelay) RunOnce(ctx context.Context) (int, error) {
	now := time.Now()
	events, err := r.repo.ClaimForPublish(ctx, now, r.batchSize)
	if err != nil {
		zlog.Warn("outbox relay claim failed", zap.Error(err))
		return 0, err
	}
	if len(events) == 0 {
		return 0, nil
	}

	published := 0
	for i := range events {
		ev := events[i]

		// 同一处方固定分区，下游按序消费
		_, pubErr := r.pub.Publish(ctx, mq.Message{
			Topic: r.topic,
			Key:   []byte(ev.PrescriptionId),
			Value: []byte(ev.PayloadJson),
			Headers: map[string]string{
				"event_type":      ev.EventType,
				"prescription_id": ev.PrescriptionId,
				"user_id":         ev.UserId,
				"dedup_key":       ev.DedupKey,
			},
		})
		if pubErr != nil {
			next := computeNextRetry(now, ev.RetryCount)
			_ = r.repo.MarkPublishFailed(ctx, ev.Id, next, pubErr.Error())
			continue
		}

		if err := r.repo.MarkPublished(ctx, ev.Id, time.Now()); err != nil {
			zlog.Warn("outbox relay mark published failed", zap.Int64("id", ev.Id), zap.Error(err))
			continue
		}
		published++
	}

	return published, nil
}

func computeNextRetry(now time.Time, retryCount int) time.Time {
	if retryCount < 0 {
		retryCount = 0
	}
	d := 500 * time.Millisecond
	for i := 0; i < retryCount && d < 5*time.Minute; i++ {
		d = d * 2
	}
	if d > 5*time.Minute {
		d = 5 * time.Minute
	}
	return now.Add(d)
}
