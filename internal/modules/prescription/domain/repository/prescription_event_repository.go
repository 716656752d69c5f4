package repository

import (
	"MediLink/internal/modules/prescription/domain/entity"
	"context"
	"time"
)

// PrescriptionEventRepository 流转事件 outbox 仓储
type PrescriptionEventRepository interface {
	// Enqueue 在流转事务内入队一条待发布事件
	Enqueue(ctx context.Context, ev *entity.PrescriptionEvent) error

	// ClaimForPublish 认领到期的待发布事件
	ClaimForPublish(ctx context.Context, now time.Time, limit int) ([]entity.PrescriptionEvent, error)

	// MarkPublished 标记已发布
	MarkPublished(ctx context.Context, id int64, publishedAt time.Time) error

	// MarkPublishFailed 记录失败并安排下次重试
	MarkPublishFailed(ctx context.Context, id int64, nextRetryAt time.Time, errMsg string) error
}
