package persistence

import (
	"context"
	"strings"
	"time"

	"MediLink/internal/modules/prescription/domain/entity"
	"MediLink/internal/modules/prescription/domain/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// 认领租约：被认领的事件在租约内不会被其他轮次重复认领
const claimLease = time.Minute

type prescriptionEventRepositoryImpl struct {
	db *gorm.DB
}

func NewPrescriptionEventRepository(db *gorm.DB) repository.PrescriptionEventRepository {
	return &prescriptionEventRepositoryImpl{db: db}
}

func (r *prescriptionEventRepositoryImpl) Enqueue(ctx context.Context, ev *entity.PrescriptionEvent) error {
	if ev == nil {
		return nil
	}
	return r.db.WithContext(ctx).Create(ev).Error
}

// ClaimForPublish 认领到期的待发布事件。SKIP LOCKED 让多实例轮询互不阻塞，
// next_retry_at 前推一个租约防止同一事件被连续轮次重复发布
func (r *prescriptionEventRepositoryImpl) ClaimForPublish(ctx context.Context, now time.Time, limit int) ([]entity.PrescriptionEvent, error) {
	if limit <= 0 {
		limit = 100
	}

	var out []entity.PrescriptionEvent
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var events []entity.PrescriptionEvent
		q := tx.Model(&entity.PrescriptionEvent{}).
			Where("status = ?", entity.EventStatusPending).
			Where("(next_retry_at IS NULL OR next_retry_at <= ?)", now).
			Order("id ASC").
			Limit(limit).
			Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"})
		if err := q.Find(&events).Error; err != nil {
			return err
		}
		if len(events) == 0 {
			out = []entity.PrescriptionEvent{}
			return nil
		}

		ids := make([]int64, 0, len(events))
		for i := range events {
			ids = append(ids, events[i].Id)
		}
		if err := tx.Model(&entity.PrescriptionEvent{}).
			Where("id IN ?", ids).
			Updates(map[string]any{"next_retry_at": now.Add(claimLease), "updated_at": now}).Error; err != nil {
			return err
		}

		out = events
		return nil
	})
	return out, err
}

func (r *prescriptionEventRepositoryImpl) MarkPublished(ctx context.Context, id int64, publishedAt time.Time) error {
	updates := map[string]any{
		"status":     entity.EventStatusPublished,
		"last_error": "",
		"updated_at": publishedAt,
	}
	return r.db.WithContext(ctx).Model(&entity.PrescriptionEvent{}).
		Where("id = ?", id).Updates(updates).Error
}

func (r *prescriptionEventRepositoryImpl) MarkPublishFailed(ctx context.Context, id int64, nextRetryAt time.Time, errMsg string) error {
	errMsg = strings.TrimSpace(errMsg)
	if len(errMsg) > 255 {
		errMsg = errMsg[:255]
	}
	updates := map[string]any{
		"retry_count":   gorm.Expr("retry_count + ?", 1),
		"next_retry_at": nextRetryAt,
		"last_error":    errMsg,
		"updated_at":    time.Now(),
	}
	return r.db.WithContext(ctx).Model(&entity.PrescriptionEvent{}).
		Where("id = ?", id).Updates(updates).Error
}
