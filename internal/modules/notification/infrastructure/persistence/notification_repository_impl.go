package persistence

import (
	"context"
	"time"

	"MediLink/internal/modules/notification/domain/entity"
	"MediLink/internal/modules/notification/domain/repository"

	"gorm.io/gorm"
)

type notificationRepositoryImpl struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) repository.NotificationRepository {
	return &notificationRepositoryImpl{db: db}
}

func (r *notificationRepositoryImpl) Create(ctx context.Context, notif *entity.Notification) error {
	return r.db.WithContext(ctx).Create(notif).Error
}

func (r *notificationRepositoryImpl) ListByUser(ctx context.Context, userID string, filter repository.ListFilter, now time.Time) ([]entity.Notification, error) {
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}

	q := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Where("(expires_at IS NULL OR expires_at > ?)", now)
	if filter.UnreadOnly {
		q = q.Where("is_read = ?", false)
	}
	if filter.Type != "" {
		q = q.Where("type = ?", filter.Type)
	}

	var list []entity.Notification
	err := q.Order("created_at DESC, id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&list).Error
	return list, err
}

func (r *notificationRepositoryImpl) MarkRead(ctx context.Context, uuid, userID string) (bool, error) {
	// 已读记录重复置读按命中处理，保证接口幂等
	res := r.db.WithContext(ctx).Model(&entity.Notification{}).
		Where("uuid = ? AND user_id = ?", uuid, userID).
		Update("is_read", true)
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected > 0 {
		return true, nil
	}

	var n int64
	err := r.db.WithContext(ctx).Model(&entity.Notification{}).
		Where("uuid = ? AND user_id = ?", uuid, userID).
		Count(&n).Error
	return n > 0, err
}

func (r *notificationRepositoryImpl) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	res := r.db.WithContext(ctx).Model(&entity.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true)
	return res.RowsAffected, res.Error
}

func (r *notificationRepositoryImpl) CountUnread(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&entity.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&n).Error
	return n, err
}

func (r *notificationRepositoryImpl) CountByUser(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&entity.Notification{}).
		Where("user_id = ?", userID).
		Count(&n).Error
	return n, err
}

func (r *notificationRepositoryImpl) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("expires_at IS NOT NULL AND expires_at <= ?", now).
		Delete(&entity.Notification{})
	return res.RowsAffected, res.Error
}
