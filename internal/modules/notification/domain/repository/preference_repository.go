package repository

import (
	"MediLink/internal/modules/notification/domain/entity"
	"context"
)

// PreferenceRepository 通知偏好仓储接口
type PreferenceRepository interface {
	// GetByUser 查询用户偏好，不存在时返回 gorm.ErrRecordNotFound
	GetByUser(ctx context.Context, userID string) (*entity.NotificationPreference, error)

	// Create 创建偏好记录
	Create(ctx context.Context, pref *entity.NotificationPreference) error

	// Update 覆盖写入偏好
	Update(ctx context.Context, pref *entity.NotificationPreference) error
}
