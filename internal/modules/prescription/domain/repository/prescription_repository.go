package repository

import (
	"MediLink/internal/modules/prescription/domain/entity"
	"context"
	"time"
)

// PrescriptionRepository 处方仓储接口
type PrescriptionRepository interface {
	// Create 创建处方（初始状态 uploaded）
	Create(ctx context.Context, rx *entity.Prescription) error

	// GetByUUID 按业务 ID 查询
	GetByUUID(ctx context.Context, uuid string) (*entity.Prescription, error)

	// ListByUser 查询用户名下处方，按创建时间倒序
	ListByUser(ctx context.Context, userID string, page, pageSize int) ([]entity.Prescription, error)

	// UpdateStatusFrom 条件更新状态：仅当当前状态仍等于 oldStatus 时生效，
	// extra 为随状态一起写入的派生字段（verified_by 等）。
	// 返回 false 表示没有命中行，说明状态已被并发请求改写。
	UpdateStatusFrom(ctx context.Context, uuid, oldStatus, newStatus string, extra map[string]interface{}) (bool, error)

	// ListExpirable 查询早于 olderThan 创建且仍可过期的处方，供定时扫描用
	ListExpirable(ctx context.Context, olderThan time.Time, limit int) ([]entity.Prescription, error)
}
