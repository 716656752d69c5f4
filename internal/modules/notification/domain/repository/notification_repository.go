package repository

import (
	"MediLink/internal/modules/notification/domain/entity"
	"context"
	"time"
)

// ListFilter 通知列表筛选条件
type ListFilter struct {
	UnreadOnly bool
	Type       string
	Page       int
	PageSize   int
}

// NotificationRepository 通知记录仓储接口
type NotificationRepository interface {
	// Create 创建通知记录
	Create(ctx context.Context, notif *entity.Notification) error

	// ListByUser 查询用户通知，按创建时间倒序，过滤掉已过期记录
	ListByUser(ctx context.Context, userID string, filter ListFilter, now time.Time) ([]entity.Notification, error)

	// MarkRead 单条置为已读，返回是否命中该用户名下的记录
	MarkRead(ctx context.Context, uuid, userID string) (bool, error)

	// MarkAllRead 用户全部未读置为已读，返回影响行数
	MarkAllRead(ctx context.Context, userID string) (int64, error)

	// CountUnread 未读数量
	CountUnread(ctx context.Context, userID string) (int64, error)

	// CountByUser 通知总数（供测试与监控）
	CountByUser(ctx context.Context, userID string) (int64, error)

	// DeleteExpired 清理过期通知，返回删除行数
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
