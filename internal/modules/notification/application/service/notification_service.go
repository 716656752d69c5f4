package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	notifRequest "MediLink/internal/modules/notification/application/dto/request"
	notifRespond "MediLink/internal/modules/notification/application/dto/respond"
	"MediLink/internal/modules/notification/domain/entity"
	"MediLink/internal/modules/notification/domain/repository"
	"MediLink/pkg/redis"
	"MediLink/pkg/xerr"
	"MediLink/pkg/zlog"

	"gorm.io/gorm"
)

// NotificationService 通知的读侧与偏好管理
type NotificationService interface {
	ListNotifications(ctx context.Context, userID string, req notifRequest.ListNotificationsRequest) ([]notifRespond.NotificationItem, error)
	MarkRead(ctx context.Context, userID, notificationID string) error
	MarkAllRead(ctx context.Context, userID string) error
	UnreadCount(ctx context.Context, userID string) (int64, error)
	GetPreferences(ctx context.Context, userID string) (*notifRespond.PreferenceItem, error)
	UpdatePreferences(ctx context.Context, userID string, req notifRequest.UpdatePreferencesRequest) (*notifRespond.PreferenceItem, error)
}

type notificationServiceImpl struct {
	notifRepo repository.NotificationRepository
	prefRepo  repository.PreferenceRepository
}

func NewNotificationService(
	notifRepo repository.NotificationRepository,
	prefRepo repository.PreferenceRepository,
) NotificationService {
	return &notificationServiceImpl{
		notifRepo: notifRepo,
		prefRepo:  prefRepo,
	}
}

func (s *notificationServiceImpl) ListNotifications(ctx context.Context, userID string, req notifRequest.ListNotificationsRequest) ([]notifRespond.NotificationItem, error) {
	if userID == "" {
		return nil, xerr.New(xerr.BadRequest, xerr.ErrParam.Message)
	}

	filter := repository.ListFilter{
		UnreadOnly: req.UnreadOnly,
		Type:       req.Type,
		Page:       req.Page,
		PageSize:   req.PageSize,
	}
	notifs, err := s.notifRepo.ListByUser(ctx, userID, filter, time.Now())
	if err != nil {
		zlog.Error(err.Error())
		return nil, xerr.ErrServerError
	}

	items := make([]notifRespond.NotificationItem, 0, len(notifs))
	for _, n := range notifs {
		items = append(items, notifRespond.NotificationItem{
			Uuid:      n.Uuid,
			Type:      n.Type,
			Title:     n.Title,
			Body:      n.Body,
			Payload:   n.PayloadJson,
			IsRead:    n.IsRead,
			Priority:  n.Priority,
			CreatedAt: n.CreatedAt.Format(time.RFC3339),
		})
	}
	return items, nil
}

func (s *notificationServiceImpl) MarkRead(ctx context.Context, userID, notificationID string) error {
	if userID == "" || notificationID == "" {
		return xerr.New(xerr.BadRequest, xerr.ErrParam.Message)
	}

	hit, err := s.notifRepo.MarkRead(ctx, notificationID, userID)
	if err != nil {
		zlog.Error(err.Error())
		return xerr.ErrServerError
	}
	if !hit {
		return xerr.ErrNotificationNotFound
	}
	invalidateUnreadCache(ctx, userID)
	return nil
}

func (s *notificationServiceImpl) MarkAllRead(ctx context.Context, userID string) error {
	if userID == "" {
		return xerr.New(xerr.BadRequest, xerr.ErrParam.Message)
	}

	if _, err := s.notifRepo.MarkAllRead(ctx, userID); err != nil {
		zlog.Error(err.Error())
		return xerr.ErrServerError
	}
	invalidateUnreadCache(ctx, userID)
	return nil
}

// UnreadCount 未读数。优先读 Redis 缓存，未命中回源数据库并回填
func (s *notificationServiceImpl) UnreadCount(ctx context.Context, userID string) (int64, error) {
	if userID == "" {
		return 0, xerr.New(xerr.BadRequest, xerr.ErrParam.Message)
	}

	if redis.IsConnected() {
		if v, err := redis.Get(ctx, unreadCacheKey(userID)); err == nil {
			if n, convErr := strconv.ParseInt(v, 10, 64); convErr == nil {
				return n, nil
			}
		}
	}

	n, err := s.notifRepo.CountUnread(ctx, userID)
	if err != nil {
		zlog.Error(err.Error())
		return 0, xerr.ErrServerError
	}

	if redis.IsConnected() {
		if err := redis.Set(ctx, unreadCacheKey(userID), n, 10*time.Minute); err != nil {
			zlog.Warn("未读数缓存回填失败: " + err.Error())
		}
	}
	return n, nil
}

func (s *notificationServiceImpl) GetPreferences(ctx context.Context, userID string) (*notifRespond.PreferenceItem, error) {
	if userID == "" {
		return nil, xerr.New(xerr.BadRequest, xerr.ErrParam.Message)
	}

	pref, err := s.loadOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toPreferenceItem(pref), nil
}

func (s *notificationServiceImpl) UpdatePreferences(ctx context.Context, userID string, req notifRequest.UpdatePreferencesRequest) (*notifRespond.PreferenceItem, error) {
	if userID == "" {
		return nil, xerr.New(xerr.BadRequest, xerr.ErrParam.Message)
	}

	pref, err := s.loadOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	applyBool := func(dst *bool, src *bool) {
		if src != nil {
			*dst = *src
		}
	}
	applyBool(&pref.PushEnabled, req.PushEnabled)
	applyBool(&pref.EmailEnabled, req.EmailEnabled)
	applyBool(&pref.SmsEnabled, req.SmsEnabled)
	applyBool(&pref.InAppEnabled, req.InAppEnabled)
	applyBool(&pref.StatusUpdates, req.StatusUpdates)
	applyBool(&pref.OrderUpdates, req.OrderUpdates)
	applyBool(&pref.Promotional, req.Promotional)
	applyBool(&pref.SystemAlerts, req.SystemAlerts)
	pref.UpdatedAt = time.Now()

	if err := s.prefRepo.Update(ctx, pref); err != nil {
		zlog.Error(err.Error())
		return nil, xerr.ErrServerError
	}
	return toPreferenceItem(pref), nil
}

func (s *notificationServiceImpl) loadOrCreate(ctx context.Context, userID string) (*entity.NotificationPreference, error) {
	pref, err := s.prefRepo.GetByUser(ctx, userID)
	if err == nil {
		return pref, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		zlog.Error(err.Error())
		return nil, xerr.ErrServerError
	}

	created := entity.DefaultPreference(userID)
	if err := s.prefRepo.Create(ctx, created); err != nil {
		zlog.Error(err.Error())
		return nil, xerr.ErrServerError
	}
	return created, nil
}

func toPreferenceItem(p *entity.NotificationPreference) *notifRespond.PreferenceItem {
	return &notifRespond.PreferenceItem{
		PushEnabled:   p.PushEnabled,
		EmailEnabled:  p.EmailEnabled,
		SmsEnabled:    p.SmsEnabled,
		InAppEnabled:  p.InAppEnabled,
		StatusUpdates: p.StatusUpdates,
		OrderUpdates:  p.OrderUpdates,
		Promotional:   p.Promotional,
		SystemAlerts:  p.SystemAlerts,
	}
}
