package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"MediLink/internal/modules/notification/domain/entity"
	"MediLink/internal/modules/notification/domain/repository"
	"MediLink/internal/modules/notification/infrastructure/channel"
	"MediLink/pkg/redis"
	"MediLink/pkg/util"
	"MediLink/pkg/zlog"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// TransitionNotice 流转编排器交给通知侧的事件描述
type TransitionNotice struct {
	PrescriptionID string
	UserID         string
	OldStatus      string
	NewStatus      string
	OccurredAt     time.Time
}

// 通知记录保留期，到期由定时任务清理
const notificationTTL = 30 * 24 * time.Hour

// NotifyService 状态变更通知：决定发不发、发什么，按用户偏好扇出到各渠道。
// 任何渠道失败都不影响通知记录落库，更不影响触发它的状态流转。
type NotifyService interface {
	OnTransition(ctx context.Context, notice TransitionNotice)
}

type notifyServiceImpl struct {
	notifRepo repository.NotificationRepository
	prefRepo  repository.PreferenceRepository
	senders   []channel.Sender
}

func NewNotifyService(
	notifRepo repository.NotificationRepository,
	prefRepo repository.PreferenceRepository,
	senders []channel.Sender,
) NotifyService {
	return &notifyServiceImpl{
		notifRepo: notifRepo,
		prefRepo:  prefRepo,
		senders:   senders,
	}
}

func (s *notifyServiceImpl) OnTransition(ctx context.Context, notice TransitionNotice) {
	// 没有模板的状态不产生通知，这不是错误
	tpl, ok := entity.TemplateFor(notice.NewStatus)
	if !ok {
		return
	}

	title, body := tpl.Render(notice.PrescriptionID)
	payload := entity.Payload{
		PrescriptionId: notice.PrescriptionID,
		NewStatus:      notice.NewStatus,
		DeepLink:       "/prescriptions/" + notice.PrescriptionID,
	}
	payloadJson, _ := json.Marshal(payload)

	// 每个逻辑事件只落一条记录，与渠道数无关
	now := time.Now()
	expiresAt := now.Add(notificationTTL)
	notif := &entity.Notification{
		Uuid:        util.GenerateNotificationID(),
		UserId:      notice.UserID,
		Type:        entity.TypeStatusChange,
		Title:       title,
		Body:        body,
		PayloadJson: string(payloadJson),
		Priority:    tpl.Priority,
		ExpiresAt:   &expiresAt,
		CreatedAt:   now,
	}
	if err := s.notifRepo.Create(ctx, notif); err != nil {
		zlog.Error("创建通知记录失败",
			zap.String("prescription_id", notice.PrescriptionID),
			zap.Error(err))
		// 记录失败不中断渠道投递
	} else {
		invalidateUnreadCache(ctx, notice.UserID)
	}

	pref := s.loadOrCreatePreference(ctx, notice.UserID)
	if !pref.CategoryEnabled(entity.TypeStatusChange) {
		return
	}

	enabled := make(map[string]bool)
	for _, ch := range pref.EnabledChannels() {
		enabled[ch] = true
	}

	// 渠道并行投递，慢渠道不拖累其他渠道；单渠道失败只记日志
	var wg sync.WaitGroup
	for _, sender := range s.senders {
		if sender == nil || !enabled[sender.Name()] {
			continue
		}
		wg.Add(1)
		go func(snd channel.Sender) {
			defer wg.Done()
			if err := snd.Send(ctx, notice.UserID, title, body, payload); err != nil {
				zlog.Warn("通知渠道投递失败",
					zap.String("channel", snd.Name()),
					zap.String("user_id", notice.UserID),
					zap.String("prescription_id", notice.PrescriptionID),
					zap.Error(err))
			}
		}(sender)
	}
	wg.Wait()
}

// loadOrCreatePreference 懒创建缺省偏好；读写都失败时退回内存缺省值，
// 保证通知流程不因偏好表故障而中断
func (s *notifyServiceImpl) loadOrCreatePreference(ctx context.Context, userID string) *entity.NotificationPreference {
	pref, err := s.prefRepo.GetByUser(ctx, userID)
	if err == nil {
		return pref
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		zlog.Error("读取通知偏好失败: " + err.Error())
		return entity.DefaultPreference(userID)
	}

	created := entity.DefaultPreference(userID)
	if err := s.prefRepo.Create(ctx, created); err != nil {
		zlog.Warn("创建缺省通知偏好失败: " + err.Error())
	}
	return created
}

// invalidateUnreadCache 未读数缓存失效，下次查询回源重建
func invalidateUnreadCache(ctx context.Context, userID string) {
	if !redis.IsConnected() {
		return
	}
	if _, err := redis.Del(ctx, unreadCacheKey(userID)); err != nil {
		zlog.Warn("未读数缓存失效失败: " + err.Error())
	}
}

func unreadCacheKey(userID string) string {
	return "notif:unread:" + userID
}
