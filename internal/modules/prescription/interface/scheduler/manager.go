package scheduler

import (
	"context"
	"time"

	notifRepository "MediLink/internal/modules/notification/domain/repository"
	"MediLink/internal/modules/prescription/application/service"
	"MediLink/pkg/zlog"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const expireBatchLimit = 500

// SchedulerManager 挂接后台定时任务：
// 长期未出审核结论的处方自动过期，以及过期通知的清理
type SchedulerManager struct {
	cron            *cron.Cron
	transitionSvc   service.TransitionService
	notifRepo       notifRepository.NotificationRepository
	expireAfter     time.Duration
	expireSweepCron string
}

func NewSchedulerManager(
	transitionSvc service.TransitionService,
	notifRepo notifRepository.NotificationRepository,
	expireAfterHours int,
	expireSweepCron string,
) *SchedulerManager {
	if expireAfterHours <= 0 {
		expireAfterHours = 72
	}
	if expireSweepCron == "" {
		expireSweepCron = "*/30 * * * *"
	}
	return &SchedulerManager{
		// 使用标准5段Cron表达式（不含秒）
		cron:            cron.New(),
		transitionSvc:   transitionSvc,
		notifRepo:       notifRepo,
		expireAfter:     time.Duration(expireAfterHours) * time.Hour,
		expireSweepCron: expireSweepCron,
	}
}

func (m *SchedulerManager) Start() error {
	if _, err := m.cron.AddFunc(m.expireSweepCron, m.sweepExpired); err != nil {
		return err
	}
	// 通知清理低频即可
	if _, err := m.cron.AddFunc("10 4 * * *", m.purgeNotifications); err != nil {
		return err
	}
	m.cron.Start()
	zlog.Info("tracking scheduler started",
		zap.String("expire_sweep_cron", m.expireSweepCron),
		zap.Duration("expire_after", m.expireAfter))
	return nil
}

func (m *SchedulerManager) Stop() {
	ctx := m.cron.Stop()
	// 等正在执行的任务收尾
	<-ctx.Done()
}

func (m *SchedulerManager) sweepExpired() {
	ctx := context.Background()
	olderThan := time.Now().Add(-m.expireAfter)
	n, err := m.transitionSvc.ExpireStale(ctx, olderThan, expireBatchLimit)
	if err != nil {
		zlog.Warn("处方过期扫描失败", zap.Error(err))
		return
	}
	if n > 0 {
		zlog.Info("处方过期扫描完成", zap.Int("expired", n))
	}
}

func (m *SchedulerManager) purgeNotifications() {
	ctx := context.Background()
	n, err := m.notifRepo.DeleteExpired(ctx, time.Now())
	if err != nil {
		zlog.Warn("过期通知清理失败", zap.Error(err))
		return
	}
	if n > 0 {
		zlog.Info("过期通知清理完成", zap.Int64("deleted", n))
	}
}
