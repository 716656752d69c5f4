package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	notifService "MediLink/internal/modules/notification/application/service"
	"MediLink/internal/modules/prescription/domain/entity"
	"MediLink/internal/modules/prescription/domain/repository"
	"MediLink/pkg/broadcast"
	"MediLink/pkg/xerr"
	"MediLink/pkg/zlog"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// TransitionNotifier 通知侧入口。入队即返回，投递结果与流转结果彻底解耦
type TransitionNotifier interface {
	Enqueue(notice notifService.TransitionNotice) bool
}

// TransitionService 状态流转编排器，status 字段的唯一写入方。
// 校验 → 事务内（条件更新状态 + 追加审计日志 + 入队 outbox 事件）→
// 事务外（通知入队 + 实时广播）。
type TransitionService interface {
	// UpdateStatus 请求一次状态流转。
	// 可能返回 InvalidTransition / StatusConflict / NotFound / 系统错误；
	// 被拒绝的流转不产生任何持久化变更。
	UpdateStatus(ctx context.Context, prescriptionID, newStatus, actorID, notes string) error

	// ExpireStale 将早于 olderThan 创建且仍未进入审核结论的处方置为过期，
	// 返回成功过期的数量。由定时任务调用。
	ExpireStale(ctx context.Context, olderThan time.Time, limit int) (int, error)
}

type transitionServiceImpl struct {
	rxRepo      repository.PrescriptionRepository
	uow         repository.TrackingUnitOfWork
	notifier    TransitionNotifier
	broadcaster *broadcast.Broadcaster
}

func NewTransitionService(
	rxRepo repository.PrescriptionRepository,
	uow repository.TrackingUnitOfWork,
	notifier TransitionNotifier,
	broadcaster *broadcast.Broadcaster,
) TransitionService {
	return &transitionServiceImpl{
		rxRepo:      rxRepo,
		uow:         uow,
		notifier:    notifier,
		broadcaster: broadcaster,
	}
}

func (s *transitionServiceImpl) UpdateStatus(ctx context.Context, prescriptionID, newStatus, actorID, notes string) error {
	prescriptionID = strings.TrimSpace(prescriptionID)
	newStatus = strings.TrimSpace(newStatus)
	if prescriptionID == "" || !entity.IsStatus(newStatus) {
		return xerr.New(xerr.BadRequest, xerr.ErrParam.Message)
	}
	actorID = strings.TrimSpace(actorID)
	if actorID == "" {
		actorID = entity.ActorSystem
	}

	rx, err := s.rxRepo.GetByUUID(ctx, prescriptionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return xerr.ErrPrescriptionNotFound
		}
		zlog.Error(err.Error())
		return xerr.ErrServerError
	}

	oldStatus := rx.Status
	// 任何写入前先过状态机，非法流转在这里整体拒绝
	if !entity.IsValidTransition(oldStatus, newStatus) {
		return xerr.NewInvalidTransition(oldStatus, newStatus)
	}

	now := time.Now()
	if err := s.commitTransition(ctx, rx, oldStatus, newStatus, actorID, notes, severityFor(oldStatus, newStatus), now); err != nil {
		return err
	}

	s.afterCommit(rx, oldStatus, newStatus, actorID, notes, now)
	return nil
}

func (s *transitionServiceImpl) ExpireStale(ctx context.Context, olderThan time.Time, limit int) (int, error) {
	list, err := s.rxRepo.ListExpirable(ctx, olderThan, limit)
	if err != nil {
		zlog.Error(err.Error())
		return 0, xerr.ErrServerError
	}

	const notes = "超过保留时限仍未完成审核，系统自动置为过期"
	expired := 0
	for i := range list {
		rx := list[i]
		if !entity.CanExpire(rx.Status) {
			continue
		}
		now := time.Now()
		err := s.commitTransition(ctx, &rx, rx.Status, entity.StatusExpired, entity.ActorSystem, notes, entity.SeverityCritical, now)
		if err != nil {
			// 并发冲突说明别人刚推进了状态，跳过即可
			if !xerr.IsCode(err, xerr.StatusConflictCode) {
				zlog.Warn("处方过期失败",
					zap.String("prescription_id", rx.Uuid),
					zap.Error(err))
			}
			continue
		}
		s.afterCommit(&rx, rx.Status, entity.StatusExpired, entity.ActorSystem, notes, now)
		expired++
	}
	return expired, nil
}

// commitTransition 把状态缓存更新、审计日志、outbox 事件作为一个逻辑单元提交。
// 条件更新未命中说明本次流转基于过期读取，整个事务回滚并报冲突。
func (s *transitionServiceImpl) commitTransition(ctx context.Context, rx *entity.Prescription, oldStatus, newStatus, actorID, notes, severity string, now time.Time) error {
	extra := map[string]interface{}{
		"updated_at": now,
	}
	// 派生字段只写一次，之后的流转不再清除或覆盖
	if newStatus == entity.StatusValidated && rx.VerifiedAt == nil {
		extra["verified_by"] = actorID
		extra["verified_at"] = now
	}
	if newStatus == entity.StatusFulfilled && rx.ProcessedAt == nil {
		extra["processed_at"] = now
	}

	payload, _ := json.Marshal(map[string]interface{}{
		"prescription_id": rx.Uuid,
		"user_id":         rx.UserId,
		"old_status":      oldStatus,
		"new_status":      newStatus,
		"actor_id":        actorID,
		"occurred_at":     now.Format(time.RFC3339),
	})

	err := s.uow.Transaction(func(rxRepo repository.PrescriptionRepository, logRepo repository.TransitionLogRepository, eventRepo repository.PrescriptionEventRepository) error {
		hit, err := rxRepo.UpdateStatusFrom(ctx, rx.Uuid, oldStatus, newStatus, extra)
		if err != nil {
			return err
		}
		if !hit {
			return xerr.NewStatusConflict(oldStatus)
		}

		if err := logRepo.Append(ctx, &entity.TransitionLog{
			PrescriptionId: rx.Uuid,
			OldStatus:      oldStatus,
			NewStatus:      newStatus,
			ActorId:        actorID,
			Notes:          notes,
			Severity:       severity,
			CreatedAt:      now,
		}); err != nil {
			return err
		}

		return eventRepo.Enqueue(ctx, &entity.PrescriptionEvent{
			EventType:      "prescription.status_changed",
			PrescriptionId: rx.Uuid,
			UserId:         rx.UserId,
			PayloadJson:    string(payload),
			DedupKey:       fmt.Sprintf("%s:%s:%d", rx.Uuid, newStatus, now.UnixNano()),
			Status:         entity.EventStatusPending,
			CreatedAt:      now,
			UpdatedAt:      now,
		})
	})
	if err != nil {
		if e, ok := err.(*xerr.CodeError); ok {
			return e
		}
		zlog.Error("状态流转事务失败",
			zap.String("prescription_id", rx.Uuid),
			zap.String("old_status", oldStatus),
			zap.String("new_status", newStatus),
			zap.Error(err))
		return xerr.ErrServerError
	}
	return nil
}

// afterCommit 事务成功后的旁路动作：通知入队、实时广播。
// 这里的任何失败都不回滚已提交的流转
func (s *transitionServiceImpl) afterCommit(rx *entity.Prescription, oldStatus, newStatus, actorID, notes string, now time.Time) {
	if s.notifier != nil {
		s.notifier.Enqueue(notifService.TransitionNotice{
			PrescriptionID: rx.Uuid,
			UserID:         rx.UserId,
			OldStatus:      oldStatus,
			NewStatus:      newStatus,
			OccurredAt:     now,
		})
	}
	if s.broadcaster != nil {
		s.broadcaster.Publish(rx.Uuid, broadcast.Event{
			PrescriptionID: rx.Uuid,
			OldStatus:      oldStatus,
			NewStatus:      newStatus,
			ActorID:        actorID,
			Notes:          notes,
			OccurredAt:     now,
		})
	}
}

func severityFor(oldStatus, newStatus string) string {
	switch {
	case newStatus == entity.StatusRejected:
		return entity.SeverityWarning
	case newStatus == entity.StatusExpired:
		return entity.SeverityCritical
	case oldStatus == entity.StatusValidated && newStatus == entity.StatusReviewRequired:
		return entity.SeverityWarning
	}
	return entity.SeverityInfo
}
