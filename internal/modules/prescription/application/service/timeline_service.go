package service

import (
	"context"
	"errors"
	"time"

	rxRespond "MediLink/internal/modules/prescription/application/dto/respond"
	"MediLink/internal/modules/prescription/domain/entity"
	"MediLink/internal/modules/prescription/domain/repository"
	"MediLink/pkg/xerr"
	"MediLink/pkg/zlog"

	"gorm.io/gorm"
)

// TimelineService 从审计日志重建时间线
type TimelineService interface {
	GetTimeline(ctx context.Context, prescriptionID string) ([]rxRespond.TimelineItem, error)
}

type timelineServiceImpl struct {
	rxRepo  repository.PrescriptionRepository
	logRepo repository.TransitionLogRepository
}

func NewTimelineService(
	rxRepo repository.PrescriptionRepository,
	logRepo repository.TransitionLogRepository,
) TimelineService {
	return &timelineServiceImpl{
		rxRepo:  rxRepo,
		logRepo: logRepo,
	}
}

// timelinePoint 折叠后的单状态节点
type timelinePoint struct {
	status  string
	at      time.Time
	actorID string
	notes   string
}

func (s *timelineServiceImpl) GetTimeline(ctx context.Context, prescriptionID string) ([]rxRespond.TimelineItem, error) {
	if prescriptionID == "" {
		return nil, xerr.New(xerr.BadRequest, xerr.ErrParam.Message)
	}

	rx, err := s.rxRepo.GetByUUID(ctx, prescriptionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, xerr.ErrPrescriptionNotFound
		}
		zlog.Error(err.Error())
		return nil, xerr.ErrServerError
	}

	logs, err := s.logRepo.ListByPrescription(ctx, prescriptionID)
	if err != nil {
		zlog.Error(err.Error())
		return nil, xerr.ErrServerError
	}

	// 成功路径上每个状态只取首次出现；反复进入（如退回后再审）折叠到最早
	// 一次，原始日志仍保留全部记录供审计
	first := make(map[string]timelinePoint, entity.TotalSteps)
	for _, lg := range logs {
		if entity.StepIndex(lg.NewStatus) == 0 {
			continue
		}
		if _, seen := first[lg.NewStatus]; seen {
			continue
		}
		first[lg.NewStatus] = timelinePoint{
			status:  lg.NewStatus,
			at:      lg.CreatedAt,
			actorID: lg.ActorId,
			notes:   lg.Notes,
		}
	}

	// uploaded 没有显式日志时从创建时间合成
	if _, ok := first[entity.StatusUploaded]; !ok {
		first[entity.StatusUploaded] = timelinePoint{
			status: entity.StatusUploaded,
			at:     rx.CreatedAt,
		}
	}

	// 按时间升序排列（允许跳步时按时间排序保证时长非负）
	points := make([]timelinePoint, 0, len(first))
	for _, st := range entity.ForwardPath {
		if p, ok := first[st]; ok {
			points = append(points, p)
		}
	}
	for i := 1; i < len(points); i++ {
		for j := i; j > 0 && points[j].at.Before(points[j-1].at); j-- {
			points[j], points[j-1] = points[j-1], points[j]
		}
	}

	items := make([]rxRespond.TimelineItem, 0, len(points))
	for i, p := range points {
		item := rxRespond.TimelineItem{
			Status:    p.status,
			Timestamp: p.at.Format(time.RFC3339),
			ActorId:   p.actorID,
			Notes:     p.notes,
			// 当前活跃状态不在重建列表里时（吸收态、回退），没有条目是 current
			IsCurrent: p.status == rx.Status,
		}
		if i+1 < len(points) {
			minutes := int64(points[i+1].at.Sub(p.at) / time.Minute)
			item.DurationMinutes = &minutes
		}
		items = append(items, item)
	}
	return items, nil
}
