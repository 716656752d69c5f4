package service

import (
	"context"
	"errors"
	"time"

	"MediLink/internal/config"
	rxRespond "MediLink/internal/modules/prescription/application/dto/respond"
	"MediLink/internal/modules/prescription/domain/entity"
	"MediLink/internal/modules/prescription/domain/repository"
	"MediLink/pkg/xerr"
	"MediLink/pkg/zlog"

	"gorm.io/gorm"
)

// ProgressService 把当前状态投影成步骤 / 百分比 / 预计完成时间
type ProgressService interface {
	GetProgress(ctx context.Context, prescriptionID string) (*rxRespond.ProgressRespond, error)
}

type progressServiceImpl struct {
	rxRepo  repository.PrescriptionRepository
	logRepo repository.TransitionLogRepository

	// 各状态剩余小时数查表。经验值而非 SLA，通过配置调整
	remaining map[string]time.Duration
}

func NewProgressService(
	rxRepo repository.PrescriptionRepository,
	logRepo repository.TransitionLogRepository,
	remaining map[string]time.Duration,
) ProgressService {
	return &progressServiceImpl{
		rxRepo:    rxRepo,
		logRepo:   logRepo,
		remaining: remaining,
	}
}

// RemainingFromConfig 从配置构造 ETA 查表
func RemainingFromConfig(conf *config.Config) map[string]time.Duration {
	t := conf.TrackingConfig
	return map[string]time.Duration{
		entity.StatusUploaded:       time.Duration(t.RemainingHoursUploaded) * time.Hour,
		entity.StatusProcessing:     time.Duration(t.RemainingHoursProcessing) * time.Hour,
		entity.StatusReviewRequired: time.Duration(t.RemainingHoursReviewRequired) * time.Hour,
		entity.StatusValidated:      time.Duration(t.RemainingHoursValidated) * time.Hour,
	}
}

func (s *progressServiceImpl) GetProgress(ctx context.Context, prescriptionID string) (*rxRespond.ProgressRespond, error) {
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

	step := entity.StepIndex(rx.Status)
	if step == 0 {
		// 吸收态：冻结在进入吸收态之前到达的步骤
		step, err = s.stepBeforeAbsorb(ctx, prescriptionID)
		if err != nil {
			return nil, err
		}
	}

	resp := &rxRespond.ProgressRespond{
		PrescriptionId: rx.Uuid,
		Status:         rx.Status,
		StepIndex:      step,
		TotalSteps:     entity.TotalSteps,
		Percentage:     step * 100 / entity.TotalSteps,
		NextAction:     entity.NextAction(rx.Status),
	}

	// 终态不再给预计完成时间
	if d, ok := s.remaining[rx.Status]; ok && !entity.IsTerminal(rx.Status) {
		resp.EstimatedCompletion = time.Now().Add(d).Format(time.RFC3339)
	}
	return resp, nil
}

// stepBeforeAbsorb 扫描日志，找到进入吸收态前最后到达的成功路径步骤。
// 从未离开初始状态就被吸收时按第 1 步处理
func (s *progressServiceImpl) stepBeforeAbsorb(ctx context.Context, prescriptionID string) (int, error) {
	logs, err := s.logRepo.ListByPrescription(ctx, prescriptionID)
	if err != nil {
		zlog.Error(err.Error())
		return 0, xerr.ErrServerError
	}

	step := 1
	for _, lg := range logs {
		if idx := entity.StepIndex(lg.NewStatus); idx > 0 {
			step = idx
		}
	}
	return step, nil
}
