package repository

import (
	"MediLink/internal/modules/prescription/domain/entity"
	"context"
)

// TransitionLogRepository 流转审计日志仓储，只追加不修改
type TransitionLogRepository interface {
	// Append 追加一条流转日志
	Append(ctx context.Context, log *entity.TransitionLog) error

	// ListByPrescription 按时间升序返回处方全部流转日志
	ListByPrescription(ctx context.Context, prescriptionID string) ([]entity.TransitionLog, error)

	// CountByPrescription 日志条数
	CountByPrescription(ctx context.Context, prescriptionID string) (int64, error)
}
