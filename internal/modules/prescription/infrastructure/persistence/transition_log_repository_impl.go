package persistence

import (
	"context"

	"MediLink/internal/modules/prescription/domain/entity"
	"MediLink/internal/modules/prescription/domain/repository"

	"gorm.io/gorm"
)

type transitionLogRepositoryImpl struct {
	db *gorm.DB
}

func NewTransitionLogRepository(db *gorm.DB) repository.TransitionLogRepository {
	return &transitionLogRepositoryImpl{db: db}
}

func (r *transitionLogRepositoryImpl) Append(ctx context.Context, log *entity.TransitionLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *transitionLogRepositoryImpl) ListByPrescription(ctx context.Context, prescriptionID string) ([]entity.TransitionLog, error) {
	var logs []entity.TransitionLog
	err := r.db.WithContext(ctx).
		Where("prescription_id = ?", prescriptionID).
		Order("created_at ASC, id ASC").
		Find(&logs).Error
	return logs, err
}

func (r *transitionLogRepositoryImpl) CountByPrescription(ctx context.Context, prescriptionID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&entity.TransitionLog{}).
		Where("prescription_id = ?", prescriptionID).
		Count(&n).Error
	return n, err
}
