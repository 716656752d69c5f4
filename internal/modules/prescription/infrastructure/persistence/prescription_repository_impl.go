package persistence

import (
	"context"
	"time"

	"MediLink/internal/modules/prescription/domain/entity"
	"MediLink/internal/modules/prescription/domain/repository"

	"gorm.io/gorm"
)

type prescriptionRepositoryImpl struct {
	db *gorm.DB
}

func NewPrescriptionRepository(db *gorm.DB) repository.PrescriptionRepository {
	return &prescriptionRepositoryImpl{db: db}
}

func (r *prescriptionRepositoryImpl) Create(ctx context.Context, rx *entity.Prescription) error {
	return r.db.WithContext(ctx).Create(rx).Error
}

func (r *prescriptionRepositoryImpl) GetByUUID(ctx context.Context, uuid string) (*entity.Prescription, error) {
	var rx entity.Prescription
	if err := r.db.WithContext(ctx).Where("uuid = ?", uuid).Take(&rx).Error; err != nil {
		return nil, err
	}
	return &rx, nil
}

func (r *prescriptionRepositoryImpl) ListByUser(ctx context.Context, userID string, page, pageSize int) ([]entity.Prescription, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}

	var list []entity.Prescription
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&list).Error
	return list, err
}

// UpdateStatusFrom 条件更新。WHERE 带上旧状态，数据库层面保证同一处方的
// 并发流转至多一个命中，未命中即上层的乐观冲突
func (r *prescriptionRepositoryImpl) UpdateStatusFrom(ctx context.Context, uuid, oldStatus, newStatus string, extra map[string]interface{}) (bool, error) {
	updates := map[string]interface{}{"status": newStatus}
	for k, v := range extra {
		updates[k] = v
	}

	res := r.db.WithContext(ctx).Model(&entity.Prescription{}).
		Where("uuid = ? AND status = ?", uuid, oldStatus).
		Updates(updates)
	return res.RowsAffected > 0, res.Error
}

func (r *prescriptionRepositoryImpl) ListExpirable(ctx context.Context, olderThan time.Time, limit int) ([]entity.Prescription, error) {
	if limit <= 0 {
		limit = 100
	}

	var list []entity.Prescription
	err := r.db.WithContext(ctx).
		Where("status IN ?", []string{entity.StatusUploaded, entity.StatusProcessing, entity.StatusReviewRequired}).
		Where("created_at < ?", olderThan).
		Order("created_at ASC").
		Limit(limit).
		Find(&list).Error
	return list, err
}
