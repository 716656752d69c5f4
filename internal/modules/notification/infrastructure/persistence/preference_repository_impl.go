package persistence

import (
	"context"

	"MediLink/internal/modules/notification/domain/entity"
	"MediLink/internal/modules/notification/domain/repository"

	"gorm.io/gorm"
)

type preferenceRepositoryImpl struct {
	db *gorm.DB
}

func NewPreferenceRepository(db *gorm.DB) repository.PreferenceRepository {
	return &preferenceRepositoryImpl{db: db}
}

func (r *preferenceRepositoryImpl) GetByUser(ctx context.Context, userID string) (*entity.NotificationPreference, error) {
	var pref entity.NotificationPreference
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Take(&pref).Error; err != nil {
		return nil, err
	}
	return &pref, nil
}

func (r *preferenceRepositoryImpl) Create(ctx context.Context, pref *entity.NotificationPreference) error {
	return r.db.WithContext(ctx).Create(pref).Error
}

func (r *preferenceRepositoryImpl) Update(ctx context.Context, pref *entity.NotificationPreference) error {
	return r.db.WithContext(ctx).Save(pref).Error
}
