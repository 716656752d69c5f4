package persistence

import (
	rxRepository "MediLink/internal/modules/prescription/domain/repository"

	"gorm.io/gorm"
)

type trackingUnitOfWorkImpl struct {
	db *gorm.DB
}

func NewTrackingUnitOfWork(db *gorm.DB) rxRepository.TrackingUnitOfWork {
	return &trackingUnitOfWorkImpl{db: db}
}

func (u *trackingUnitOfWorkImpl) Transaction(fn func(rxRepo rxRepository.PrescriptionRepository, logRepo rxRepository.TransitionLogRepository, eventRepo rxRepository.PrescriptionEventRepository) error) error {
	return u.db.Transaction(func(tx *gorm.DB) error {
		rxRepo := NewPrescriptionRepository(tx)
		logRepo := NewTransitionLogRepository(tx)
		eventRepo := NewPrescriptionEventRepository(tx)
		return fn(rxRepo, logRepo, eventRepo)
	})
}
