package service

import (
	"context"
	"errors"
	"strings"
	"time"

	rxRespond "MediLink/internal/modules/prescription/application/dto/respond"
	"MediLink/internal/modules/prescription/domain/entity"
	"MediLink/internal/modules/prescription/domain/repository"
	"MediLink/pkg/util"
	"MediLink/pkg/xerr"
	"MediLink/pkg/zlog"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PrescriptionService 处方登记与查询
type PrescriptionService interface {
	// CreatePrescription 登记处方，初始状态 uploaded，返回业务 ID
	CreatePrescription(ctx context.Context, userID, imageUrl, orderID string) (string, error)

	// GetPrescription 处方详情
	GetPrescription(ctx context.Context, prescriptionID string) (*rxRespond.PrescriptionItem, error)

	// ListByUser 用户处方列表，按创建时间倒序
	ListByUser(ctx context.Context, userID string, page, pageSize int) ([]rxRespond.PrescriptionItem, error)
}

type prescriptionServiceImpl struct {
	rxRepo repository.PrescriptionRepository
}

func NewPrescriptionService(rxRepo repository.PrescriptionRepository) PrescriptionService {
	return &prescriptionServiceImpl{rxRepo: rxRepo}
}

func (s *prescriptionServiceImpl) CreatePrescription(ctx context.Context, userID, imageUrl, orderID string) (string, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return "", xerr.New(xerr.BadRequest, xerr.ErrParam.Message)
	}

	now := time.Now()
	rx := &entity.Prescription{
		Uuid:      util.GeneratePrescriptionID(),
		UserId:    userID,
		OrderId:   orderID,
		ImageUrl:  imageUrl,
		Status:    entity.StatusUploaded,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.rxRepo.Create(ctx, rx); err != nil {
		zlog.Error("create prescription failed", zap.String("user_id", userID), zap.Error(err))
		return "", xerr.ErrServerError
	}

	zlog.Info("prescription created",
		zap.String("prescription_id", rx.Uuid),
		zap.String("user_id", userID))
	return rx.Uuid, nil
}

func (s *prescriptionServiceImpl) GetPrescription(ctx context.Context, prescriptionID string) (*rxRespond.PrescriptionItem, error) {
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

	item := toPrescriptionItem(rx)
	return &item, nil
}

func (s *prescriptionServiceImpl) ListByUser(ctx context.Context, userID string, page, pageSize int) ([]rxRespond.PrescriptionItem, error) {
	if userID == "" {
		return nil, xerr.New(xerr.BadRequest, xerr.ErrParam.Message)
	}
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}

	list, err := s.rxRepo.ListByUser(ctx, userID, page, pageSize)
	if err != nil {
		zlog.Error(err.Error())
		return nil, xerr.ErrServerError
	}

	items := make([]rxRespond.PrescriptionItem, 0, len(list))
	for i := range list {
		items = append(items, toPrescriptionItem(&list[i]))
	}
	return items, nil
}

func toPrescriptionItem(rx *entity.Prescription) rxRespond.PrescriptionItem {
	item := rxRespond.PrescriptionItem{
		Uuid:       rx.Uuid,
		UserId:     rx.UserId,
		OrderId:    rx.OrderId,
		ImageUrl:   rx.ImageUrl,
		Status:     rx.Status,
		VerifiedBy: rx.VerifiedBy,
		CreatedAt:  rx.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  rx.UpdatedAt.Format(time.RFC3339),
	}
	if rx.VerifiedAt != nil {
		item.VerifiedAt = rx.VerifiedAt.Format(time.RFC3339)
	}
	if rx.ProcessedAt != nil {
		item.ProcessedAt = rx.ProcessedAt.Format(time.RFC3339)
	}
	return item
}
