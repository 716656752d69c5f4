package service

import (
	"context"
	"sync"
	"time"

	notifService "MediLink/internal/modules/notification/application/service"
	"MediLink/internal/modules/prescription/domain/entity"
	"MediLink/internal/modules/prescription/domain/repository"

	"gorm.io/gorm"
)

// 服务层测试共用的内存仓储。UpdateStatusFrom 在锁内做比较更新，
// 和数据库条件 UPDATE 一样保证并发下至多一个写入者命中
type fakeRxRepo struct {
	mu   sync.Mutex
	byID map[string]*entity.Prescription
}

func newFakeRxRepo() *fakeRxRepo {
	return &fakeRxRepo{byID: make(map[string]*entity.Prescription)}
}

func (r *fakeRxRepo) put(rx *entity.Prescription) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *rx
	r.byID[rx.Uuid] = &cp
}

func (r *fakeRxRepo) Create(ctx context.Context, rx *entity.Prescription) error {
	r.put(rx)
	return nil
}

func (r *fakeRxRepo) GetByUUID(ctx context.Context, uuid string) (*entity.Prescription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rx, ok := r.byID[uuid]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *rx
	return &cp, nil
}

func (r *fakeRxRepo) ListByUser(ctx context.Context, userID string, page, pageSize int) ([]entity.Prescription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.Prescription
	for _, rx := range r.byID {
		if rx.UserId == userID {
			out = append(out, *rx)
		}
	}
	return out, nil
}

func (r *fakeRxRepo) UpdateStatusFrom(ctx context.Context, uuid, oldStatus, newStatus string, extra map[string]interface{}) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rx, ok := r.byID[uuid]
	if !ok || rx.Status != oldStatus {
		return false, nil
	}
	rx.Status = newStatus
	for k, v := range extra {
		switch k {
		case "updated_at":
			rx.UpdatedAt = v.(time.Time)
		case "verified_by":
			rx.VerifiedBy = v.(string)
		case "verified_at":
			t := v.(time.Time)
			rx.VerifiedAt = &t
		case "processed_at":
			t := v.(time.Time)
			rx.ProcessedAt = &t
		}
	}
	return true, nil
}

func (r *fakeRxRepo) ListExpirable(ctx context.Context, olderThan time.Time, limit int) ([]entity.Prescription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.Prescription
	for _, rx := range r.byID {
		if entity.CanExpire(rx.Status) && rx.CreatedAt.Before(olderThan) {
			out = append(out, *rx)
			if len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}

type fakeLogRepo struct {
	mu   sync.Mutex
	logs []entity.TransitionLog
}

func (r *fakeLogRepo) Append(ctx context.Context, log *entity.TransitionLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	log.Id = int64(len(r.logs) + 1)
	r.logs = append(r.logs, *log)
	return nil
}

func (r *fakeLogRepo) ListByPrescription(ctx context.Context, prescriptionID string) ([]entity.TransitionLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.TransitionLog
	for _, lg := range r.logs {
		if lg.PrescriptionId == prescriptionID {
			out = append(out, lg)
		}
	}
	return out, nil
}

func (r *fakeLogRepo) CountByPrescription(ctx context.Context, prescriptionID string) (int64, error) {
	list, _ := r.ListByPrescription(ctx, prescriptionID)
	return int64(len(list)), nil
}

type fakeEventRepo struct {
	mu     sync.Mutex
	events []entity.PrescriptionEvent
}

func (r *fakeEventRepo) Enqueue(ctx context.Context, ev *entity.PrescriptionEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ev.Id = int64(len(r.events) + 1)
	r.events = append(r.events, *ev)
	return nil
}

func (r *fakeEventRepo) ClaimForPublish(ctx context.Context, now time.Time, limit int) ([]entity.PrescriptionEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.PrescriptionEvent
	for _, ev := range r.events {
		if ev.Status == entity.EventStatusPending {
			out = append(out, ev)
			if len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}

func (r *fakeEventRepo) MarkPublished(ctx context.Context, id int64, publishedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.events {
		if r.events[i].Id == id {
			r.events[i].Status = entity.EventStatusPublished
		}
	}
	return nil
}

func (r *fakeEventRepo) MarkPublishFailed(ctx context.Context, id int64, nextRetryAt time.Time, errMsg string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.events {
		if r.events[i].Id == id {
			r.events[i].RetryCount++
			r.events[i].LastError = errMsg
		}
	}
	return nil
}

// fakeUow 直接在当前 goroutine 里执行事务体。条件更新是事务体内第一个
// 写操作，未命中即整体失败，后续写不会发生，与真实回滚语义一致
type fakeUow struct {
	rxRepo    *fakeRxRepo
	logRepo   *fakeLogRepo
	eventRepo *fakeEventRepo
}

func (u *fakeUow) Transaction(fn func(rxRepo repository.PrescriptionRepository, logRepo repository.TransitionLogRepository, eventRepo repository.PrescriptionEventRepository) error) error {
	return fn(u.rxRepo, u.logRepo, u.eventRepo)
}

type fakeNotifier struct {
	mu      sync.Mutex
	notices []notifService.TransitionNotice
}

func (n *fakeNotifier) Enqueue(notice notifService.TransitionNotice) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notices = append(n.notices, notice)
	return true
}

func (n *fakeNotifier) all() []notifService.TransitionNotice {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]notifService.TransitionNotice, len(n.notices))
	copy(out, n.notices)
	return out
}
