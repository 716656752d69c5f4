package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"MediLink/internal/modules/notification/domain/entity"
	"MediLink/internal/modules/notification/domain/repository"

	"gorm.io/gorm"
)

type fakeNotifRepo struct {
	mu     sync.Mutex
	notifs []entity.Notification
}

func (r *fakeNotifRepo) Create(ctx context.Context, notif *entity.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	notif.Id = int64(len(r.notifs) + 1)
	r.notifs = append(r.notifs, *notif)
	return nil
}

func (r *fakeNotifRepo) ListByUser(ctx context.Context, userID string, filter repository.ListFilter, now time.Time) ([]entity.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.Notification
	for i := len(r.notifs) - 1; i >= 0; i-- {
		n := r.notifs[i]
		if n.UserId != userID {
			continue
		}
		if n.ExpiresAt != nil && !n.ExpiresAt.After(now) {
			continue
		}
		if filter.UnreadOnly && n.IsRead {
			continue
		}
		if filter.Type != "" && n.Type != filter.Type {
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

func (r *fakeNotifRepo) MarkRead(ctx context.Context, uuid, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.notifs {
		if r.notifs[i].Uuid == uuid && r.notifs[i].UserId == userID {
			r.notifs[i].IsRead = true
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeNotifRepo) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for i := range r.notifs {
		if r.notifs[i].UserId == userID && !r.notifs[i].IsRead {
			r.notifs[i].IsRead = true
			n++
		}
	}
	return n, nil
}

func (r *fakeNotifRepo) CountUnread(ctx context.Context, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for i := range r.notifs {
		if r.notifs[i].UserId == userID && !r.notifs[i].IsRead {
			n++
		}
	}
	return n, nil
}

func (r *fakeNotifRepo) CountByUser(ctx context.Context, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for i := range r.notifs {
		if r.notifs[i].UserId == userID {
			n++
		}
	}
	return n, nil
}

func (r *fakeNotifRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.notifs[:0]
	var n int64
	for _, notif := range r.notifs {
		if notif.ExpiresAt != nil && !notif.ExpiresAt.After(now) {
			n++
			continue
		}
		kept = append(kept, notif)
	}
	r.notifs = kept
	return n, nil
}

type fakePrefRepo struct {
	mu     sync.Mutex
	byUser map[string]*entity.NotificationPreference

	getErr error
}

func newFakePrefRepo() *fakePrefRepo {
	return &fakePrefRepo{byUser: make(map[string]*entity.NotificationPreference)}
}

func (r *fakePrefRepo) GetByUser(ctx context.Context, userID string) (*entity.NotificationPreference, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return nil, r.getErr
	}
	pref, ok := r.byUser[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *pref
	return &cp, nil
}

func (r *fakePrefRepo) Create(ctx context.Context, pref *entity.NotificationPreference) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *pref
	r.byUser[pref.UserId] = &cp
	return nil
}

func (r *fakePrefRepo) Update(ctx context.Context, pref *entity.NotificationPreference) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *pref
	r.byUser[pref.UserId] = &cp
	return nil
}

// fakeSender 记录投递请求，可配置为固定失败
type fakeSender struct {
	name string
	fail bool

	mu    sync.Mutex
	sends []string
}

func (s *fakeSender) Name() string { return s.name }

func (s *fakeSender) Send(ctx context.Context, userID, title, body string, payload entity.Payload) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errors.New("channel unavailable")
	}
	s.sends = append(s.sends, userID+":"+payload.PrescriptionId)
	return nil
}

func (s *fakeSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sends)
}
