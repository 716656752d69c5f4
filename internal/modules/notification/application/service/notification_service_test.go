package service

import (
	"context"
	"testing"
	"time"

	notifRequest "MediLink/internal/modules/notification/application/dto/request"
	"MediLink/internal/modules/notification/domain/entity"
	"MediLink/pkg/xerr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedNotif(notifRepo *fakeNotifRepo, uuid, userID, typ string, isRead bool, expiresAt *time.Time) {
	_ = notifRepo.Create(context.Background(), &entity.Notification{
		Uuid:      uuid,
		UserId:    userID,
		Type:      typ,
		Title:     "标题",
		Body:      "内容",
		IsRead:    isRead,
		Priority:  entity.PriorityMedium,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	})
}

func TestListNotifications(t *testing.T) {
	notifRepo := &fakeNotifRepo{}
	svc := NewNotificationService(notifRepo, newFakePrefRepo())

	future := time.Now().Add(time.Hour)
	past := time.Now().Add(-time.Hour)
	seedNotif(notifRepo, "NT001", "user-1", entity.TypeStatusChange, false, &future)
	seedNotif(notifRepo, "NT002", "user-1", entity.TypeOrderUpdate, true, &future)
	seedNotif(notifRepo, "NT003", "user-1", entity.TypeStatusChange, false, &past)
	seedNotif(notifRepo, "NT004", "user-2", entity.TypeStatusChange, false, &future)

	// 过期的 NT003 和别人的 NT004 都不可见
	items, err := svc.ListNotifications(context.Background(), "user-1", notifRequest.ListNotificationsRequest{})
	require.NoError(t, err)
	assert.Len(t, items, 2)

	items, err = svc.ListNotifications(context.Background(), "user-1", notifRequest.ListNotificationsRequest{UnreadOnly: true})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "NT001", items[0].Uuid)

	items, err = svc.ListNotifications(context.Background(), "user-1", notifRequest.ListNotificationsRequest{Type: entity.TypeOrderUpdate})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "NT002", items[0].Uuid)
}

func TestMarkRead(t *testing.T) {
	notifRepo := &fakeNotifRepo{}
	svc := NewNotificationService(notifRepo, newFakePrefRepo())
	seedNotif(notifRepo, "NT010", "user-1", entity.TypeStatusChange, false, nil)

	require.NoError(t, svc.MarkRead(context.Background(), "user-1", "NT010"))
	n, _ := notifRepo.CountUnread(context.Background(), "user-1")
	assert.Zero(t, n)

	// 重复置读幂等
	assert.NoError(t, svc.MarkRead(context.Background(), "user-1", "NT010"))
}

func TestMarkReadRejectsForeignNotification(t *testing.T) {
	notifRepo := &fakeNotifRepo{}
	svc := NewNotificationService(notifRepo, newFakePrefRepo())
	seedNotif(notifRepo, "NT011", "user-2", entity.TypeStatusChange, false, nil)

	err := svc.MarkRead(context.Background(), "user-1", "NT011")
	assert.ErrorIs(t, err, xerr.ErrNotificationNotFound)
}

func TestMarkAllRead(t *testing.T) {
	notifRepo := &fakeNotifRepo{}
	svc := NewNotificationService(notifRepo, newFakePrefRepo())
	seedNotif(notifRepo, "NT020", "user-1", entity.TypeStatusChange, false, nil)
	seedNotif(notifRepo, "NT021", "user-1", entity.TypeAlert, false, nil)
	seedNotif(notifRepo, "NT022", "user-2", entity.TypeStatusChange, false, nil)

	require.NoError(t, svc.MarkAllRead(context.Background(), "user-1"))

	n, _ := notifRepo.CountUnread(context.Background(), "user-1")
	assert.Zero(t, n)
	n, _ = notifRepo.CountUnread(context.Background(), "user-2")
	assert.Equal(t, int64(1), n)
}

func TestUnreadCountFallsBackToRepo(t *testing.T) {
	notifRepo := &fakeNotifRepo{}
	svc := NewNotificationService(notifRepo, newFakePrefRepo())
	seedNotif(notifRepo, "NT030", "user-1", entity.TypeStatusChange, false, nil)
	seedNotif(notifRepo, "NT031", "user-1", entity.TypeStatusChange, true, nil)

	// 测试环境没有 Redis 连接，直接回源数据库
	n, err := svc.UnreadCount(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestGetPreferencesCreatesDefault(t *testing.T) {
	prefRepo := newFakePrefRepo()
	svc := NewNotificationService(&fakeNotifRepo{}, prefRepo)

	item, err := svc.GetPreferences(context.Background(), "user-1")
	require.NoError(t, err)
	assert.True(t, item.PushEnabled)
	assert.True(t, item.SystemAlerts)

	_, err = prefRepo.GetByUser(context.Background(), "user-1")
	assert.NoError(t, err)
}

func TestUpdatePreferencesPatchesOnlyGivenFields(t *testing.T) {
	prefRepo := newFakePrefRepo()
	svc := NewNotificationService(&fakeNotifRepo{}, prefRepo)

	off := false
	item, err := svc.UpdatePreferences(context.Background(), "user-1", notifRequest.UpdatePreferencesRequest{
		EmailEnabled: &off,
		Promotional:  &off,
	})
	require.NoError(t, err)
	assert.False(t, item.EmailEnabled)
	assert.False(t, item.Promotional)
	assert.True(t, item.PushEnabled)
	assert.True(t, item.StatusUpdates)

	pref, err := prefRepo.GetByUser(context.Background(), "user-1")
	require.NoError(t, err)
	assert.False(t, pref.EmailEnabled)
	assert.True(t, pref.SmsEnabled)
}
