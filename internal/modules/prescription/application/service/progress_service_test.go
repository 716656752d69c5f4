package service

import (
	"context"
	"testing"
	"time"

	"MediLink/internal/modules/prescription/domain/entity"
	"MediLink/pkg/xerr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testRemaining = map[string]time.Duration{
	entity.StatusUploaded:       24 * time.Hour,
	entity.StatusProcessing:     12 * time.Hour,
	entity.StatusReviewRequired: 6 * time.Hour,
	entity.StatusValidated:      2 * time.Hour,
}

func TestGetProgressOnForwardPath(t *testing.T) {
	rxRepo := newFakeRxRepo()
	logRepo := &fakeLogRepo{}
	svc := NewProgressService(rxRepo, logRepo, testRemaining)

	rxRepo.put(&entity.Prescription{
		Uuid:      "RX200",
		Status:    entity.StatusValidated,
		CreatedAt: time.Now(),
	})

	got, err := svc.GetProgress(context.Background(), "RX200")
	require.NoError(t, err)
	assert.Equal(t, entity.StatusValidated, got.Status)
	assert.Equal(t, 4, got.StepIndex)
	assert.Equal(t, 5, got.TotalSteps)
	assert.Equal(t, 80, got.Percentage)
	assert.NotEmpty(t, got.NextAction)

	eta, err := time.Parse(time.RFC3339, got.EstimatedCompletion)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(2*time.Hour), eta, time.Minute)
}

func TestGetProgressIsMonotonicAlongForwardPath(t *testing.T) {
	rxRepo := newFakeRxRepo()
	logRepo := &fakeLogRepo{}
	svc := NewProgressService(rxRepo, logRepo, testRemaining)

	prev := 0
	for _, st := range entity.ForwardPath {
		rxRepo.put(&entity.Prescription{Uuid: "RX201", Status: st, CreatedAt: time.Now()})
		got, err := svc.GetProgress(context.Background(), "RX201")
		require.NoError(t, err)
		assert.Greater(t, got.Percentage, prev, "status %s", st)
		prev = got.Percentage
	}
	assert.Equal(t, 100, prev)
}

func TestGetProgressFulfilledHasNoEta(t *testing.T) {
	rxRepo := newFakeRxRepo()
	svc := NewProgressService(rxRepo, &fakeLogRepo{}, testRemaining)

	rxRepo.put(&entity.Prescription{Uuid: "RX202", Status: entity.StatusFulfilled, CreatedAt: time.Now()})

	got, err := svc.GetProgress(context.Background(), "RX202")
	require.NoError(t, err)
	assert.Equal(t, 100, got.Percentage)
	assert.Empty(t, got.EstimatedCompletion)
}

func TestGetProgressRejectedFreezesAtReachedStep(t *testing.T) {
	rxRepo := newFakeRxRepo()
	logRepo := &fakeLogRepo{}
	svc := NewProgressService(rxRepo, logRepo, testRemaining)

	created := time.Date(2026, 8, 1, 8, 0, 0, 0, time.UTC)
	rxRepo.put(&entity.Prescription{Uuid: "RX203", Status: entity.StatusRejected, CreatedAt: created})
	appendLog(logRepo, "RX203", entity.StatusUploaded, entity.StatusProcessing, entity.ActorSystem, created.Add(time.Hour))
	appendLog(logRepo, "RX203", entity.StatusProcessing, entity.StatusReviewRequired, entity.ActorSystem, created.Add(2*time.Hour))
	appendLog(logRepo, "RX203", entity.StatusReviewRequired, entity.StatusRejected, "ph-1", created.Add(3*time.Hour))

	got, err := svc.GetProgress(context.Background(), "RX203")
	require.NoError(t, err)
	assert.Equal(t, entity.StatusRejected, got.Status)
	// 冻结在进入 rejected 前到达的第 3 步
	assert.Equal(t, 3, got.StepIndex)
	assert.Equal(t, 60, got.Percentage)
	assert.Empty(t, got.EstimatedCompletion)
}

func TestGetProgressExpiredWithoutAnyLogs(t *testing.T) {
	rxRepo := newFakeRxRepo()
	svc := NewProgressService(rxRepo, &fakeLogRepo{}, testRemaining)

	rxRepo.put(&entity.Prescription{Uuid: "RX204", Status: entity.StatusExpired, CreatedAt: time.Now()})

	got, err := svc.GetProgress(context.Background(), "RX204")
	require.NoError(t, err)
	// 从未离开初始状态就被吸收时按第 1 步处理
	assert.Equal(t, 1, got.StepIndex)
	assert.Equal(t, 20, got.Percentage)
	assert.Empty(t, got.EstimatedCompletion)
}

func TestGetProgressNotFound(t *testing.T) {
	svc := NewProgressService(newFakeRxRepo(), &fakeLogRepo{}, testRemaining)

	_, err := svc.GetProgress(context.Background(), "RX404")
	assert.ErrorIs(t, err, xerr.ErrPrescriptionNotFound)
}
