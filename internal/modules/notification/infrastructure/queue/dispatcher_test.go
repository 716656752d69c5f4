package queue

import (
	"context"
	"sync"
	"testing"
	"time"

	"MediLink/internal/modules/notification/application/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifySvc struct {
	mu      sync.Mutex
	block   chan struct{}
	notices []service.TransitionNotice
}

func (s *recordingNotifySvc) OnTransition(ctx context.Context, notice service.TransitionNotice) {
	if s.block != nil {
		<-s.block
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notices = append(s.notices, notice)
}

func (s *recordingNotifySvc) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.notices)
}

func TestDispatcherDeliversAllEnqueued(t *testing.T) {
	svc := &recordingNotifySvc{}
	d := NewDispatcher(svc, 2, 16)
	d.Start()

	for i := 0; i < 10; i++ {
		require.True(t, d.Enqueue(service.TransitionNotice{PrescriptionID: "RX600", NewStatus: "processing"}))
	}
	d.Stop()

	assert.Equal(t, 10, svc.count())
}

func TestDispatcherEnqueueNeverBlocks(t *testing.T) {
	svc := &recordingNotifySvc{block: make(chan struct{})}
	d := NewDispatcher(svc, 1, 2)
	d.Start()

	// 1 条被 worker 拿走后阻塞，2 条占满队列，之后的全部被丢弃
	accepted := 0
	for i := 0; i < 10; i++ {
		if d.Enqueue(service.TransitionNotice{PrescriptionID: "RX601"}) {
			accepted++
		}
	}
	assert.LessOrEqual(t, accepted, 3)
	assert.GreaterOrEqual(t, accepted, 2)

	close(svc.block)
	d.Stop()
	assert.Equal(t, accepted, svc.count())
}

func TestDispatcherStopWaitsForQueueDrain(t *testing.T) {
	svc := &recordingNotifySvc{}
	d := NewDispatcher(svc, 4, 64)
	d.Start()

	for i := 0; i < 50; i++ {
		d.Enqueue(service.TransitionNotice{PrescriptionID: "RX602"})
	}

	done := make(chan struct{})
	go func() {
		d.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("dispatcher did not drain in time")
	}
	assert.Equal(t, 50, svc.count())

	// 重复 Stop 幂等
	d.Stop()
}

func TestDispatcherStartIdempotent(t *testing.T) {
	svc := &recordingNotifySvc{}
	d := NewDispatcher(svc, 2, 8)
	d.Start()
	d.Start()

	require.True(t, d.Enqueue(service.TransitionNotice{PrescriptionID: "RX603"}))
	d.Stop()
	assert.Equal(t, 1, svc.count())
}
