package broadcast

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestPublishDeliversToAllSubscribers(t *testing.T) {
	b := NewBroadcaster()

	var mu sync.Mutex
	got1 := make([]Event, 0)
	got2 := make([]Event, 0)

	unsub1 := b.Subscribe("RX1", func(ev Event) {
		mu.Lock()
		got1 = append(got1, ev)
		mu.Unlock()
	})
	defer unsub1()
	unsub2 := b.Subscribe("RX1", func(ev Event) {
		mu.Lock()
		got2 = append(got2, ev)
		mu.Unlock()
	})
	defer unsub2()

	b.Publish("RX1", Event{PrescriptionID: "RX1", NewStatus: "processing"})
	b.Publish("RX1", Event{PrescriptionID: "RX1", NewStatus: "review_required"})

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got1) == 2 && len(got2) == 2
	})

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "processing", got1[0].NewStatus)
	assert.Equal(t, "review_required", got1[1].NewStatus)
	assert.Equal(t, "processing", got2[0].NewStatus)
}

func TestPublishIsScopedToEntity(t *testing.T) {
	b := NewBroadcaster()

	var count int64
	unsub := b.Subscribe("RX1", func(Event) { atomic.AddInt64(&count, 1) })
	defer unsub()

	b.Publish("RX2", Event{PrescriptionID: "RX2", NewStatus: "processing"})

	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, atomic.LoadInt64(&count))
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	b := NewBroadcaster()

	var count int64
	unsub := b.Subscribe("RX1", func(Event) { atomic.AddInt64(&count, 1) })

	b.Publish("RX1", Event{NewStatus: "processing"})
	waitFor(t, func() bool { return atomic.LoadInt64(&count) == 1 })

	unsub()
	require.Zero(t, b.SubscriberCount("RX1"))

	b.Publish("RX1", Event{NewStatus: "validated"})
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int64(1), atomic.LoadInt64(&count))
}

func TestUnsubscribeIsIdempotent(t *testing.T) {
	b := NewBroadcaster()

	unsub := b.Subscribe("RX1", func(Event) {})
	unsub()
	assert.NotPanics(t, func() {
		unsub()
		unsub()
	})
	assert.Zero(t, b.SubscriberCount("RX1"))
}

func TestUnsubscribeDuringPublish(t *testing.T) {
	b := NewBroadcasterWith(1, 100*time.Millisecond)

	var count int64
	unsub := b.Subscribe("RX1", func(Event) {
		atomic.AddInt64(&count, 1)
		time.Sleep(10 * time.Millisecond)
	})

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			b.Publish("RX1", Event{NewStatus: "processing"})
		}
	}()
	go func() {
		defer wg.Done()
		time.Sleep(20 * time.Millisecond)
		unsub()
	}()
	wg.Wait()

	// 等进行中的回调结束后，取消订阅后的发布不再投递
	time.Sleep(50 * time.Millisecond)
	settled := atomic.LoadInt64(&count)
	b.Publish("RX1", Event{NewStatus: "validated"})
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, settled, atomic.LoadInt64(&count))
	assert.Zero(t, b.SubscriberCount("RX1"))
}

func TestSlowSubscriberIsDropped(t *testing.T) {
	b := NewBroadcasterWith(1, 20*time.Millisecond)

	block := make(chan struct{})
	b.Subscribe("RX1", func(Event) { <-block })

	var fastCount int64
	unsubFast := b.Subscribe("RX1", func(Event) { atomic.AddInt64(&fastCount, 1) })
	defer unsubFast()

	// 第一条被慢订阅者取走后阻塞，第二条占满缓冲，第三条触发超时摘除
	b.Publish("RX1", Event{NewStatus: "processing"})
	b.Publish("RX1", Event{NewStatus: "review_required"})
	b.Publish("RX1", Event{NewStatus: "validated"})

	waitFor(t, func() bool { return b.SubscriberCount("RX1") == 1 })
	waitFor(t, func() bool { return atomic.LoadInt64(&fastCount) == 3 })
	close(block)
}
