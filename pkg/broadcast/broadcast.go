package broadcast

import (
	"sync"
	"time"
)

// Event 处方状态流转事件，按处方 ID 扇出给所有在线订阅者
type Event struct {
	PrescriptionID string    `json:"prescription_id"`
	OldStatus      string    `json:"old_status"`
	NewStatus      string    `json:"new_status"`
	ActorID        string    `json:"actor_id"`
	Notes          string    `json:"notes,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// Handler 订阅回调。回调在订阅者自己的 goroutine 中执行，
// 回调阻塞只会撑满自己的缓冲，不会拖慢发布方。
type Handler func(Event)

const (
	defaultBufferSize  = 16
	defaultSendTimeout = 2 * time.Second
)

// Broadcaster 进程内按处方 ID 的发布/订阅。
// 约束：同一处方的事件按发布顺序投递；缓冲满且等待超时的慢订阅者被直接摘除。
type Broadcaster struct {
	mu          sync.RWMutex
	subs        map[string][]*subscriber // 按注册顺序保存
	nextID      uint64
	bufferSize  int
	sendTimeout time.Duration
}

type subscriber struct {
	id       uint64
	entityID string
	ch       chan Event
	done     chan struct{}
	once     sync.Once
}

func (s *subscriber) stop() {
	s.once.Do(func() { close(s.done) })
}

func NewBroadcaster() *Broadcaster {
	return NewBroadcasterWith(defaultBufferSize, defaultSendTimeout)
}

func NewBroadcasterWith(bufferSize int, sendTimeout time.Duration) *Broadcaster {
	if bufferSize <= 0 {
		bufferSize = defaultBufferSize
	}
	if sendTimeout <= 0 {
		sendTimeout = defaultSendTimeout
	}
	return &Broadcaster{
		subs:        make(map[string][]*subscriber),
		bufferSize:  bufferSize,
		sendTimeout: sendTimeout,
	}
}

// Subscribe 注册对某个处方的订阅，返回取消函数。
// 取消函数幂等，且可以和进行中的 Publish 并发调用；
// 取消返回后，后续 Publish 不会再投递给该订阅者。
func (b *Broadcaster) Subscribe(entityID string, handler Handler) func() {
	if entityID == "" || handler == nil {
		return func() {}
	}

	b.mu.Lock()
	b.nextID++
	sub := &subscriber{
		id:       b.nextID,
		entityID: entityID,
		ch:       make(chan Event, b.bufferSize),
		done:     make(chan struct{}),
	}
	b.subs[entityID] = append(b.subs[entityID], sub)
	b.mu.Unlock()

	go func() {
		for {
			select {
			case <-sub.done:
				return
			case ev := <-sub.ch:
				// 取消和缓冲事件同时就绪时优先退出
				select {
				case <-sub.done:
					return
				default:
				}
				handler(ev)
			}
		}
	}()

	return func() { b.remove(sub) }
}

// Publish 向 entityID 的全部订阅者按注册顺序投递。
// 单个订阅者缓冲满且在超时内未腾出时，该订阅者被摘除，发布方不报错。
func (b *Broadcaster) Publish(entityID string, ev Event) {
	if entityID == "" {
		return
	}

	b.mu.RLock()
	snapshot := make([]*subscriber, len(b.subs[entityID]))
	copy(snapshot, b.subs[entityID])
	b.mu.RUnlock()

	var slow []*subscriber
	for _, sub := range snapshot {
		select {
		case <-sub.done:
			continue
		case sub.ch <- ev:
			continue
		default:
		}

		// 缓冲已满，限时等待
		timer := time.NewTimer(b.sendTimeout)
		select {
		case <-sub.done:
		case sub.ch <- ev:
		case <-timer.C:
			slow = append(slow, sub)
		}
		timer.Stop()
	}

	for _, sub := range slow {
		b.remove(sub)
	}
}

// SubscriberCount 当前订阅者数量，供测试与监控使用
func (b *Broadcaster) SubscriberCount(entityID string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[entityID])
}

func (b *Broadcaster) remove(sub *subscriber) {
	if sub == nil {
		return
	}
	b.mu.Lock()
	list := b.subs[sub.entityID]
	for i, s := range list {
		if s.id == sub.id {
			b.subs[sub.entityID] = append(list[:i:i], list[i+1:]...)
			break
		}
	}
	if len(b.subs[sub.entityID]) == 0 {
		delete(b.subs, sub.entityID)
	}
	b.mu.Unlock()
	sub.stop()
}
