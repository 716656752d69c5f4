package queue

import (
	"context"
	"sync"

	"MediLink/internal/modules/notification/application/service"
	"MediLink/pkg/zlog"

	"go.uber.org/zap"
)

// Dispatcher 通知异步分发器。
// 状态流转的关键路径只做一次非阻塞入队，真正的模板渲染、落库、渠道投递
// 全部在 worker 里完成——通知侧再慢也不能反过来拖垮流转。
type Dispatcher struct {
	svc     service.NotifyService
	jobs    chan service.TransitionNotice
	workers int

	wg      sync.WaitGroup
	started sync.Once
	stopped sync.Once
}

func NewDispatcher(svc service.NotifyService, workerCount, queueSize int) *Dispatcher {
	if workerCount <= 0 {
		workerCount = 4
	}
	if queueSize <= 0 {
		queueSize = 256
	}
	return &Dispatcher{
		svc:     svc,
		jobs:    make(chan service.TransitionNotice, queueSize),
		workers: workerCount,
	}
}

func (d *Dispatcher) Start() {
	d.started.Do(func() {
		for i := 0; i < d.workers; i++ {
			d.wg.Add(1)
			go func() {
				defer d.wg.Done()
				for notice := range d.jobs {
					d.svc.OnTransition(context.Background(), notice)
				}
			}()
		}
		zlog.Info("notification dispatcher started", zap.Int("workers", d.workers))
	})
}

// Enqueue 非阻塞入队。队列打满时丢弃并告警，绝不阻塞调用方
func (d *Dispatcher) Enqueue(notice service.TransitionNotice) bool {
	select {
	case d.jobs <- notice:
		return true
	default:
		zlog.Warn("通知队列已满，事件被丢弃",
			zap.String("prescription_id", notice.PrescriptionID),
			zap.String("new_status", notice.NewStatus))
		return false
	}
}

// Stop 停止接收并等 worker 清空队列
func (d *Dispatcher) Stop() {
	d.stopped.Do(func() {
		close(d.jobs)
		d.wg.Wait()
	})
}
