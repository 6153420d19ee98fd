package queue

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"pantry-chef/internal/core/ai"
	"pantry-chef/internal/pkg/common"
)

// Job 在工作協程中執行的上游呼叫
type Job func(ctx context.Context) (*ai.Response, error)

// Request 隊列請求
type Request struct {
	Context context.Context
	Job     Job
	Result  chan Result
}

// Result 處理結果
type Result struct {
	Response *ai.Response
	Error    error
}

// Status 隊列狀態
type Status struct {
	QueueLength    int `json:"queue_length"`
	ProcessedCount int `json:"processed_count"`
	MaxQueueSize   int `json:"max_queue_size"`
	Workers        int `json:"workers"`
}

// Manager 以固定數量工作協程處理上游請求的隊列
type Manager struct {
	workers   int
	maxSize   int
	queue     chan *Request
	done      chan struct{}
	processed int64
	wg        sync.WaitGroup
	startOnce sync.Once
	closeOnce sync.Once
}

// NewManager 創建新的隊列管理器
func NewManager(workers, maxSize int) *Manager {
	if workers <= 0 {
		workers = 1
	}
	if maxSize <= 0 {
		maxSize = 1
	}
	return &Manager{
		workers: workers,
		maxSize: maxSize,
		queue:   make(chan *Request, maxSize),
		done:    make(chan struct{}),
	}
}

// Start 啟動工作協程
func (m *Manager) Start() {
	m.startOnce.Do(func() {
		for i := 0; i < m.workers; i++ {
			m.wg.Add(1)
			go m.worker(i)
		}
		common.LogInfo("Queue workers started", zap.Int("workers", m.workers))
	})
}

func (m *Manager) worker(id int) {
	defer m.wg.Done()

	for {
		select {
		case <-m.done:
			return
		case req := <-m.queue:
			if err := req.Context.Err(); err != nil {
				req.Result <- Result{Error: err}
				continue
			}
			resp, err := req.Job(req.Context)
			req.Result <- Result{Response: resp, Error: err}
			atomic.AddInt64(&m.processed, 1)

			common.LogDebug("Queue job finished",
				zap.Int("worker", id),
				zap.Bool("failed", err != nil),
			)
		}
	}
}

// Enqueue 將請求加入隊列，隊列已滿時立即回傳 ErrQueueFull
func (m *Manager) Enqueue(ctx context.Context, job Job) (<-chan Result, error) {
	req := &Request{
		Context: ctx,
		Job:     job,
		Result:  make(chan Result, 1),
	}

	select {
	case <-m.done:
		return nil, fmt.Errorf("queue manager is closed")
	default:
	}

	select {
	case m.queue <- req:
		return req.Result, nil
	default:
		common.LogWarn("Request queue full",
			zap.Int("queue_length", len(m.queue)),
			zap.Int("max_queue_size", m.maxSize),
		)
		return nil, common.ErrQueueFull
	}
}

// Do 加入隊列並等待結果
func (m *Manager) Do(ctx context.Context, job Job) (*ai.Response, error) {
	result, err := m.Enqueue(ctx, job)
	if err != nil {
		return nil, err
	}

	select {
	case r := <-result:
		return r.Response, r.Error
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-m.done:
		return nil, fmt.Errorf("queue manager is closed")
	}
}

// GetQueueStatus 獲取隊列狀態
func (m *Manager) GetQueueStatus() *Status {
	return &Status{
		QueueLength:    len(m.queue),
		ProcessedCount: int(atomic.LoadInt64(&m.processed)),
		MaxQueueSize:   m.maxSize,
		Workers:        m.workers,
	}
}

// Close 停止工作協程並等待結束
func (m *Manager) Close() {
	m.closeOnce.Do(func() {
		close(m.done)
		m.wg.Wait()
	})
}
