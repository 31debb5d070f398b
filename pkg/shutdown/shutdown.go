package shutdown

import (
	"context"
	"sync"

	"github.com/betbot/exchangett/pkg/logger"
)

// Handler 关闭处理函数
type Handler func(ctx context.Context) error

type namedHandler struct {
	name string
	fn   Handler
}

// Manager 优雅关闭管理器
type Manager struct {
	callbacks []namedHandler
	mu        sync.Mutex
}

// NewManager 创建新的关闭管理器
func NewManager() *Manager {
	return &Manager{}
}

// OnShutdown 注册关闭回调
func (m *Manager) OnShutdown(name string, handler Handler) {
	if handler == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callbacks = append(m.callbacks, namedHandler{name: name, fn: handler})
}

// Shutdown 并发执行所有关闭回调（阻塞调用），返回超时前未完成的回调名。
// ctx 应该带超时，避免无限等待。
func (m *Manager) Shutdown(ctx context.Context) []string {
	m.mu.Lock()
	callbacks := append([]namedHandler(nil), m.callbacks...)
	m.mu.Unlock()

	if len(callbacks) == 0 {
		logger.Info("没有注册的关闭回调")
		return nil
	}

	logger.Infof("开始优雅关闭，共 %d 个回调", len(callbacks))

	var (
		wg      sync.WaitGroup
		doneMu  sync.Mutex
		pending = make(map[string]bool, len(callbacks))
	)
	for _, cb := range callbacks {
		pending[cb.name] = true
	}

	wg.Add(len(callbacks))
	for _, cb := range callbacks {
		go func(h namedHandler) {
			defer wg.Done()
			if err := h.fn(ctx); err != nil {
				logger.Warnf("关闭回调 %s 失败: %v", h.name, err)
			}
			doneMu.Lock()
			delete(pending, h.name)
			doneMu.Unlock()
		}(cb)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logger.Info("所有关闭回调已完成")
		return nil
	case <-ctx.Done():
		logger.Warnf("关闭超时: %v", ctx.Err())
	}

	doneMu.Lock()
	defer doneMu.Unlock()
	var left []string
	for name := range pending {
		left = append(left, name)
	}
	return left
}
