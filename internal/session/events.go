package session

import (
	"context"
	"sync"
)

// Reason 状态变化原因
type Reason string

const (
	ReasonConnecting    Reason = "connecting"
	ReasonConnected     Reason = "connected"
	ReasonConnectFailed Reason = "connect_failed"
	ReasonBalance       Reason = "balance"
	ReasonBalanceFailed Reason = "balance_failed"
)

// StateChangedEvent 会话状态变化事件
type StateChangedEvent struct {
	Previous State
	Current  State
	Reason   Reason
}

// AddressChanged 地址是否变化
func (e *StateChangedEvent) AddressChanged() bool {
	return e.Previous.Address != e.Current.Address
}

// Handler 状态变化处理器
type Handler interface {
	OnStateChanged(ctx context.Context, e *StateChangedEvent) error
}

// HandlerFunc 函数适配
type HandlerFunc func(ctx context.Context, e *StateChangedEvent) error

func (f HandlerFunc) OnStateChanged(ctx context.Context, e *StateChangedEvent) error {
	return f(ctx, e)
}

// handlerList 处理器列表
type handlerList struct {
	handlers []Handler
	mu       sync.RWMutex
}

func (h *handlerList) add(handler Handler) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handlers = append(h.handlers, handler)
}

// snapshot 返回处理器快照（无锁遍历，避免长时间持锁）
func (h *handlerList) snapshot() []Handler {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]Handler, len(h.handlers))
	copy(out, h.handlers)
	return out
}

// emit 串行触发所有处理器（确定性优先）；单个处理器 panic/出错不影响其他处理器
func (h *handlerList) emit(ctx context.Context, e *StateChangedEvent) {
	for i, handler := range h.snapshot() {
		if handler == nil {
			continue
		}
		func(idx int, hd Handler) {
			defer func() {
				if r := recover(); r != nil {
					log.Errorf("状态处理器 %d panic: %v", idx, r)
				}
			}()
			if err := hd.OnStateChanged(ctx, e); err != nil {
				log.Errorf("状态处理器 %d 执行失败: %v", idx, err)
			}
		}(i, handler)
	}
}
