package wallet

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/betbot/exchangett/internal/metrics"
	"github.com/google/uuid"
)

// ApprovalRequest 一次来源授权请求
type ApprovalRequest struct {
	ID        string    `json:"id"`
	Origin    string    `json:"origin"`
	Account   string    `json:"account"`
	CreatedAt time.Time `json:"created_at"`
}

// Approver 决定是否授权。返回 (false, nil) 表示用户拒绝。
type Approver interface {
	Approve(ctx context.Context, req ApprovalRequest) (bool, error)
}

// ApproverFunc 函数适配
type ApproverFunc func(ctx context.Context, req ApprovalRequest) (bool, error)

func (f ApproverFunc) Approve(ctx context.Context, req ApprovalRequest) (bool, error) {
	return f(ctx, req)
}

// AutoApprover 总是批准（本地开发用）
type AutoApprover struct{}

func (AutoApprover) Approve(ctx context.Context, _ ApprovalRequest) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return true, nil
}

type pendingApproval struct {
	req      ApprovalRequest
	decision chan bool
}

// QueueApprover 把授权请求挂起，直到界面上调用 Decide 或 ctx 结束。
// 没有超时：用户不处理就一直等。
type QueueApprover struct {
	mu        sync.Mutex
	pending   map[string]*pendingApproval
	listeners []func()
	now       func() time.Time
}

// NewQueueApprover 创建 QueueApprover
func NewQueueApprover() *QueueApprover {
	return &QueueApprover{
		pending: make(map[string]*pendingApproval),
		now:     time.Now,
	}
}

// OnChange 注册变化通知（新请求、已决定、已取消）
func (q *QueueApprover) OnChange(fn func()) {
	if fn == nil {
		return
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.listeners = append(q.listeners, fn)
}

// Approve 实现 Approver
func (q *QueueApprover) Approve(ctx context.Context, req ApprovalRequest) (bool, error) {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	if req.CreatedAt.IsZero() {
		req.CreatedAt = q.now()
	}
	p := &pendingApproval{req: req, decision: make(chan bool, 1)}

	q.mu.Lock()
	q.pending[req.ID] = p
	q.mu.Unlock()
	log.Infof("等待用户授权: origin=%s account=%s id=%s", req.Origin, req.Account, req.ID)
	q.changed()

	select {
	case approved := <-p.decision:
		return approved, nil
	case <-ctx.Done():
		if q.remove(req.ID) {
			q.changed()
		}
		return false, ctx.Err()
	}
}

// Pending 当前等待中的请求（按创建时间排序）
func (q *QueueApprover) Pending() []ApprovalRequest {
	q.mu.Lock()
	out := make([]ApprovalRequest, 0, len(q.pending))
	for _, p := range q.pending {
		out = append(out, p.req)
	}
	q.mu.Unlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// Decide 批准或拒绝一个等待中的请求
func (q *QueueApprover) Decide(id string, approve bool) error {
	q.mu.Lock()
	p, ok := q.pending[id]
	if ok {
		delete(q.pending, id)
	}
	q.mu.Unlock()
	if !ok {
		return ErrApprovalNotFound
	}
	p.decision <- approve
	log.Infof("授权请求已处理: id=%s approve=%v", id, approve)
	q.changed()
	return nil
}

func (q *QueueApprover) remove(id string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if _, ok := q.pending[id]; !ok {
		return false
	}
	delete(q.pending, id)
	return true
}

func (q *QueueApprover) changed() {
	q.mu.Lock()
	n := len(q.pending)
	listeners := append([]func(){}, q.listeners...)
	q.mu.Unlock()

	metrics.PendingApprovals.Set(float64(n))
	for _, fn := range listeners {
		fn()
	}
}
