// Package view 会话的声明式渲染：挂载时发起连接，地址变化时刷新余额，
// 每次状态变化通知重绘。web 和终端两种界面共用这里的 Page 模型。
package view

import (
	"context"
	"errors"
	"math/big"
	"sync"

	"github.com/betbot/exchangett/internal/session"
	"github.com/betbot/exchangett/internal/wallet"
	"github.com/betbot/exchangett/pkg/sigchan"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("module", "view")

// Session 视图需要的会话能力（*session.Controller 实现了它）
type Session interface {
	Connect(ctx context.Context) error
	GetBalance(ctx context.Context) (*big.Int, error)
	State() session.State
	OnChange(h session.Handler)
}

// PendingSource 待审批的钱包授权请求（*wallet.QueueApprover 实现了它）
type PendingSource interface {
	Pending() []wallet.ApprovalRequest
}

// Option 视图选项
type Option func(*View)

// WithShowEther 额外显示换算成 ether 的余额
func WithShowEther(show bool) Option {
	return func(v *View) { v.showEther = show }
}

// WithApprovals 在页面上显示待审批的授权请求
func WithApprovals(src PendingSource) Option {
	return func(v *View) { v.approvals = src }
}

// View 会话视图
type View struct {
	s         Session
	showEther bool
	approvals PendingSource

	// 后台操作使用视图自己的生命周期，不继承触发者（例如 HTTP 请求）的 ctx
	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup

	mountOnce sync.Once
	watchers  *sigchan.Group
}

// New 创建视图并订阅会话变化
func New(s Session, opts ...Option) *View {
	ctx, cancel := context.WithCancel(context.Background())
	v := &View{
		s:        s,
		ctx:      ctx,
		cancel:   cancel,
		watchers: sigchan.NewGroup(),
	}
	for _, opt := range opts {
		opt(v)
	}
	s.OnChange(session.HandlerFunc(v.onStateChanged))
	return v
}

func (v *View) onStateChanged(_ context.Context, e *session.StateChangedEvent) error {
	if e.AddressChanged() && e.Current.Address != "" {
		v.goBalance()
	}
	v.watchers.Emit()
	return nil
}

// spawn 在视图生命周期内启动后台操作；Close 之后不再启动
func (v *View) spawn(fn func(ctx context.Context)) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return false
	}
	v.wg.Add(1)
	go func() {
		defer v.wg.Done()
		fn(v.ctx)
	}()
	return true
}

func (v *View) goBalance() {
	started := v.spawn(func(ctx context.Context) {
		if _, err := v.s.GetBalance(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Warnf("刷新余额失败: %v", err)
		}
	})
	if !started {
		log.Debug("视图已关闭，跳过余额刷新")
	}
}

// Mount 首次渲染：后台发起一次连接，多次调用只生效一次。
// ctx 结束或 Close 时取消连接。
func (v *View) Mount(ctx context.Context) {
	v.mountOnce.Do(func() {
		v.spawn(func(viewCtx context.Context) {
			ctx, cancel := context.WithCancel(ctx)
			defer cancel()
			stop := context.AfterFunc(viewCtx, cancel)
			defer stop()
			if err := v.s.Connect(ctx); err != nil {
				log.Warnf("挂载连接失败: %v", err)
			}
		})
	})
}

// Connect 用户点击连接
func (v *View) Connect(ctx context.Context) error {
	return v.s.Connect(ctx)
}

// Refresh 用户手动刷新余额
func (v *View) Refresh(ctx context.Context) (*big.Int, error) {
	return v.s.GetBalance(ctx)
}

// Notify 外部数据（例如审批队列）变化时触发重绘
func (v *View) Notify() {
	v.watchers.Emit()
}

// Watch 返回重绘信号和取消函数。信号会合并，收到后应读取最新的 Page。
func (v *View) Watch() (<-chan struct{}, func()) {
	c, cancel := v.watchers.Add()
	return c.C(), cancel
}

// Wait 等待视图发起的后台操作结束
func (v *View) Wait() {
	v.wg.Wait()
}

// Close 停止启动新的后台操作，取消进行中的操作并等待结束。可重复调用。
func (v *View) Close() {
	v.mu.Lock()
	v.closed = true
	v.mu.Unlock()
	v.cancel()
	v.wg.Wait()
}
