// Package session 钱包会话控制器：在界面和注入的钱包能力之间做中介，
// 持有连接状态（地址、签名者、provider、缓存余额）。
package session

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/betbot/exchangett/internal/metrics"
	"github.com/betbot/exchangett/internal/wallet"
	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("module", "session")

// DefaultOrigin 未指定时向钱包声明的来源
const DefaultOrigin = "http://localhost"

// Option 控制器选项
type Option func(*Controller)

// WithOrigin 设置向钱包请求授权时使用的来源
func WithOrigin(origin string) Option {
	return func(c *Controller) {
		if origin != "" {
			c.origin = origin
		}
	}
}

// WithClock 替换时钟（测试用）
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

// Controller 钱包会话控制器。
//
// 同一时刻可能有多个 Connect/GetBalance 在进行：不去重、不取消，
// 各自提交结果，后写者生效。字段读写由 mu 保护。
type Controller struct {
	wallet wallet.Injected
	origin string
	now    func() time.Time

	mu    sync.RWMutex
	state State

	handlers handlerList
}

// New 创建控制器。w 为 nil 表示运行环境中没有钱包。
func New(w wallet.Injected, opts ...Option) *Controller {
	c := &Controller{
		wallet: w,
		origin: DefaultOrigin,
		now:    time.Now,
		state:  State{Status: Disconnected, Balance: new(big.Int)},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Origin 向钱包声明的来源
func (c *Controller) Origin() string {
	return c.origin
}

// State 当前会话快照
func (c *Controller) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.clone()
}

// OnChange 注册状态变化处理器
func (c *Controller) OnChange(h Handler) {
	c.handlers.add(h)
}

// Connect 请求钱包授权当前来源，成功后一次性提交 provider/signer/地址，然后立即刷新余额。
// 用户审批可能无限期阻塞，只能通过 ctx 取消。
func (c *Controller) Connect(ctx context.Context) error {
	if c.wallet == nil {
		log.Warn("没有可用的钱包，忽略连接请求")
		metrics.ConnectTotal.WithLabelValues(metrics.ResultUnavailable).Inc()
		c.update(ctx, ReasonConnectFailed, func(s *State) {
			s.LastError = ErrWalletUnavailable
		})
		return ErrWalletUnavailable
	}

	c.update(ctx, ReasonConnecting, func(s *State) {
		s.Status = Connecting
	})
	log.Infof("请求钱包授权: origin=%s", c.origin)

	provider, err := c.wallet.Authorize(ctx, c.origin)
	if err != nil {
		return c.connectFailed(ctx, err)
	}
	signer, err := provider.Signer(ctx)
	if err != nil {
		return c.connectFailed(ctx, fmt.Errorf("get signer: %w", err))
	}
	address := signer.Address()
	if address == (common.Address{}) {
		return c.connectFailed(ctx, errors.New("wallet reported an empty account"))
	}

	c.update(ctx, ReasonConnected, func(s *State) {
		s.Address = address.Hex()
		s.Signer = signer
		s.Provider = provider
		s.Status = Connected
		s.LastError = nil
	})
	metrics.ConnectTotal.WithLabelValues(metrics.ResultOK).Inc()
	log.Infof("钱包已连接: %s", address.Hex())

	if _, err := c.GetBalance(ctx); err != nil {
		return fmt.Errorf("connected but balance refresh failed: %w", err)
	}
	return nil
}

func (c *Controller) connectFailed(ctx context.Context, err error) error {
	result := metrics.ResultError
	if errors.Is(err, wallet.ErrUserRejected) {
		result = metrics.ResultRejected
	}
	metrics.ConnectTotal.WithLabelValues(result).Inc()
	log.Warnf("钱包连接失败: %v", err)

	c.update(ctx, ReasonConnectFailed, func(s *State) {
		if !errors.Is(err, context.Canceled) {
			s.LastError = err
		}
		// 之前的连接仍然有效时保持 Connected
		if s.Ready() && s.Signer != nil {
			s.Status = Connected
		} else {
			s.Status = Disconnected
		}
	})
	return fmt.Errorf("connect: %w", err)
}

// GetBalance 查询当前账户在最新区块的余额，写入会话并返回。
// 地址或 provider 未就绪时返回 ErrSessionNotReady，且不修改余额。
func (c *Controller) GetBalance(ctx context.Context) (*big.Int, error) {
	c.mu.RLock()
	address, provider := c.state.Address, c.state.Provider
	c.mu.RUnlock()
	if address == "" || provider == nil {
		metrics.BalanceFetchTotal.WithLabelValues(metrics.ResultNotReady).Inc()
		return nil, ErrSessionNotReady
	}

	start := time.Now()
	bal, err := provider.BalanceAt(ctx, common.HexToAddress(address))
	metrics.BalanceFetchSeconds.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.BalanceFetchTotal.WithLabelValues(metrics.ResultError).Inc()
		// 调用方取消不算查询失败，不写入会话
		if errors.Is(err, context.Canceled) {
			log.Debugf("余额查询被取消: %s", address)
			return nil, fmt.Errorf("get balance: %w", err)
		}
		log.Warnf("余额查询失败: %s: %v", address, err)
		c.update(ctx, ReasonBalanceFailed, func(s *State) {
			s.LastError = err
		})
		return nil, fmt.Errorf("get balance: %w", err)
	}
	if bal == nil {
		bal = new(big.Int)
	}
	metrics.BalanceFetchTotal.WithLabelValues(metrics.ResultOK).Inc()

	c.updateIf(ctx, ReasonBalance, func(s *State) bool {
		// 查询期间账户已切换：旧账户的余额不写入，也不通知
		if s.Address != address {
			log.Debugf("丢弃过期余额: %s (当前 %s)", address, s.Address)
			return false
		}
		s.Balance = new(big.Int).Set(bal)
		s.LastError = nil
		return true
	})
	log.Debugf("余额: %s = %s", address, bal.String())
	return new(big.Int).Set(bal), nil
}

// update 在锁内修改状态，释放锁后串行通知处理器
func (c *Controller) update(ctx context.Context, reason Reason, mutate func(s *State)) {
	c.updateIf(ctx, reason, func(s *State) bool {
		mutate(s)
		return true
	})
}

// updateIf 同 update，但 mutate 返回 false 时视为未修改：不更新时间戳，也不通知
func (c *Controller) updateIf(ctx context.Context, reason Reason, mutate func(s *State) bool) bool {
	c.mu.Lock()
	prev := c.state.clone()
	if !mutate(&c.state) {
		c.mu.Unlock()
		return false
	}
	c.state.UpdatedAt = c.now()
	cur := c.state.clone()
	c.mu.Unlock()

	c.handlers.emit(ctx, &StateChangedEvent{Previous: prev, Current: cur, Reason: reason})
	return true
}
