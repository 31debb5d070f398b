package wallet

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Extension 本地钱包扩展：持有签名者，按 origin 授权，授权后返回绑定链的 Provider。
// 已授权的 origin 只记在内存里，进程退出即失效。
type Extension struct {
	signer   Signer
	chain    ChainReader
	approver Approver

	mu         sync.Mutex
	authorized map[string]bool
}

// NewExtension 创建钱包扩展；approver 为 nil 时自动批准
func NewExtension(signer Signer, chain ChainReader, approver Approver) (*Extension, error) {
	if signer == nil {
		return nil, fmt.Errorf("wallet: signer is required")
	}
	if chain == nil {
		return nil, fmt.Errorf("wallet: chain reader is required")
	}
	if approver == nil {
		approver = AutoApprover{}
	}
	return &Extension{
		signer:     signer,
		chain:      chain,
		approver:   approver,
		authorized: make(map[string]bool),
	}, nil
}

// Account 钱包账户地址
func (e *Extension) Account() string {
	return e.signer.Address().Hex()
}

// Authorize 实现 Injected
func (e *Extension) Authorize(ctx context.Context, origin string) (Provider, error) {
	origin = normalizeOrigin(origin)
	if origin == "" {
		return nil, fmt.Errorf("wallet: origin is required")
	}

	if !e.isAuthorized(origin) {
		approved, err := e.approver.Approve(ctx, ApprovalRequest{
			Origin:  origin,
			Account: e.Account(),
		})
		if err != nil {
			return nil, fmt.Errorf("wallet: approval for %s: %w", origin, err)
		}
		if !approved {
			log.Warnf("用户拒绝授权: origin=%s", origin)
			return nil, ErrUserRejected
		}
		e.mu.Lock()
		e.authorized[origin] = true
		e.mu.Unlock()
		log.Infof("已授权: origin=%s account=%s", origin, e.Account())
	}
	return NewProvider(e.chain, e.signer), nil
}

// Revoke 撤销 origin 的授权，下次 Authorize 会重新询问
func (e *Extension) Revoke(origin string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.authorized, normalizeOrigin(origin))
}

func (e *Extension) isAuthorized(origin string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.authorized[origin]
}

func normalizeOrigin(origin string) string {
	return strings.TrimRight(strings.ToLower(strings.TrimSpace(origin)), "/")
}
