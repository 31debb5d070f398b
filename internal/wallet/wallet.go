// Package wallet 模拟浏览器里注入的钱包扩展：按来源(origin)授权，
// 授权后给出 Provider（查链上状态）和 Signer（代表账户授权交易）。
package wallet

import (
	"context"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("module", "wallet")

var (
	// ErrUserRejected 用户拒绝了授权请求
	ErrUserRejected = errors.New("wallet: user rejected the request")
	// ErrApprovalNotFound 授权请求不存在（已处理或已取消）
	ErrApprovalNotFound = errors.New("wallet: approval request not found")
)

// Injected 注入到运行环境中的钱包能力
type Injected interface {
	// Authorize 请求为 origin 授权；可能一直阻塞到用户做出决定
	Authorize(ctx context.Context, origin string) (Provider, error)
}

// Provider 只读的链上状态查询句柄
type Provider interface {
	// Signer 返回已授权账户的签名句柄
	Signer(ctx context.Context) (Signer, error)
	// BalanceAt 查询账户在最新区块的余额（wei）
	BalanceAt(ctx context.Context, account common.Address) (*big.Int, error)
}

// Signer 代表账户授权交易的句柄
type Signer interface {
	Address() common.Address
	SignTx(tx *types.Transaction, chainID *big.Int) (*types.Transaction, error)
}
