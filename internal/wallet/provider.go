package wallet

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
)

// ChainReader 余额查询所需的最小链接口（*ethclient.Client 满足）
type ChainReader interface {
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
}

// DialChain 连接 RPC 节点
func DialChain(ctx context.Context, rpcURL string) (*ethclient.Client, error) {
	c, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("连接RPC节点失败: %w", err)
	}
	return c, nil
}

type rpcProvider struct {
	chain  ChainReader
	signer Signer
}

// NewProvider 绑定链 + 已授权签名者
func NewProvider(chain ChainReader, signer Signer) Provider {
	return &rpcProvider{chain: chain, signer: signer}
}

func (p *rpcProvider) Signer(ctx context.Context) (Signer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if p.signer == nil {
		return nil, fmt.Errorf("wallet: no signer for provider")
	}
	return p.signer, nil
}

func (p *rpcProvider) BalanceAt(ctx context.Context, account common.Address) (*big.Int, error) {
	// nil 区块号 = latest
	bal, err := p.chain.BalanceAt(ctx, account, nil)
	if err != nil {
		return nil, fmt.Errorf("eth_getBalance %s: %w", account.Hex(), err)
	}
	return bal, nil
}
