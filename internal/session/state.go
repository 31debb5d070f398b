package session

import (
	"errors"
	"math/big"
	"time"

	"github.com/betbot/exchangett/internal/wallet"
)

var (
	// ErrWalletUnavailable 运行环境中没有注入钱包能力
	ErrWalletUnavailable = errors.New("wallet unavailable: no injected wallet capability")
	// ErrSessionNotReady 地址或 provider 未就绪时查询余额
	ErrSessionNotReady = errors.New("session not ready: unavailable provider")
)

// Status 会话状态机位置
type Status int

const (
	Disconnected Status = iota
	Connecting
	Connected
)

func (s Status) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	default:
		return "unknown"
	}
}

// State 会话快照。Address 为空表示未定义；Balance 为最小单位（wei）。
type State struct {
	Status    Status
	Address   string
	Signer    wallet.Signer
	Provider  wallet.Provider
	Balance   *big.Int
	LastError error
	UpdatedAt time.Time
}

// Ready 地址和 provider 是否都已就绪（可以查询余额）
func (s State) Ready() bool {
	return s.Address != "" && s.Provider != nil
}

// clone 深拷贝 Balance，保证调用方拿到的快照不会被后续写入影响
func (s State) clone() State {
	out := s
	if s.Balance != nil {
		out.Balance = new(big.Int).Set(s.Balance)
	} else {
		out.Balance = new(big.Int)
	}
	return out
}
