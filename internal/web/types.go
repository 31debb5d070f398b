package web

import (
	"time"

	"github.com/betbot/exchangett/internal/history"
	"github.com/betbot/exchangett/internal/session"
	"github.com/betbot/exchangett/internal/wallet"
)

// SessionDTO 会话的 JSON 形式。balance 为最小单位整数的十进制字符串。
type SessionDTO struct {
	Status       string     `json:"status"`
	Address      string     `json:"address,omitempty"`
	Connected    bool       `json:"connected"`
	Balance      string     `json:"balance"`
	BalanceEther string     `json:"balance_ether"`
	Error        string     `json:"error,omitempty"`
	UpdatedAt    *time.Time `json:"updated_at,omitempty"`
}

type ErrorResponse struct {
	Error   string      `json:"error"`
	Session *SessionDTO `json:"session,omitempty"`
}

type BalanceResponse struct {
	Address string `json:"address"`
	Balance string `json:"balance"`
}

type ApprovalsResponse struct {
	Approvals []wallet.ApprovalRequest `json:"approvals"`
}

type DecideRequest struct {
	Approve bool `json:"approve"`
}

type HistoryResponse struct {
	Account  string          `json:"account,omitempty"`
	Balances []history.Entry `json:"balances"`
}

func toSessionDTO(st session.State) SessionDTO {
	dto := SessionDTO{
		Status:       st.Status.String(),
		Address:      st.Address,
		Connected:    st.Status == session.Connected,
		Balance:      st.Balance.String(),
		BalanceEther: wallet.FormatEther(st.Balance),
	}
	if st.LastError != nil {
		dto.Error = st.LastError.Error()
	}
	if !st.UpdatedAt.IsZero() {
		t := st.UpdatedAt
		dto.UpdatedAt = &t
	}
	return dto
}
