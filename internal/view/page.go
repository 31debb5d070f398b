package view

import (
	"fmt"
	"strings"

	"github.com/betbot/exchangett/internal/session"
	"github.com/betbot/exchangett/internal/wallet"
)

const (
	Brand      = "ExchangeTT"
	OrderTitle = "Place market order"
)

// Link 导航链接
type Link struct {
	Label string
	Href  string
}

var navLinks = []Link{
	{Label: "portfolio", Href: "/portfolio"},
	{Label: "help", Href: "/help"},
}

// Page 一次渲染需要的全部数据
type Page struct {
	Brand        string
	Links        []Link
	Status       string
	Address      string
	Connected    bool
	Balance      string // 最小单位原样显示
	BalanceEther string
	Error        string
	Approval     *wallet.ApprovalRequest
	OrderTitle   string
}

// ShowConnect 没有地址时显示连接按钮
func (p Page) ShowConnect() bool {
	return p.Address == ""
}

// BalanceLine 余额行
func (p Page) BalanceLine() string {
	return "balance: " + p.Balance
}

// Page 根据当前会话构造页面
func (v *View) Page() Page {
	st := v.s.State()
	p := Page{
		Brand:      Brand,
		Links:      navLinks,
		Status:     st.Status.String(),
		Address:    st.Address,
		Connected:  st.Status == session.Connected,
		Balance:    st.Balance.String(),
		OrderTitle: OrderTitle,
	}
	if v.showEther {
		p.BalanceEther = wallet.FormatEther(st.Balance)
	}
	if st.LastError != nil {
		p.Error = st.LastError.Error()
	}
	if v.approvals != nil {
		if pending := v.approvals.Pending(); len(pending) > 0 {
			req := pending[0]
			p.Approval = &req
		}
	}
	return p
}

// Text 纯文本渲染
func (v *View) Text() string {
	return v.Page().Text()
}

// Text 纯文本渲染
func (p Page) Text() string {
	var b strings.Builder

	nav := []string{p.Brand}
	for _, l := range p.Links {
		nav = append(nav, l.Label)
	}
	if p.ShowConnect() {
		nav = append(nav, "[Connect]")
	} else {
		nav = append(nav, p.Address)
	}
	b.WriteString(strings.Join(nav, " | "))
	b.WriteString("\n\n")

	b.WriteString(p.BalanceLine())
	b.WriteString("\n")
	if p.BalanceEther != "" {
		fmt.Fprintf(&b, "≈ %s ETH\n", p.BalanceEther)
	}
	if p.Error != "" {
		fmt.Fprintf(&b, "error: %s\n", p.Error)
	}
	if p.Approval != nil {
		fmt.Fprintf(&b, "approval pending: %s wants %s (id %s)\n", p.Approval.Origin, p.Approval.Account, p.Approval.ID)
	}
	fmt.Fprintf(&b, "\n[%s]\n", p.OrderTitle)
	return b.String()
}
