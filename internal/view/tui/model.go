package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/betbot/exchangett/internal/view"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type redrawMsg struct{}

type actionMsg struct {
	action string
	err    error
}

type tickMsg time.Time

type model struct {
	ctx     context.Context
	s       Surface
	decider Decider
	redraw  <-chan struct{}

	page   view.Page
	notice string
	width  int
}

func newModel(ctx context.Context, s Surface, decider Decider, redraw <-chan struct{}) model {
	return model{
		ctx:     ctx,
		s:       s,
		decider: decider,
		redraw:  redraw,
		page:    s.Page(),
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(m.waitForRedraw(), m.tick())
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			// Bubble Tea 会拦截 Ctrl+C，主动给自己发 SIGINT，让主程序走统一的退出链路
			interruptSelf()
			return m, tea.Quit
		case "c":
			m.notice = "connecting..."
			return m, m.run("connect", func(ctx context.Context) error { return m.s.Connect(ctx) })
		case "r":
			m.notice = "refreshing..."
			return m, m.run("refresh", func(ctx context.Context) error {
				_, err := m.s.Refresh(ctx)
				return err
			})
		case "y", "n":
			if m.page.Approval == nil || m.decider == nil {
				return m, nil
			}
			id, approve := m.page.Approval.ID, msg.String() == "y"
			return m, m.run("decide", func(context.Context) error { return m.decider.Decide(id, approve) })
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case redrawMsg:
		m.page = m.s.Page()
		return m, m.waitForRedraw()
	case actionMsg:
		if msg.err != nil {
			m.notice = fmt.Sprintf("%s failed: %v", msg.action, msg.err)
		} else {
			m.notice = ""
		}
		m.page = m.s.Page()
		return m, nil
	case tickMsg:
		m.page = m.s.Page()
		return m, m.tick()
	}
	return m, nil
}

// run 在 bubbletea 的 goroutine 里执行可能阻塞的操作（连接可能一直等审批）
func (m model) run(action string, fn func(ctx context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return actionMsg{action: action, err: fn(ctx)}
	}
}

func (m model) waitForRedraw() tea.Cmd {
	redraw := m.redraw
	return func() tea.Msg {
		<-redraw
		return redrawMsg{}
	}
}

func (m model) tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

var (
	accent     = lipgloss.Color("39")
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(accent)
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	warnStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("226"))
)

func (m model) View() string {
	width := m.width - 4
	if width < 50 {
		width = 50
	}
	p := m.page

	parts := []string{m.renderNav(p), m.renderBalance(p, width)}
	if p.Approval != nil {
		parts = append(parts, m.renderApproval(p, width))
	}
	parts = append(parts, box(width, titleStyle.Render(p.OrderTitle)))
	if m.notice != "" {
		parts = append(parts, mutedStyle.Render(m.notice))
	}
	parts = append(parts, mutedStyle.Render(m.help(p)))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m model) renderNav(p view.Page) string {
	items := []string{titleStyle.Render(p.Brand)}
	for _, l := range p.Links {
		items = append(items, l.Label)
	}
	if p.ShowConnect() {
		items = append(items, warnStyle.Render("[c] Connect"))
	} else {
		items = append(items, p.Address)
	}
	return lipgloss.NewStyle().Padding(0, 1).Render(strings.Join(items, "  │  "))
}

func (m model) renderBalance(p view.Page, width int) string {
	lines := []string{
		titleStyle.Render("Wallet") + "  " + mutedStyle.Render(p.Status),
		strings.Repeat("─", width-4),
		p.BalanceLine(),
	}
	if p.BalanceEther != "" {
		lines = append(lines, mutedStyle.Render(fmt.Sprintf("≈ %s ETH", p.BalanceEther)))
	}
	if p.Error != "" {
		lines = append(lines, errStyle.Render(p.Error))
	}
	return box(width, strings.Join(lines, "\n"))
}

func (m model) renderApproval(p view.Page, width int) string {
	a := p.Approval
	lines := []string{
		warnStyle.Render("Approval requested"),
		fmt.Sprintf("%s wants access to %s", a.Origin, a.Account),
		"[y] approve   [n] reject",
	}
	return box(width, strings.Join(lines, "\n"))
}

func (m model) help(p view.Page) string {
	keys := []string{"c connect", "r refresh"}
	if p.Approval != nil {
		keys = append(keys, "y/n decide")
	}
	keys = append(keys, "q quit")
	return strings.Join(keys, " · ")
}

func box(width int, content string) string {
	return lipgloss.NewStyle().
		Width(width).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accent).
		Padding(0, 1).
		Render(content)
}
