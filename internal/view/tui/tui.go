// Package tui 会话视图的终端界面（bubbletea）。
package tui

import (
	"context"
	"errors"
	"math/big"
	"os"

	"github.com/betbot/exchangett/internal/view"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"golang.org/x/term"
)

var log = logrus.WithField("module", "tui")

// ErrNotTerminal 标准输出不是终端
var ErrNotTerminal = errors.New("tui: stdout is not a terminal")

// Surface 终端界面驱动的视图能力（*view.View 实现了它）
type Surface interface {
	Page() view.Page
	Connect(ctx context.Context) error
	Refresh(ctx context.Context) (*big.Int, error)
	Watch() (<-chan struct{}, func())
}

// Decider 处理待审批请求（*wallet.QueueApprover 实现了它）
type Decider interface {
	Decide(id string, approve bool) error
}

// Run 阻塞运行终端界面，直到用户退出或 ctx 结束。decider 可以为 nil。
func Run(ctx context.Context, s Surface, decider Decider) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return ErrNotTerminal
	}

	redraw, cancel := s.Watch()
	defer cancel()

	p := tea.NewProgram(newModel(ctx, s, decider, redraw), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		log.Errorf("终端界面运行错误: %v", err)
		return err
	}
	return nil
}
