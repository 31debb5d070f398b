// Package commands walletctl 子命令：通过 HTTP API 操作运行中的 exchangett 会话。
package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/betbot/exchangett/internal/client"
	"github.com/spf13/cobra"
)

const defaultServer = "http://localhost:8080"

type options struct {
	server  string
	timeout time.Duration
	out     io.Writer
}

// Execute 运行 walletctl
func Execute() error {
	return NewRootCmd(os.Stdout).Execute()
}

// NewRootCmd 构造命令树，输出写到 out
func NewRootCmd(out io.Writer) *cobra.Command {
	opts := &options{out: out}

	root := &cobra.Command{
		Use:           "walletctl",
		Short:         "Inspect and drive an exchangett wallet session",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.SetOut(out)
	root.SetErr(out)

	server := strings.TrimSpace(os.Getenv("EXCHANGETT_SERVER"))
	if server == "" {
		server = defaultServer
	}
	root.PersistentFlags().StringVar(&opts.server, "server", server, "exchangett base URL")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", 30*time.Second, "request timeout (0 waits forever)")

	root.AddCommand(
		sessionCmd(opts),
		connectCmd(opts),
		refreshCmd(opts),
		approvalsCmd(opts),
		decideCmd(opts, "approve", true),
		decideCmd(opts, "reject", false),
		historyCmd(opts),
	)
	return root
}

func (o *options) client() *client.Client {
	return client.New(o.server)
}

func (o *options) context(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if o.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, o.timeout)
}

func (o *options) printf(format string, args ...any) {
	fmt.Fprintf(o.out, format, args...)
}
