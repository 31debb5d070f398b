package commands

import (
	"net/http"

	"github.com/betbot/exchangett/internal/client"
	"github.com/betbot/exchangett/internal/web"
	"github.com/spf13/cobra"
)

func (o *options) printSession(s *web.SessionDTO) {
	o.printf("status:  %s\n", s.Status)
	if s.Address != "" {
		o.printf("address: %s\n", s.Address)
	}
	o.printf("balance: %s\n", s.Balance)
	o.printf("ether:   %s\n", s.BalanceEther)
	if s.Error != "" {
		o.printf("error:   %s\n", s.Error)
	}
}

func sessionCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "session",
		Short: "Show the current session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := o.context(cmd)
			defer cancel()
			s, err := o.client().Session(ctx)
			if err != nil {
				return err
			}
			o.printSession(s)
			return nil
		},
	}
}

func connectCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "connect",
		Short: "Ask the wallet to authorize the session (blocks until approved or rejected)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := o.context(cmd)
			defer cancel()
			s, err := o.client().Connect(ctx)
			if err != nil {
				return err
			}
			o.printSession(s)
			return nil
		},
	}
}

func refreshCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Refresh the balance of the connected account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := o.context(cmd)
			defer cancel()
			bal, err := o.client().RefreshBalance(ctx)
			if client.StatusOf(err) == http.StatusConflict {
				o.printf("session is not connected yet, run `walletctl connect` first\n")
				return err
			}
			if err != nil {
				return err
			}
			o.printf("%s balance: %s\n", bal.Address, bal.Balance)
			return nil
		},
	}
}
