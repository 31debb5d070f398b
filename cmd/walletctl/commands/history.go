package commands

import (
	"github.com/spf13/cobra"
)

func historyCmd(o *options) *cobra.Command {
	var (
		account string
		limit   int
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded balance history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := o.context(cmd)
			defer cancel()
			rows, err := o.client().Balances(ctx, account, limit)
			if err != nil {
				return err
			}
			for _, e := range rows {
				o.printf("%s  %s  %s  %s\n", e.TS.Local().Format("2006-01-02 15:04:05"), e.Account, e.Balance, e.Source)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&account, "account", "", "only this account")
	cmd.Flags().IntVar(&limit, "limit", 20, "max rows")
	return cmd
}
