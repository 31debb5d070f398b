package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func approvalsCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "approvals",
		Short: "List pending wallet approval requests",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := o.context(cmd)
			defer cancel()
			items, err := o.client().Approvals(ctx)
			if err != nil {
				return err
			}
			if len(items) == 0 {
				o.printf("no pending approvals\n")
				return nil
			}
			for _, a := range items {
				o.printf("%s  %s  %s  %s\n", a.ID, a.Origin, a.Account, a.CreatedAt.Format("2006-01-02 15:04:05"))
			}
			return nil
		},
	}
}

func decideCmd(o *options, use string, approve bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: fmt.Sprintf("%s a pending approval request", use),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := o.context(cmd)
			defer cancel()
			if err := o.client().Decide(ctx, args[0], approve); err != nil {
				return err
			}
			o.printf("%s: %sd\n", args[0], use)
			return nil
		},
	}
}
