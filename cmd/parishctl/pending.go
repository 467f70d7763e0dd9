package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var flagIncludeResolved bool

var pendingCmd = &cobra.Command{
	Use:   "pending",
	Short: "Review lifecycle operations that stopped part-way",
}

var pendingListCmd = &cobra.Command{
	Use:   "list",
	Short: "List pending operations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ops, err := core.Pending.List(commandContext(cmd), flagIncludeResolved)
		if err != nil {
			return err
		}
		if flagJSON {
			return printJSON(cmd.OutOrStdout(), ops)
		}
		return printPending(cmd.OutOrStdout(), ops)
	},
}

var pendingResolveCmd = &cobra.Command{
	Use:   "resolve <pending-id>",
	Short: "Mark a pending operation as handled",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		who, err := actor()
		if err != nil {
			return err
		}

		op, err := core.Pending.Resolve(commandContext(cmd), args[0], who)
		if err != nil {
			return err
		}
		if flagJSON {
			return printJSON(cmd.OutOrStdout(), op)
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "resolved %s at %s\n", op.ID, op.ResolvedAt)
		return err
	},
}

func init() {
	pendingListCmd.Flags().BoolVar(&flagIncludeResolved, "all", false, "include resolved operations")
	pendingCmd.AddCommand(pendingListCmd, pendingResolveCmd)
}
