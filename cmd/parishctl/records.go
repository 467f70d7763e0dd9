package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var flagDeleteReason string

var recordsCmd = &cobra.Command{
	Use:   "records",
	Short: "Act on live administrative records",
}

var recordsDeleteCmd = &cobra.Command{
	Use:   "delete <table> <id>",
	Short: "Move a record (and its sacrament document) to the trash",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil || id <= 0 {
			return fmt.Errorf("invalid record id %q", args[1])
		}

		who, err := actor()
		if err != nil {
			return err
		}

		entry, err := core.Lifecycle.SoftDelete(commandContext(cmd), args[0], id, flagDeleteReason, who)
		if err != nil {
			return err
		}
		if flagJSON {
			return printJSON(cmd.OutOrStdout(), entry)
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "moved %s#%d to trash as %s\n", entry.OriginalTable, entry.RecordID, entry.ID)
		return err
	},
}

func init() {
	recordsDeleteCmd.Flags().StringVar(&flagDeleteReason, "reason", "", "deletion reason")
	recordsCmd.AddCommand(recordsDeleteCmd)
}
