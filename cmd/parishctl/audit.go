package main

import (
	"github.com/spf13/cobra"

	"go-parish-admin/internal/model"
)

var auditQuery model.AuditQuery

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Query the audit log",
}

var auditListCmd = &cobra.Command{
	Use:   "list",
	Short: "List audit entries, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		entries, meta, err := core.Audit.Query(commandContext(cmd), auditQuery)
		if err != nil {
			return err
		}
		if flagJSON {
			return printJSON(cmd.OutOrStdout(), map[string]any{"items": entries, "meta": meta})
		}
		return printAudit(cmd.OutOrStdout(), entries, meta)
	},
}

func init() {
	flags := auditListCmd.Flags()
	flags.StringVar(&auditQuery.Table, "table", "", "table name")
	flags.StringVar(&auditQuery.Action, "action", "", "CREATE, UPDATE, DELETE, RESTORE or CASCADE_DELETE")
	flags.Int64Var(&auditQuery.RecordID, "record-id", 0, "record id")
	flags.StringVar(&auditQuery.Actor, "actor", "", "substring of the performer's name or email")
	flags.StringVar(&auditQuery.From, "from", "", "RFC3339 lower bound")
	flags.StringVar(&auditQuery.To, "to", "", "RFC3339 upper bound")
	flags.IntVar(&auditQuery.Page, "page", 1, "page number")
	flags.IntVar(&auditQuery.Limit, "limit", 50, "entries per page")

	auditCmd.AddCommand(auditListCmd)
}
