package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"go-parish-admin/internal/model"
)

var trashCmd = &cobra.Command{
	Use:   "trash",
	Short: "Inspect, restore and purge soft-deleted records",
}

var (
	flagTrashTable   string
	flagCascade      bool
	flagOverrides    []string
	flagConfirmPurge bool
)

func init() {
	trashListCmd.Flags().StringVar(&flagTrashTable, "table", "", "only entries from this table")
	trashRestoreCmd.Flags().BoolVar(&flagCascade, "cascade", false, "also restore the linked sacrament document")
	trashRestoreCmd.Flags().StringArrayVar(&flagOverrides, "set", nil, "field override as key=value (value parsed as JSON when possible)")
	trashPurgeCmd.Flags().BoolVar(&flagConfirmPurge, "yes", false, "confirm permanent removal")

	trashCmd.AddCommand(trashListCmd, trashShowCmd, trashRestoreCmd, trashPurgeCmd)
}

var trashListCmd = &cobra.Command{
	Use:   "list",
	Short: "List trash entries, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		entries, err := core.Lifecycle.ListTrash(commandContext(cmd), flagTrashTable)
		if err != nil {
			return err
		}
		if flagJSON {
			return printJSON(cmd.OutOrStdout(), entries)
		}
		return printTrash(cmd.OutOrStdout(), entries)
	},
}

var trashShowCmd = &cobra.Command{
	Use:   "show <trash-id>",
	Short: "Show a trash entry with its snapshot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		entry, err := core.Lifecycle.GetTrashEntry(commandContext(cmd), args[0])
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), entry)
	},
}

var trashRestoreCmd = &cobra.Command{
	Use:   "restore <trash-id>",
	Short: "Restore a trash entry as a new row",
	Example: `  parishctl trash restore 6f1c... --actor-email office@parish.ph
  parishctl trash restore 6f1c... --cascade --set status='"pending"'`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		who, err := actor()
		if err != nil {
			return err
		}
		overrides, err := parseOverrides(flagOverrides)
		if err != nil {
			return err
		}

		restored, err := core.Lifecycle.Restore(commandContext(cmd), args[0], model.RestoreOptions{
			FieldOverrides: overrides,
			Cascade:        flagCascade,
		}, who)
		if err != nil {
			return err
		}
		if flagJSON {
			return printJSON(cmd.OutOrStdout(), restored)
		}
		return printRecord(cmd.OutOrStdout(), restored)
	},
}

var trashPurgeCmd = &cobra.Command{
	Use:   "purge <trash-id>",
	Short: "Permanently delete a trash entry and its stored files",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !flagConfirmPurge {
			return fmt.Errorf("purge cannot be undone; pass --yes to confirm")
		}

		result, err := core.Lifecycle.Purge(commandContext(cmd), args[0])
		if err != nil {
			return err
		}
		if flagJSON {
			return printJSON(cmd.OutOrStdout(), result)
		}
		return printPurge(cmd.OutOrStdout(), result)
	},
}

// parseOverrides turns key=value flags into field overrides. Values that parse as JSON keep
// their JSON type; anything else is a string.
func parseOverrides(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}

	overrides := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid override %q (expected key=value)", pair)
		}

		decoder := json.NewDecoder(strings.NewReader(value))
		decoder.UseNumber()
		var parsed any
		if err := decoder.Decode(&parsed); err != nil || decoder.More() {
			parsed = value
		}
		overrides[key] = parsed
	}
	return overrides, nil
}
