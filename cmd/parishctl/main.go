// Command parishctl is the operator console for the parish record lifecycle: it inspects
// and drives the trash, the audit log and pending operations directly against the database.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"go-parish-admin/internal/app"
	"go-parish-admin/internal/config"
	"go-parish-admin/internal/logger"
	"go-parish-admin/internal/model"
)

var (
	flagJSON       bool
	flagActorName  string
	flagActorEmail string
	flagLogLevel   string

	core *app.Core
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "parishctl",
	Short:         "Operate the parish record trash, audit log and pending operations",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		slog.SetDefault(logger.New(os.Stderr, flagLogLevel, "pretty"))

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		core, err = app.NewCore(cmd.Context(), cfg)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if core != nil {
			core.Close()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "output as JSON")
	rootCmd.PersistentFlags().StringVar(&flagActorName, "actor-name", envOr("PARISHCTL_ACTOR_NAME", ""), "display name recorded in the audit log")
	rootCmd.PersistentFlags().StringVar(&flagActorEmail, "actor-email", envOr("PARISHCTL_ACTOR_EMAIL", ""), "email recorded in the audit log")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(trashCmd)
	rootCmd.AddCommand(auditCmd)
	rootCmd.AddCommand(pendingCmd)
	rootCmd.AddCommand(recordsCmd)
}

func envOr(key string, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

// actor returns the operator identity for mutating commands.
func actor() (model.Actor, error) {
	email := strings.TrimSpace(flagActorEmail)
	if email == "" {
		return model.Actor{}, fmt.Errorf("--actor-email (or PARISHCTL_ACTOR_EMAIL) is required for this command")
	}

	name := strings.TrimSpace(flagActorName)
	if name == "" {
		name = email
	}
	return model.Actor{DisplayName: name, Email: email}, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
