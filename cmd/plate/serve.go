package main

import (
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/plate-audit/internal/toolserver"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the audit tools over HTTP",
		Long: `Start an HTTP endpoint accepting MCP tool calls for audit_meal_plan,
extract_dishes and highlight_conflicts.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			service, client, release, err := createAuditService(ctx)
			if err != nil {
				return err
			}
			defer release()

			srv := toolserver.New(toolserver.Config{Addr: viper.GetString("serve.addr")}, service, client, slog.Default())
			return srv.Start(ctx)
		},
	}

	cmd.Flags().String("addr", ":8011", "listen address")
	_ = viper.BindPFlag("serve.addr", cmd.Flags().Lookup("addr"))

	return cmd
}
