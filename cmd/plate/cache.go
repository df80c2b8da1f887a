package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/plate-audit/internal/cli"
)

func cacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect the persistent ingredient cache",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "stats",
		Short: "Show ingredient cache statistics",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openSQLiteCache(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			stats, err := store.Stats(cmd.Context())
			if err != nil {
				return err
			}

			lastUpdated := "never"
			if !stats.LastUpdated.IsZero() {
				lastUpdated = stats.LastUpdated.Local().Format("Jan 2, 2006 15:04")
			}
			content := fmt.Sprintf("Path:         %s\nEntries:      %d\nLast updated: %s",
				stats.Path, stats.Entries, lastUpdated)
			fmt.Println(cli.RenderBox("Ingredient Cache", content))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Delete every cached ingredient list",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openSQLiteCache(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			deleted, err := store.Clear(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Removed %d cached entries", deleted)))
			return nil
		},
	})

	return cmd
}
