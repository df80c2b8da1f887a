package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Veraticus/plate-audit/internal/cli"
	"github.com/Veraticus/plate-audit/internal/highlight"
)

func highlightCmd() *cobra.Command {
	var (
		slotsFile     string
		conflictsFile string
		outDir        string
	)

	cmd := &cobra.Command{
		Use:   "highlight",
		Short: "Mark a known conflict list in a meal plan",
		Long: `Apply a conflict list to a JSON file of meal slots without calling the
classifier. Without --out the marked slots are printed as JSON.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			slots, err := readSlots(slotsFile)
			if err != nil {
				return err
			}
			conflicts, err := readConflicts(conflictsFile)
			if err != nil {
				return err
			}

			marked, traces := highlight.NewInjector(slog.Default()).Apply(slots, conflicts)

			if outDir == "" {
				return printJSON(map[string]any{"slots": marked, "traces": traces})
			}

			paths, err := writeSlots(outDir, marked)
			if err != nil {
				return err
			}
			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Marked %d occurrence(s), wrote %d file(s) to %s",
				len(traces), len(paths), outDir)))
			return nil
		},
	}

	cmd.Flags().StringVar(&slotsFile, "slots", "", "JSON file of meal slots (required)")
	cmd.Flags().StringVar(&conflictsFile, "conflicts", "", "JSON file of conflicts (required)")
	cmd.Flags().StringVar(&outDir, "out", "", "write one HTML file per slot into this directory")
	_ = cmd.MarkFlagRequired("slots")
	_ = cmd.MarkFlagRequired("conflicts")

	return cmd
}
