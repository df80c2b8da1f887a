package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/plate-audit/internal/cli"
	"github.com/Veraticus/plate-audit/internal/extract"
	"github.com/Veraticus/plate-audit/internal/model"
)

func extractCmd() *cobra.Command {
	var (
		slotsFile  string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "List the dishes found in a meal plan",
		Long:  `Extract dish names from a JSON file of meal slots without calling any service.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			slots, err := readSlots(slotsFile)
			if err != nil {
				return err
			}

			entries := extract.Slots(slots)
			if jsonOutput {
				if entries == nil {
					entries = []model.DishEntry{}
				}
				return printJSON(map[string]any{
					"dishes":       entries,
					"unique_names": extract.UniqueNames(entries),
				})
			}

			fmt.Println(cli.FormatDishes(entries))
			return nil
		},
	}

	cmd.Flags().StringVar(&slotsFile, "slots", "", "JSON file of meal slots (required)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "print dishes as JSON")
	_ = cmd.MarkFlagRequired("slots")

	return cmd
}
