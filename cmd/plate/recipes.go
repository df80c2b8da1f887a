package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Veraticus/plate-audit/internal/cli"
	"github.com/Veraticus/plate-audit/internal/model"
	"github.com/Veraticus/plate-audit/internal/upstream"
)

func recipesCmd() *cobra.Command {
	var (
		page       int
		limit      int
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "recipes",
		Short: "List the recipe catalogue",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			client, release, err := createUpstreamClient(ctx, slog.Default())
			if err != nil {
				return err
			}
			defer release()

			result, err := client.FetchRecipes(ctx, page, limit)
			if err != nil {
				return err
			}

			if jsonOutput {
				return printJSON(result)
			}

			fmt.Println(cli.FormatTitle("Recipes"))
			if len(result.Recipes) == 0 {
				fmt.Println(cli.FormatInfo("No recipes found"))
				return nil
			}
			for _, recipe := range result.Recipes {
				fmt.Println(formatRecipe(recipe))
			}
			if result.TotalCount > 0 {
				fmt.Println(cli.SubtleStyle.Render(fmt.Sprintf("Showing %d of %d", len(result.Recipes), result.TotalCount)))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().IntVar(&limit, "limit", upstream.DefaultRecipeLimit, "recipes per page")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "print recipes as JSON")

	return cmd
}

func formatRecipe(recipe model.Recipe) string {
	var tags []string
	for _, tag := range []string{recipe.Category, recipe.Cuisine, recipe.RecipeType} {
		if tag != "" {
			tags = append(tags, tag)
		}
	}

	line := fmt.Sprintf("%s  %s", cli.SubtleStyle.Render(recipe.ID), cli.BoldStyle.Render(recipe.Name))
	if len(tags) > 0 {
		line += "  " + cli.InfoStyle.Render(strings.Join(tags, " · "))
	}
	if len(recipe.Ingredients) > 0 {
		line += "\n    " + cli.SubtleStyle.Render(strings.Join(recipe.Ingredients, ", "))
	}
	return line
}
