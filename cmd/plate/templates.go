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

func templatesCmd() *cobra.Command {
	var (
		query      upstream.TemplateQuery
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "templates",
		Short: "List diet templates",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			client, release, err := createUpstreamClient(ctx, slog.Default())
			if err != nil {
				return err
			}
			defer release()

			page, err := client.FetchTemplates(ctx, query)
			if err != nil {
				return err
			}

			if jsonOutput {
				return printJSON(page)
			}

			fmt.Println(cli.FormatTitle("Diet Templates"))
			if len(page.Templates) == 0 {
				fmt.Println(cli.FormatInfo("No templates found"))
				return nil
			}
			for _, tmpl := range page.Templates {
				fmt.Println(formatTemplate(tmpl))
			}
			if page.TotalPages > 1 {
				fmt.Println(cli.SubtleStyle.Render(fmt.Sprintf("Page %d of %d", max(query.Page, 1), page.TotalPages)))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&query.Search, "search", "", "filter templates by name")
	cmd.Flags().IntVar(&query.Page, "page", 1, "page number")
	cmd.Flags().IntVar(&query.Limit, "limit", upstream.DefaultTemplateLimit, "templates per page")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "print templates as JSON")

	return cmd
}

func formatTemplate(tmpl model.DietTemplate) string {
	status := cli.SuccessStyle.Render(tmpl.Status)
	if tmpl.Status != upstream.TemplateReady {
		status = cli.WarningStyle.Render(tmpl.Status)
	}

	titles := make([]string, 0, len(tmpl.Slots))
	for _, slot := range tmpl.Slots {
		titles = append(titles, slot.Title)
	}

	return fmt.Sprintf("%s  %s  %s\n    %s",
		cli.SubtleStyle.Render(tmpl.ID),
		cli.BoldStyle.Render(tmpl.Name),
		status,
		cli.SubtleStyle.Render(strings.Join(titles, " · ")))
}
