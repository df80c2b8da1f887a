package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Veraticus/plate-audit/internal/audit"
	"github.com/Veraticus/plate-audit/internal/cli"
	"github.com/Veraticus/plate-audit/internal/model"
)

type auditOptions struct {
	override   model.ProfileOverride
	userID     string
	templateID string
	slotsFile  string
	diet       string
	outDir     string
	jsonOutput bool
}

func auditCmd() *cobra.Command {
	var opts auditOptions

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Audit a meal plan against a client's dietary profile",
		Long: `Fetch the client's profile, extract every dish from the meal plan, ask the
configured LLM which dishes conflict, and mark those dishes in the plan markup.

The plan comes from a diet template (--template) or a JSON file of slots
(--slots) shaped like [{"title": "Breakfast", "html": "<p>...</p>"}].`,
		Example: `  plate audit --user 1042 --template 77
  plate audit --user 1042 --slots plan.json --allergy peanuts --out ./marked
  plate audit --user 1042 --slots plan.json --json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			flags := cmd.Flags()
			if !flags.Changed("allergy") {
				opts.override.Allergies = nil
			}
			if !flags.Changed("aversion") {
				opts.override.FoodAversions = nil
			}
			if !flags.Changed("medical") {
				opts.override.MedicalConditions = nil
			}
			if opts.diet != "" {
				diet := model.ParseDietPreference(opts.diet)
				opts.override.DietPreference = &diet
			}
			return runAudit(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.userID, "user", "", "client user ID (required)")
	cmd.Flags().StringVar(&opts.templateID, "template", "", "diet template ID to audit")
	cmd.Flags().StringVar(&opts.slotsFile, "slots", "", "JSON file of meal slots to audit")
	cmd.Flags().StringSliceVar(&opts.override.Allergies, "allergy", nil, "override the profile's allergies")
	cmd.Flags().StringSliceVar(&opts.override.FoodAversions, "aversion", nil, "override the profile's food aversions")
	cmd.Flags().StringSliceVar(&opts.override.MedicalConditions, "medical", nil, "override the profile's medical conditions")
	cmd.Flags().StringVar(&opts.diet, "diet", "", "override the diet preference (Veg, NonVeg, Eggetarian, Vegan)")
	cmd.Flags().StringVar(&opts.outDir, "out", "", "write one marked-up HTML file per slot into this directory")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "print the structured response as JSON")
	_ = cmd.MarkFlagRequired("user")
	cmd.MarkFlagsMutuallyExclusive("template", "slots")
	cmd.MarkFlagsOneRequired("template", "slots")

	return cmd
}

func runAudit(ctx context.Context, opts auditOptions) error {
	service, client, release, err := createAuditService(ctx)
	if err != nil {
		return err
	}
	defer release()

	var slots []model.MealSlot
	if opts.slotsFile != "" {
		slots, err = readSlots(opts.slotsFile)
	} else {
		var tmpl model.DietTemplate
		tmpl, err = client.FindTemplate(ctx, opts.templateID)
		slots = tmpl.Slots
	}
	if err != nil {
		return err
	}

	handler := cli.NewInterruptHandler(os.Stderr)
	ctx, stop := handler.HandleInterrupts(ctx, "")
	defer stop()

	var spinner *cli.Spinner
	if !opts.jsonOutput {
		spinner = cli.StartSpinner(os.Stderr, "Auditing meal plan...")
	}
	result, runErr := service.Run(ctx, audit.Request{
		UserID:   opts.userID,
		Slots:    slots,
		Override: &opts.override,
	})
	if spinner != nil {
		spinner.Stop()
	}

	if opts.jsonOutput {
		if err := printJSON(audit.NewResponse(result, runErr)); err != nil {
			return err
		}
		if runErr != nil {
			return errors.New("audit failed")
		}
	} else {
		if runErr != nil {
			info := audit.NewResponse(result, runErr).Error
			fmt.Fprintln(os.Stderr, cli.FormatAuditFailure(info.Code, info.Message, info.Details))
			return errors.New("audit failed")
		}
		fmt.Println(cli.FormatAuditSummary(result))
	}

	if opts.outDir != "" {
		paths, err := writeSlots(opts.outDir, result.Slots)
		if err != nil {
			return err
		}
		if !opts.jsonOutput {
			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Wrote %d slot file(s) to %s", len(paths), opts.outDir)))
		}
	}
	return nil
}
