package cli

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/mkowalczyk/platecal/internal/api"
	"github.com/spf13/cobra"
)

func newGenerateCmd(app *App) *cobra.Command {
	var overwrite bool
	var yes bool

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a meal plan for the current window",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := app.ensureReady(ctx); err != nil {
				return err
			}

			if overwrite {
				if !yes && !confirmOverwrite() {
					fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
					return nil
				}
				if err := app.Engine.Overwrite(ctx); err != nil {
					return describeGenerateError(err)
				}
			} else if err := app.Engine.Generate(ctx); err != nil {
				if errors.Is(err, api.ErrConflict) {
					if !confirmOverwrite() {
						fmt.Fprintln(cmd.OutOrStdout(), "Kept the existing plan.")
						return nil
					}
					if err := app.Engine.Overwrite(ctx); err != nil {
						return describeGenerateError(err)
					}
				} else {
					return describeGenerateError(err)
				}
			}

			fmt.Fprint(cmd.OutOrStdout(), RenderCalendar(app.Engine.View()))
			return nil
		},
	}

	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace plans that overlap the window")
	cmd.Flags().BoolVar(&yes, "yes", false, "Skip the overwrite confirmation prompt")

	return cmd
}

func confirmOverwrite() bool {
	confirmed := false
	form := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title("A plan already covers part of this window.").
			Description("Regenerating replaces it entirely. Continue?").
			Affirmative("Replace").
			Negative("Keep").
			Value(&confirmed),
	))
	if err := form.Run(); err != nil {
		return false
	}
	return confirmed
}

func describeGenerateError(err error) error {
	switch {
	case errors.Is(err, api.ErrNoSavedRecipes):
		return fmt.Errorf("no saved recipes to plan with; save some recipes first")
	case errors.Is(err, api.ErrSubscriptionLimit):
		return fmt.Errorf("the requested plan length exceeds your subscription limit")
	case errors.Is(err, api.ErrSubscriptionRequired):
		return fmt.Errorf("meal plan generation needs a paid subscription")
	case errors.Is(err, api.ErrRateLimited):
		return fmt.Errorf("too many requests; try again shortly")
	case errors.Is(err, api.ErrUnavailable):
		return fmt.Errorf("the meal plan service is temporarily unavailable; try again in a moment")
	default:
		return err
	}
}
