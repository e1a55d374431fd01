package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newViewCmd(app *App) *cobra.Command {
	var showPlans bool

	cmd := &cobra.Command{
		Use:   "view",
		Short: "Show the meal calendar for the current window",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.ensureReady(cmd.Context()); err != nil {
				return err
			}
			view := app.Engine.View()
			fmt.Fprint(cmd.OutOrStdout(), RenderCalendar(view))
			if showPlans {
				fmt.Fprint(cmd.OutOrStdout(), RenderPlans(view))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showPlans, "plans", false, "Also list the plans backing the window")

	return cmd
}

func newNextCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "next",
		Short: "Page the calendar one window forward",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.ensureReady(cmd.Context()); err != nil {
				return err
			}
			if err := app.Engine.NavigateNow(cmd.Context(), 1); err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), RenderCalendar(app.Engine.View()))
			return nil
		},
	}
}

func newPrevCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "prev",
		Short: "Page the calendar one window back",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.ensureReady(cmd.Context()); err != nil {
				return err
			}
			if err := app.Engine.NavigateNow(cmd.Context(), -1); err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), RenderCalendar(app.Engine.View()))
			return nil
		},
	}
}

func newTodayCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "today",
		Short: "Jump the calendar back to the current date",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.ensureReady(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), RenderCalendar(app.Engine.View()))
			return nil
		},
	}
}
