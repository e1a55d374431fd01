package cli

import (
	"fmt"

	"github.com/mkowalczyk/platecal/internal/transform"
	"github.com/spf13/cobra"
)

func newSkipCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "skip <date>",
		Short: "Toggle a day between planned and skipped",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := transform.ParseLocalDate(args[0])
			if err != nil {
				return fmt.Errorf("invalid date %q, expected YYYY-MM-DD", args[0])
			}
			ctx := cmd.Context()
			if err := app.ensureReady(ctx); err != nil {
				return err
			}
			if err := app.Engine.ToggleSkip(ctx, date); err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), RenderCalendar(app.Engine.View()))
			return nil
		},
	}
}
