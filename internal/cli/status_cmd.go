package cli

import (
	"fmt"
	"strconv"

	"github.com/mkowalczyk/platecal/internal/domain"
	"github.com/spf13/cobra"
)

func newStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status <plan-id> <day-index> <planned|cooked|frozen|consumed|skipped>",
		Short: "Set the lifecycle status of one planned meal",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			dayIndex, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("day index must be a number, got %q", args[1])
			}
			if !domain.ValidMealStatuses[args[2]] {
				return fmt.Errorf("unknown status %q", args[2])
			}

			ctx := cmd.Context()
			if err := app.ensureReady(ctx); err != nil {
				return err
			}
			if err := app.Engine.SetStatus(ctx, args[0], dayIndex, domain.MealStatus(args[2])); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Day %d of plan %s is now %s.\n", dayIndex, args[0], args[2])
			return nil
		},
	}
}
