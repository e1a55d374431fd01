// Package cli provides the one-shot command surface over the scheduling
// engine: view, generate, skip, status, delete, and window navigation.
package cli

import (
	"context"

	"github.com/mkowalczyk/platecal/internal/engine"
	"github.com/spf13/cobra"
)

// App holds the wired engine shared by all commands.
type App struct {
	Engine *engine.Engine

	booted bool
}

// ensureReady bootstraps the engine once per invocation: subscription
// tier, cached snapshot, first window fetch.
func (a *App) ensureReady(ctx context.Context) error {
	if a.booted {
		return nil
	}
	if err := a.Engine.Bootstrap(ctx); err != nil {
		return err
	}
	a.booted = true
	return nil
}

// NewRootCmd creates the top-level "platecal" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "platecal",
		Short:         "Meal plan calendar",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newViewCmd(app),
		newGenerateCmd(app),
		newSkipCmd(app),
		newStatusCmd(app),
		newDeleteCmd(app),
		newNextCmd(app),
		newPrevCmd(app),
		newTodayCmd(app),
	)

	return root
}
