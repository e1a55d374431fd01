package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mattn/go-isatty"
	"github.com/mkowalczyk/platecal/internal/api"
	"github.com/mkowalczyk/platecal/internal/cache"
	"github.com/mkowalczyk/platecal/internal/cli"
	"github.com/mkowalczyk/platecal/internal/db"
	"github.com/mkowalczyk/platecal/internal/engine"
	"github.com/mkowalczyk/platecal/internal/tui"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Determine DB path: env var or default ~/.platecal/platecal.db
	dbPath := os.Getenv("PLATECAL_DB")
	if dbPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("finding home directory: %w", err)
		}
		dbPath = filepath.Join(home, ".platecal", "platecal.db")
	}

	database, err := db.OpenDB(dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	cfg := api.LoadConfig()
	var observer api.Observer = api.NoopObserver{}
	if cfg.LogCalls {
		observer = api.NewLogObserver(os.Stderr)
	}
	client := api.NewClient(cfg, observer)

	eng := engine.New(client, engine.Options{
		UserID:    cfg.UserID,
		Store:     cache.NewStore(database),
		LogWriter: os.Stderr,
	})

	// Bare invocation on a terminal opens the interactive calendar.
	if len(os.Args) == 1 && isInteractive() {
		return tui.Run(eng)
	}

	rootCmd := cli.NewRootCmd(&cli.App{Engine: eng})
	return rootCmd.Execute()
}

func isInteractive() bool {
	return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
}
