package db

import (
	"database/sql"
	"fmt"
)

// Migrate runs all schema migrations. Statements are idempotent so the
// whole list re-runs on every open.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS window_snapshots (
		window_start TEXT PRIMARY KEY,
		saved_at     TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS snapshot_plans (
		window_start TEXT NOT NULL REFERENCES window_snapshots(window_start) ON DELETE CASCADE,
		plan_id      TEXT NOT NULL,
		start_date   TEXT NOT NULL,
		end_date     TEXT NOT NULL,
		created_at   TEXT NOT NULL DEFAULT '',
		updated_at   TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (window_start, plan_id)
	)`,

	`CREATE TABLE IF NOT EXISTS snapshot_days (
		window_start       TEXT NOT NULL,
		plan_id            TEXT NOT NULL,
		day_index          INTEGER NOT NULL,
		date               TEXT NOT NULL,
		recipe_id          TEXT NOT NULL DEFAULT '',
		meal_type          TEXT NOT NULL DEFAULT 'dinner'
		                   CHECK(meal_type IN ('breakfast','lunch','dinner','snacks')),
		status             TEXT NOT NULL DEFAULT 'planned'
		                   CHECK(status IN ('planned','cooked','frozen','consumed','skipped')),
		recipe_title       TEXT NOT NULL DEFAULT '',
		recipe_description TEXT NOT NULL DEFAULT '',
		recipe_meal_type   TEXT NOT NULL DEFAULT '',
		recipe_image_url   TEXT NOT NULL DEFAULT '',
		recipe_prep_time   INTEGER NOT NULL DEFAULT 0,
		recipe_cook_time   INTEGER NOT NULL DEFAULT 0,
		recipe_servings    INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (window_start, plan_id, day_index),
		FOREIGN KEY (window_start, plan_id)
			REFERENCES snapshot_plans(window_start, plan_id) ON DELETE CASCADE
	)`,

	`CREATE INDEX IF NOT EXISTS idx_snapshot_days_date ON snapshot_days(date)`,

	`CREATE TABLE IF NOT EXISTS snapshot_skips (
		window_start TEXT NOT NULL REFERENCES window_snapshots(window_start) ON DELETE CASCADE,
		date         TEXT NOT NULL,
		PRIMARY KEY (window_start, date)
	)`,
}
