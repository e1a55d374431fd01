// Package cache persists the last authoritative calendar window to a local
// SQLite database so a fresh session renders before its first fetch.
package cache

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mkowalczyk/platecal/internal/db"
	"github.com/mkowalczyk/platecal/internal/domain"
	"github.com/mkowalczyk/platecal/internal/transform"
)

// Store reads and writes window snapshots. Save replaces the snapshot for
// a window start atomically.
type Store struct {
	sqlDB *sql.DB
	uow   db.UnitOfWork
}

// NewStore creates a snapshot store over an opened database.
func NewStore(sqlDB *sql.DB) *Store {
	return &Store{sqlDB: sqlDB, uow: db.NewSQLiteUnitOfWork(sqlDB)}
}

const dayColumns = `plan_id, day_index, date, recipe_id, meal_type, status,
	recipe_title, recipe_description, recipe_meal_type, recipe_image_url,
	recipe_prep_time, recipe_cook_time, recipe_servings`

// Save stores the normalized window state under its window-start key,
// replacing any previous snapshot for that key.
func (s *Store) Save(ctx context.Context, windowStart string, plans []domain.Plan, skippedDays []string) error {
	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM window_snapshots WHERE window_start = ?`, windowStart); err != nil {
			return fmt.Errorf("clearing snapshot: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO window_snapshots (window_start, saved_at) VALUES (?, ?)`,
			windowStart, time.Now().UTC().Format(time.RFC3339)); err != nil {
			return fmt.Errorf("inserting snapshot: %w", err)
		}

		for _, p := range plans {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO snapshot_plans (window_start, plan_id, start_date, end_date, created_at, updated_at)
				VALUES (?, ?, ?, ?, ?, ?)`,
				windowStart, p.ID, domain.DateKey(p.StartDate), domain.DateKey(p.EndDate),
				formatOptional(p.CreatedAt), formatOptional(p.UpdatedAt)); err != nil {
				return fmt.Errorf("inserting snapshot plan %s: %w", p.ID, err)
			}
			for _, d := range p.Days {
				if err := insertDay(ctx, tx, windowStart, p.ID, d); err != nil {
					return err
				}
			}
		}

		for _, date := range skippedDays {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO snapshot_skips (window_start, date) VALUES (?, ?)`,
				windowStart, date); err != nil {
				return fmt.Errorf("inserting snapshot skip %s: %w", date, err)
			}
		}
		return nil
	})
}

func insertDay(ctx context.Context, tx db.DBTX, windowStart, planID string, d domain.MealSlot) error {
	var r domain.RecipeSummary
	if d.Recipe != nil {
		r = *d.Recipe
	}
	_, err := tx.ExecContext(ctx,
		`INSERT INTO snapshot_days (window_start, `+dayColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		windowStart, planID, d.DayIndex, domain.DateKey(d.Date), d.RecipeID,
		string(d.MealType), string(d.Status),
		r.Title, r.Description, string(r.MealType), r.ImageURL,
		r.PrepTime, r.CookTime, r.Servings)
	if err != nil {
		return fmt.Errorf("inserting snapshot day %d of plan %s: %w", d.DayIndex, planID, err)
	}
	return nil
}

// Load returns the snapshot stored under the window-start key. A missing
// snapshot yields empty results and a nil error.
func (s *Store) Load(ctx context.Context, windowStart string) ([]domain.Plan, []string, error) {
	plans, err := s.loadPlans(ctx, windowStart)
	if err != nil {
		return nil, nil, err
	}
	skips, err := s.loadSkips(ctx, windowStart)
	if err != nil {
		return nil, nil, err
	}
	return plans, skips, nil
}

func (s *Store) loadPlans(ctx context.Context, windowStart string) ([]domain.Plan, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT plan_id, start_date, end_date, created_at, updated_at
		FROM snapshot_plans WHERE window_start = ? ORDER BY start_date`, windowStart)
	if err != nil {
		return nil, fmt.Errorf("loading snapshot plans: %w", err)
	}
	defer rows.Close()

	var plans []domain.Plan
	for rows.Next() {
		var p domain.Plan
		var start, end, created, updated string
		if err := rows.Scan(&p.ID, &start, &end, &created, &updated); err != nil {
			return nil, fmt.Errorf("scanning snapshot plan: %w", err)
		}
		if p.StartDate, err = transform.ParseLocalDate(start); err != nil {
			return nil, fmt.Errorf("parsing snapshot plan start: %w", err)
		}
		if p.EndDate, err = transform.ParseLocalDate(end); err != nil {
			return nil, fmt.Errorf("parsing snapshot plan end: %w", err)
		}
		if t, err := time.Parse(time.RFC3339, created); err == nil {
			p.CreatedAt = t
		}
		if t, err := time.Parse(time.RFC3339, updated); err == nil {
			p.UpdatedAt = t
		}
		plans = append(plans, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating snapshot plans: %w", err)
	}

	for i := range plans {
		days, err := s.loadDays(ctx, windowStart, plans[i].ID)
		if err != nil {
			return nil, err
		}
		plans[i].Days = days
	}
	return plans, nil
}

func (s *Store) loadDays(ctx context.Context, windowStart, planID string) ([]domain.MealSlot, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT `+dayColumns+` FROM snapshot_days
		WHERE window_start = ? AND plan_id = ? ORDER BY day_index`, windowStart, planID)
	if err != nil {
		return nil, fmt.Errorf("loading snapshot days: %w", err)
	}
	defer rows.Close()

	var days []domain.MealSlot
	for rows.Next() {
		var d domain.MealSlot
		var date, mealType, status string
		var r domain.RecipeSummary
		var recipeMealType string
		if err := rows.Scan(&d.PlanID, &d.DayIndex, &date, &d.RecipeID, &mealType, &status,
			&r.Title, &r.Description, &recipeMealType, &r.ImageURL,
			&r.PrepTime, &r.CookTime, &r.Servings); err != nil {
			return nil, fmt.Errorf("scanning snapshot day: %w", err)
		}
		if d.Date, err = transform.ParseLocalDate(date); err != nil {
			return nil, fmt.Errorf("parsing snapshot day date: %w", err)
		}
		d.MealType = domain.NormalizeMealType(mealType)
		d.Status = domain.NormalizeMealStatus(status)
		if r.Title != "" {
			r.ID = d.RecipeID
			r.MealType = domain.NormalizeMealType(recipeMealType)
			d.Recipe = &r
		}
		days = append(days, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating snapshot days: %w", err)
	}
	return days, nil
}

func (s *Store) loadSkips(ctx context.Context, windowStart string) ([]string, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT date FROM snapshot_skips WHERE window_start = ? ORDER BY date`, windowStart)
	if err != nil {
		return nil, fmt.Errorf("loading snapshot skips: %w", err)
	}
	defer rows.Close()

	var skips []string
	for rows.Next() {
		var date string
		if err := rows.Scan(&date); err != nil {
			return nil, fmt.Errorf("scanning snapshot skip: %w", err)
		}
		skips = append(skips, date)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating snapshot skips: %w", err)
	}
	return skips, nil
}

func formatOptional(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}
