package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/mkowalczyk/platecal/internal/api"
	"github.com/mkowalczyk/platecal/internal/calendar"
	"github.com/mkowalczyk/platecal/internal/domain"
	"github.com/mkowalczyk/platecal/internal/transform"
)

// Generate requests a new plan for the current window. When an existing
// plan overlaps the window it short-circuits into the conflict branch
// without issuing a generation request; the caller confirms and retries
// through Overwrite.
func (e *Engine) Generate(ctx context.Context) error {
	return e.generate(ctx, false)
}

// Overwrite regenerates over existing plans. Conflicts are not re-checked;
// the user has already confirmed.
func (e *Engine) Overwrite(ctx context.Context) error {
	return e.generate(ctx, true)
}

func (e *Engine) generate(ctx context.Context, overwrite bool) error {
	e.mu.Lock()
	if e.generating {
		e.mu.Unlock()
		return fmt.Errorf("%w: generation", ErrBusy)
	}
	if e.durationLimit == 0 {
		e.mu.Unlock()
		return fmt.Errorf("%w: meal planning is not included in the current plan", api.ErrSubscriptionRequired)
	}

	window := calendar.ComputeWindow(e.cursor, e.durationLimit, e.plans)
	if !overwrite {
		for _, p := range e.plans {
			if planOverlapsWindow(p, window) {
				e.mu.Unlock()
				return fmt.Errorf("%w: a plan already covers %s to %s",
					api.ErrConflict, domain.DateKey(p.StartDate), domain.DateKey(p.EndDate))
			}
		}
	}

	start, duration := e.generationRangeLocked(window)
	end := start.AddDate(0, 0, duration-1)
	skippedDays := e.skipped.Within(start, end)
	if skippedDays == nil {
		skippedDays = []string{}
	}
	req := api.GenerateRequest{
		UserID:      e.userID,
		StartDate:   domain.DateKey(start),
		Duration:    duration,
		SkippedDays: skippedDays,
		Overwrite:   overwrite,
		MealsPerDay: 1,
	}
	e.generating = true
	e.mu.Unlock()

	plans, err := e.gw.Generate(ctx, req)

	e.mu.Lock()
	e.generating = false
	if err != nil {
		e.mu.Unlock()
		return err
	}
	e.installPlansLocked(plans)
	e.mu.Unlock()

	e.scheduleReconciliation(ctx)
	return nil
}

// generationRangeLocked picks the range to generate over. Regenerating a
// date an existing plan covers keeps that plan's original boundaries;
// otherwise the range follows the tier limit anchored on the window.
func (e *Engine) generationRangeLocked(window domain.CalendarWindow) (time.Time, int) {
	for _, p := range e.plans {
		if p.Contains(e.cursor) {
			return domain.Midnight(p.StartDate), p.DurationDays()
		}
	}
	duration := e.durationLimit
	if duration == domain.UnlimitedDuration {
		duration = e.defaultDuration
	}
	return window.StartDate, duration
}

// installPlansLocked installs generated plans optimistically: existing
// plans overlapping any new plan are superseded, not merged.
func (e *Engine) installPlansLocked(newPlans []domain.Plan) {
	kept := e.plans[:0]
	for _, p := range e.plans {
		overlaps := false
		for _, np := range newPlans {
			if plansOverlap(p, np) {
				overlaps = true
				break
			}
		}
		if !overlaps {
			kept = append(kept, p)
		}
	}
	e.plans = append(kept, newPlans...)
	e.index = transform.Consolidate(e.plans)
	for _, key := range transform.SkippedDatesFromIndex(e.index) {
		e.skipped.Add(key)
	}
	if e.store != nil {
		if err := e.store.Save(context.Background(), domain.DateKey(e.window.StartDate), e.plans, e.skipped.Sorted()); err != nil {
			e.logf("snapshot save failed: %v", err)
		}
	}
}

func planOverlapsWindow(p domain.Plan, w domain.CalendarWindow) bool {
	return !domain.Midnight(p.EndDate).Before(domain.Midnight(w.StartDate)) &&
		!domain.Midnight(p.StartDate).After(domain.Midnight(w.EndDate()))
}

func plansOverlap(a, b domain.Plan) bool {
	return !domain.Midnight(a.EndDate).Before(domain.Midnight(b.StartDate)) &&
		!domain.Midnight(a.StartDate).After(domain.Midnight(b.EndDate))
}
