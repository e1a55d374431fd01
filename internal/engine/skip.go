package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/mkowalczyk/platecal/internal/domain"
)

// ToggleSkip flips a date between planned and skipped, idempotently per
// date. A date is considered skipped when either the skipped-day set
// contains it or its consolidated slot's status is skipped.
//
// The optimistic update lands before the network call; on failure the
// full pre-call snapshot is restored. While the mutation is in flight the
// controller's own window refreshes are suppressed so a fetch that has
// not yet observed the skip server-side cannot overwrite it.
func (e *Engine) ToggleSkip(ctx context.Context, date time.Time) error {
	key := domain.DateKey(date)

	e.mu.Lock()
	if e.skipInFlight {
		e.mu.Unlock()
		return fmt.Errorf("%w: skip", ErrBusy)
	}

	slot, hasSlot := e.index[key]
	currentlySkipped := e.skipped.Contains(key) || (hasSlot && slot.Status == domain.StatusSkipped)

	snap := e.snapshotLocked()
	if currentlySkipped {
		e.skipped.Remove(key)
	} else {
		e.skipped.Add(key)
	}
	if hasSlot {
		target := domain.StatusSkipped
		if currentlySkipped {
			target = domain.StatusPlanned
		}
		e.applySlotStatusLocked(slot.PlanID, slot.DayIndex, target)
	}
	e.skipInFlight = true
	e.mu.Unlock()

	var err error
	switch {
	case hasSlot:
		err = e.gw.SkipPlanDay(ctx, slot.PlanID, slot.DayIndex, !currentlySkipped)
	case currentlySkipped:
		err = e.gw.UnskipDate(ctx, key)
	default:
		err = e.gw.SkipDate(ctx, key)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.skipInFlight = false
	if err != nil {
		e.restoreLocked(snap)
		return fmt.Errorf("toggling skip for %s: %w", key, err)
	}
	return nil
}

// applySlotStatusLocked transitions the addressed slot in both the plan
// list and the day index, keeping the skipped set consistent.
func (e *Engine) applySlotStatusLocked(planID string, dayIndex int, to domain.MealStatus) {
	for pi := range e.plans {
		if e.plans[pi].ID != planID {
			continue
		}
		for di := range e.plans[pi].Days {
			if e.plans[pi].Days[di].DayIndex != dayIndex {
				continue
			}
			updated, err := domain.ApplyStatus(e.plans[pi].Days[di], to)
			if err != nil {
				continue
			}
			e.plans[pi].Days[di] = updated

			key := domain.DateKey(updated.Date)
			if existing, ok := e.index[key]; ok && existing.PlanID == planID && existing.DayIndex == dayIndex {
				e.index[key] = updated
			}
			if to == domain.StatusSkipped {
				e.skipped.Add(key)
			} else if existing, ok := e.index[key]; ok && existing.Status != domain.StatusSkipped {
				e.skipped.Remove(key)
			}
		}
	}
}
