package engine

import (
	"context"
	"fmt"

	"github.com/mkowalczyk/platecal/internal/api"
	"github.com/mkowalczyk/platecal/internal/domain"
	"github.com/mkowalczyk/platecal/internal/transform"
)

// SetStatus transitions one day's lifecycle status, addressed by plan id
// and day index. Missing addressing is a validation failure rejected
// before any network call. Setting the current status again is a no-op
// success. The frozen status is refused locally on the free tier.
func (e *Engine) SetStatus(ctx context.Context, planID string, dayIndex int, status domain.MealStatus) error {
	if planID == "" || dayIndex < 0 {
		return fmt.Errorf("%w: plan id and day index are required", ErrValidation)
	}
	if !domain.ValidMealStatuses[string(status)] {
		return fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}

	e.mu.Lock()
	if status == domain.StatusFrozen && !domain.FrozenAllowed(e.tier) {
		e.mu.Unlock()
		return fmt.Errorf("%w: freezer tracking needs a paid plan", api.ErrSubscriptionRequired)
	}

	slot, ok := e.findSlotLocked(planID, dayIndex)
	if !ok {
		e.mu.Unlock()
		return fmt.Errorf("%w: no meal found for plan %s day %d", ErrValidation, planID, dayIndex)
	}
	if slot.Status == status {
		e.mu.Unlock()
		return nil
	}
	if !domain.CanTransition(slot.Status, status) {
		e.mu.Unlock()
		return fmt.Errorf("%w: cannot move a %s meal to %s", ErrValidation, slot.Status, status)
	}

	snap := e.snapshotLocked()
	recipeID := slot.RecipeID
	dateKey := domain.DateKey(slot.Date)
	e.applySlotStatusLocked(planID, dayIndex, status)
	e.updating = true
	e.mu.Unlock()

	err := e.gw.UpdateDayStatus(ctx, planID, dayIndex, recipeID, status)

	e.mu.Lock()
	e.updating = false
	if err != nil {
		e.restoreLocked(snap)
		e.mu.Unlock()
		return fmt.Errorf("updating status for plan %s day %d: %w", planID, dayIndex, err)
	}
	e.mu.Unlock()

	if status == domain.StatusFrozen {
		item := api.FreezerItem{
			RecipeID:     recipeID,
			Quantity:     1,
			DateFrozen:   domain.DateKey(e.now()),
			MealPlanDate: dateKey,
		}
		if ferr := e.gw.AddFreezerItem(ctx, item); ferr != nil {
			e.logf("freezer inventory add failed: %v", ferr)
		}
	}

	e.scheduleReconciliation(ctx)
	return nil
}

// DeletePlan removes a plan and its slots, optimistically. On failure the
// pre-call state is restored.
func (e *Engine) DeletePlan(ctx context.Context, planID string) error {
	if planID == "" {
		return fmt.Errorf("%w: plan id is required", ErrValidation)
	}

	e.mu.Lock()
	found := false
	for _, p := range e.plans {
		if p.ID == planID {
			found = true
			break
		}
	}
	if !found {
		e.mu.Unlock()
		return fmt.Errorf("%w: no plan %s", ErrValidation, planID)
	}

	snap := e.snapshotLocked()
	kept := make([]domain.Plan, 0, len(e.plans))
	for _, p := range e.plans {
		if p.ID != planID {
			kept = append(kept, p)
		}
	}
	e.plans = kept
	e.index = transform.Consolidate(e.plans)
	e.updating = true
	e.mu.Unlock()

	err := e.gw.DeletePlan(ctx, planID)

	e.mu.Lock()
	e.updating = false
	if err != nil {
		e.restoreLocked(snap)
		e.mu.Unlock()
		return fmt.Errorf("deleting plan %s: %w", planID, err)
	}
	e.mu.Unlock()

	e.scheduleReconciliation(ctx)
	return nil
}

func (e *Engine) findSlotLocked(planID string, dayIndex int) (domain.MealSlot, bool) {
	for _, p := range e.plans {
		if p.ID != planID {
			continue
		}
		for _, d := range p.Days {
			if d.DayIndex == dayIndex {
				return d, true
			}
		}
	}
	return domain.MealSlot{}, false
}
