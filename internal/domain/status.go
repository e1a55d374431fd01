package domain

import "fmt"

// CanTransition reports whether a status change is allowed by the slot
// lifecycle. Setting the same status twice is an idempotent no-op success.
// From skipped the only way out is back to planned; every non-skipped state
// may move to any other state including skipped.
func CanTransition(from, to MealStatus) bool {
	if from == to {
		return true
	}
	if from == StatusSkipped {
		return to == StatusPlanned
	}
	return ValidMealStatuses[string(to)]
}

// ApplyStatus returns the slot after a status transition. Entering skipped
// clears the recipe reference; leaving skipped does not restore it. The
// slot returns planned-but-empty and must be regenerated or reassigned.
func ApplyStatus(slot MealSlot, to MealStatus) (MealSlot, error) {
	if !CanTransition(slot.Status, to) {
		return slot, fmt.Errorf("invalid status transition %s -> %s", slot.Status, to)
	}
	slot.Status = to
	if to == StatusSkipped {
		slot.RecipeID = ""
		slot.Recipe = nil
	}
	return slot, nil
}

// FrozenAllowed reports whether the frozen status is available on the given
// tier. Freezer features are paid-only.
func FrozenAllowed(tier SubscriptionTier) bool {
	return tier != "" && tier != TierFree
}
