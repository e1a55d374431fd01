package transform

import (
	"github.com/mkowalczyk/platecal/internal/domain"
)

// Consolidate builds the Day Index from normalized plans. The calendar
// shows exactly one slot per date, so when entries from overlapping plans
// compete for a date the first entry seen wins unless a later candidate
// satisfies the replace rule in shouldReplace.
func Consolidate(plans []domain.Plan) domain.DayIndex {
	index := make(domain.DayIndex)
	for _, plan := range plans {
		for _, day := range plan.Days {
			key := domain.DateKey(day.Date)
			incumbent, exists := index[key]
			if !exists || shouldReplace(incumbent, day) {
				index[key] = day
			}
		}
	}
	return index
}

// shouldReplace biases the single visible slot per day toward "has a
// dinner" and "has a recipe": a candidate replaces the incumbent when the
// candidate is a dinner and the incumbent is not, or when the candidate
// carries a recipe reference or summary and the incumbent does not.
// The precedence is a tie-break heuristic, kept in one place so it can be
// changed in one line if product decides otherwise.
func shouldReplace(incumbent, candidate domain.MealSlot) bool {
	if candidate.MealType == domain.MealDinner && incumbent.MealType != domain.MealDinner {
		return true
	}
	if candidate.HasRecipe() && !incumbent.HasRecipe() {
		return true
	}
	if candidate.Recipe != nil && incumbent.Recipe == nil {
		return true
	}
	return false
}

// SkippedDatesFromIndex collects dates whose consolidated slot is skipped;
// merged with the backend's side-table listing to form the full skip view.
func SkippedDatesFromIndex(index domain.DayIndex) []string {
	var out []string
	for key, slot := range index {
		if slot.Status == domain.StatusSkipped {
			out = append(out, key)
		}
	}
	return out
}

// MissingRecipeIDs collects the distinct recipe ids referenced by slots
// that lack an inlined summary. The enrichment pass batch-fetches exactly
// this set.
func MissingRecipeIDs(plans []domain.Plan) []string {
	seen := make(map[string]bool)
	var out []string
	for _, p := range plans {
		for _, d := range p.Days {
			if d.RecipeID != "" && d.Recipe == nil && !seen[d.RecipeID] {
				seen[d.RecipeID] = true
				out = append(out, d.RecipeID)
			}
		}
	}
	return out
}

// MergeRecipes fills inlined summaries into slots that reference a fetched
// recipe and do not already carry one. Slots with an existing summary are
// left untouched. Returns the updated plans; inputs are not mutated.
func MergeRecipes(plans []domain.Plan, recipes map[string]*domain.RecipeSummary) []domain.Plan {
	if len(recipes) == 0 {
		return plans
	}
	out := make([]domain.Plan, len(plans))
	for i, p := range plans {
		np := p
		np.Days = make([]domain.MealSlot, len(p.Days))
		copy(np.Days, p.Days)
		for j, d := range np.Days {
			if d.Recipe == nil && d.RecipeID != "" {
				if r, ok := recipes[d.RecipeID]; ok {
					np.Days[j].Recipe = r
				}
			}
		}
		out[i] = np
	}
	return out
}
