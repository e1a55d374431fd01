package transform

import (
	"testing"
	"time"

	"github.com/mkowalczyk/platecal/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func slotOn(planID string, date time.Time, mealType domain.MealType, recipeID string) domain.MealSlot {
	return domain.MealSlot{
		PlanID:   planID,
		Date:     date,
		MealType: mealType,
		RecipeID: recipeID,
		Status:   domain.StatusPlanned,
	}
}

func TestConsolidate_OneSlotPerDate(t *testing.T) {
	d := time.Date(2024, 3, 5, 0, 0, 0, 0, time.Local)
	plans := []domain.Plan{
		{ID: "p1", Days: []domain.MealSlot{slotOn("p1", d, domain.MealDinner, "r1")}},
		{ID: "p2", Days: []domain.MealSlot{slotOn("p2", d, domain.MealDinner, "r2")}},
	}

	index := Consolidate(plans)
	require.Len(t, index, 1)
	// First entry wins when neither satisfies the replace rule.
	assert.Equal(t, "r1", index["2024-03-05"].RecipeID)
}

func TestConsolidate_DinnerWithRecipeReplacesLunchWithout(t *testing.T) {
	// Lunch with no recipe first, dinner with a recipe second; the
	// second must win.
	d := time.Date(2024, 3, 5, 0, 0, 0, 0, time.Local)
	plans := []domain.Plan{
		{ID: "p1", Days: []domain.MealSlot{slotOn("p1", d, domain.MealLunch, "")}},
		{ID: "p2", Days: []domain.MealSlot{slotOn("p2", d, domain.MealDinner, "r1")}},
	}

	index := Consolidate(plans)
	got := index["2024-03-05"]
	assert.Equal(t, domain.MealDinner, got.MealType)
	assert.Equal(t, "r1", got.RecipeID)
	assert.Equal(t, "p2", got.PlanID)
}

func TestConsolidate_RecipeBeatsNoRecipe(t *testing.T) {
	d := time.Date(2024, 3, 5, 0, 0, 0, 0, time.Local)
	plans := []domain.Plan{
		{ID: "p1", Days: []domain.MealSlot{slotOn("p1", d, domain.MealDinner, "")}},
		{ID: "p2", Days: []domain.MealSlot{slotOn("p2", d, domain.MealLunch, "r1")}},
	}

	got := Consolidate(plans)["2024-03-05"]
	assert.Equal(t, "r1", got.RecipeID, "candidate with a recipe replaces recipe-less incumbent")
}

func TestConsolidate_DinnerIncumbentKeptOverLaterLunch(t *testing.T) {
	d := time.Date(2024, 3, 5, 0, 0, 0, 0, time.Local)
	plans := []domain.Plan{
		{ID: "p1", Days: []domain.MealSlot{slotOn("p1", d, domain.MealDinner, "r1")}},
		{ID: "p2", Days: []domain.MealSlot{slotOn("p2", d, domain.MealLunch, "r2")}},
	}

	got := Consolidate(plans)["2024-03-05"]
	assert.Equal(t, "r1", got.RecipeID)
}

func TestConsolidate_Deterministic(t *testing.T) {
	d := time.Date(2024, 3, 5, 0, 0, 0, 0, time.Local)
	plans := []domain.Plan{
		{ID: "p1", Days: []domain.MealSlot{slotOn("p1", d, domain.MealLunch, "")}},
		{ID: "p2", Days: []domain.MealSlot{slotOn("p2", d, domain.MealDinner, "r1")}},
	}

	first := Consolidate(plans)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Consolidate(plans))
	}
}

func TestConsolidate_BasicWeekFetchScenario(t *testing.T) {
	// Window 2024-03-03 (Sun) .. 2024-03-09, backend returns five day
	// entries covering 03-03..03-05 and 03-07..03-08. The index holds
	// exactly those five dates; 03-06 and 03-09 are absent.
	mk := func(day int) domain.MealSlot {
		return slotOn("p1", time.Date(2024, 3, day, 0, 0, 0, 0, time.Local), domain.MealDinner, "r1")
	}
	plans := []domain.Plan{{
		ID:        "p1",
		StartDate: time.Date(2024, 3, 3, 0, 0, 0, 0, time.Local),
		EndDate:   time.Date(2024, 3, 9, 0, 0, 0, 0, time.Local),
		Days:      []domain.MealSlot{mk(3), mk(4), mk(5), mk(7), mk(8)},
	}}

	index := Consolidate(plans)
	require.Len(t, index, 5)
	for _, key := range []string{"2024-03-03", "2024-03-04", "2024-03-05", "2024-03-07", "2024-03-08"} {
		assert.Contains(t, index, key)
	}
	assert.NotContains(t, index, "2024-03-06")
	assert.NotContains(t, index, "2024-03-09")
}

func TestMissingRecipeIDs_DistinctAndOnlyUnenriched(t *testing.T) {
	d := time.Date(2024, 3, 5, 0, 0, 0, 0, time.Local)
	enriched := slotOn("p1", d, domain.MealDinner, "r1")
	enriched.Recipe = &domain.RecipeSummary{ID: "r1"}

	plans := []domain.Plan{{
		ID: "p1",
		Days: []domain.MealSlot{
			enriched,
			slotOn("p1", d.AddDate(0, 0, 1), domain.MealDinner, "r2"),
			slotOn("p1", d.AddDate(0, 0, 2), domain.MealDinner, "r2"),
			slotOn("p1", d.AddDate(0, 0, 3), domain.MealDinner, ""),
		},
	}}

	assert.Equal(t, []string{"r2"}, MissingRecipeIDs(plans))
}

func TestMergeRecipes_FillsOnlyMissingSummaries(t *testing.T) {
	d := time.Date(2024, 3, 5, 0, 0, 0, 0, time.Local)
	existing := &domain.RecipeSummary{ID: "r1", Title: "Original"}
	withSummary := slotOn("p1", d, domain.MealDinner, "r1")
	withSummary.Recipe = existing

	plans := []domain.Plan{{
		ID: "p1",
		Days: []domain.MealSlot{
			withSummary,
			slotOn("p1", d.AddDate(0, 0, 1), domain.MealDinner, "r2"),
		},
	}}

	merged := MergeRecipes(plans, map[string]*domain.RecipeSummary{
		"r1": {ID: "r1", Title: "Replacement"},
		"r2": {ID: "r2", Title: "Fetched"},
	})

	// Already-enriched slot keeps its summary.
	assert.Same(t, existing, merged[0].Days[0].Recipe)
	require.NotNil(t, merged[0].Days[1].Recipe)
	assert.Equal(t, "Fetched", merged[0].Days[1].Recipe.Title)

	// Inputs are not mutated.
	assert.Nil(t, plans[0].Days[1].Recipe)
}

func TestSkippedDatesFromIndex(t *testing.T) {
	d := time.Date(2024, 3, 5, 0, 0, 0, 0, time.Local)
	skipped := slotOn("p1", d, domain.MealDinner, "")
	skipped.Status = domain.StatusSkipped

	index := domain.DayIndex{
		"2024-03-05": skipped,
		"2024-03-06": slotOn("p1", d.AddDate(0, 0, 1), domain.MealDinner, "r1"),
	}

	assert.Equal(t, []string{"2024-03-05"}, SkippedDatesFromIndex(index))
}
