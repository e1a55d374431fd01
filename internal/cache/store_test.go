package cache

import (
	"context"
	"testing"
	"time"

	"github.com/mkowalczyk/platecal/internal/db"
	"github.com/mkowalczyk/platecal/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	database, err := db.OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return NewStore(database)
}

func samplePlan() domain.Plan {
	start := time.Date(2024, 3, 3, 0, 0, 0, 0, time.Local)
	return domain.Plan{
		ID:        "p1",
		StartDate: start,
		EndDate:   start.AddDate(0, 0, 6),
		Days: []domain.MealSlot{
			{
				PlanID:   "p1",
				Date:     start,
				DayIndex: 0,
				RecipeID: "r1",
				Recipe: &domain.RecipeSummary{
					ID: "r1", Title: "Chili", MealType: domain.MealDinner,
					ImageURL: "chili.jpg", PrepTime: 15, CookTime: 45, Servings: 4,
				},
				MealType: domain.MealDinner,
				Status:   domain.StatusPlanned,
			},
			{
				PlanID:   "p1",
				Date:     start.AddDate(0, 0, 1),
				DayIndex: 1,
				RecipeID: "r2",
				MealType: domain.MealLunch,
				Status:   domain.StatusSkipped,
			},
		},
	}
}

func TestStore_SaveAndLoadRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "2024-03-03", []domain.Plan{samplePlan()}, []string{"2024-03-04"}))

	plans, skips, err := store.Load(ctx, "2024-03-03")
	require.NoError(t, err)
	require.Len(t, plans, 1)
	assert.Equal(t, "p1", plans[0].ID)
	assert.Equal(t, "2024-03-03", domain.DateKey(plans[0].StartDate))
	assert.Equal(t, "2024-03-09", domain.DateKey(plans[0].EndDate))
	require.Len(t, plans[0].Days, 2)

	enriched := plans[0].Days[0]
	require.NotNil(t, enriched.Recipe)
	assert.Equal(t, "Chili", enriched.Recipe.Title)
	assert.Equal(t, 45, enriched.Recipe.CookTime)

	bare := plans[0].Days[1]
	assert.Nil(t, bare.Recipe)
	assert.Equal(t, domain.StatusSkipped, bare.Status)

	assert.Equal(t, []string{"2024-03-04"}, skips)
}

func TestStore_SaveReplacesPreviousSnapshot(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "2024-03-03", []domain.Plan{samplePlan()}, []string{"2024-03-04"}))

	replacement := samplePlan()
	replacement.ID = "p2"
	for i := range replacement.Days {
		replacement.Days[i].PlanID = "p2"
	}
	require.NoError(t, store.Save(ctx, "2024-03-03", []domain.Plan{replacement}, nil))

	plans, skips, err := store.Load(ctx, "2024-03-03")
	require.NoError(t, err)
	require.Len(t, plans, 1)
	assert.Equal(t, "p2", plans[0].ID)
	assert.Empty(t, skips)
}

func TestStore_LoadMissingWindowIsEmpty(t *testing.T) {
	store := newTestStore(t)

	plans, skips, err := store.Load(context.Background(), "2024-01-01")
	require.NoError(t, err)
	assert.Empty(t, plans)
	assert.Empty(t, skips)
}

func TestStore_SnapshotsKeyedByWindowStart(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "2024-03-03", []domain.Plan{samplePlan()}, nil))
	require.NoError(t, store.Save(ctx, "2024-03-10", nil, []string{"2024-03-12"}))

	plans, _, err := store.Load(ctx, "2024-03-03")
	require.NoError(t, err)
	assert.Len(t, plans, 1)

	plans, skips, err := store.Load(ctx, "2024-03-10")
	require.NoError(t, err)
	assert.Empty(t, plans)
	assert.Equal(t, []string{"2024-03-12"}, skips)
}
