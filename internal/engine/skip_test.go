package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mkowalczyk/platecal/internal/api"
	"github.com/mkowalczyk/platecal/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToggleSkip_PlanAddressed(t *testing.T) {
	start := time.Date(2024, 3, 10, 0, 0, 0, 0, time.Local)
	gw := &fakeGateway{
		plans: []domain.Plan{weekPlan("p1", start, "r1", "r2")},
		sub:   api.Subscription{Tier: domain.TierStarter, DurationLimit: 7},
	}
	eng, _ := newTestEngine(t, gw)
	require.NoError(t, eng.Bootstrap(context.Background()))

	date := time.Date(2024, 3, 11, 0, 0, 0, 0, time.Local)
	require.NoError(t, eng.ToggleSkip(context.Background(), date))

	assert.Equal(t, []string{"p1:skip"}, gw.skipPlanCalls)
	assert.Empty(t, gw.skipDateCalls)

	view := eng.View()
	assert.True(t, view.Skipped.Contains("2024-03-11"))
	slot := view.Index["2024-03-11"]
	assert.Equal(t, domain.StatusSkipped, slot.Status)
	assert.Empty(t, slot.RecipeID, "entering skipped clears the recipe reference")
}

func TestToggleSkip_DateAddressedWithoutPlan(t *testing.T) {
	gw := &fakeGateway{sub: api.Subscription{Tier: domain.TierStarter, DurationLimit: 7}}
	eng, _ := newTestEngine(t, gw)
	require.NoError(t, eng.Bootstrap(context.Background()))

	date := time.Date(2024, 3, 12, 0, 0, 0, 0, time.Local)
	require.NoError(t, eng.ToggleSkip(context.Background(), date))
	require.NoError(t, eng.ToggleSkip(context.Background(), date))

	assert.Equal(t, []string{"skip:2024-03-12", "unskip:2024-03-12"}, gw.skipDateCalls)
	assert.Empty(t, gw.skipPlanCalls)
	assert.False(t, eng.View().Skipped.Contains("2024-03-12"))
}

func TestToggleSkip_RoundTripRestoresMembership(t *testing.T) {
	start := time.Date(2024, 3, 10, 0, 0, 0, 0, time.Local)
	gw := &fakeGateway{
		plans: []domain.Plan{weekPlan("p1", start, "r1")},
		sub:   api.Subscription{Tier: domain.TierStarter, DurationLimit: 7},
	}
	eng, _ := newTestEngine(t, gw)
	require.NoError(t, eng.Bootstrap(context.Background()))

	date := time.Date(2024, 3, 10, 0, 0, 0, 0, time.Local)
	require.NoError(t, eng.ToggleSkip(context.Background(), date))
	require.NoError(t, eng.ToggleSkip(context.Background(), date))

	view := eng.View()
	assert.False(t, view.Skipped.Contains("2024-03-10"))
	slot := view.Index["2024-03-10"]
	assert.Equal(t, domain.StatusPlanned, slot.Status)
	assert.Empty(t, slot.RecipeID, "unskip does not resurrect the cleared recipe")
}

func TestToggleSkip_FailureRollsBackFullSnapshot(t *testing.T) {
	start := time.Date(2024, 3, 10, 0, 0, 0, 0, time.Local)
	gw := &fakeGateway{
		plans:       []domain.Plan{weekPlan("p1", start, "r1", "r2", "r3")},
		skippedDays: []string{"2024-03-14"},
		sub:         api.Subscription{Tier: domain.TierStarter, DurationLimit: 7},
	}
	eng, _ := newTestEngine(t, gw)
	require.NoError(t, eng.Bootstrap(context.Background()))

	before := eng.View()
	gw.skipPlanErr = errors.New("backend down")

	err := eng.ToggleSkip(context.Background(), time.Date(2024, 3, 11, 0, 0, 0, 0, time.Local))
	require.Error(t, err)

	after := eng.View()
	assert.Equal(t, before.Plans, after.Plans)
	assert.Equal(t, before.Index, after.Index)
	assert.Equal(t, before.Skipped, after.Skipped)
}

func TestToggleSkip_SuppressesConcurrentRefresh(t *testing.T) {
	start := time.Date(2024, 3, 10, 0, 0, 0, 0, time.Local)
	gw := &fakeGateway{
		plans: []domain.Plan{weekPlan("p1", start, "r1")},
		sub:   api.Subscription{Tier: domain.TierStarter, DurationLimit: 7},
	}
	eng, _ := newTestEngine(t, gw)
	require.NoError(t, eng.Bootstrap(context.Background()))
	fetchesBefore := len(gw.fetchCalls)

	gw.onSkipPlan = func() {
		require.NoError(t, eng.Refresh(context.Background()))
	}
	require.NoError(t, eng.ToggleSkip(context.Background(), start))

	assert.Equal(t, fetchesBefore, len(gw.fetchCalls),
		"window refresh is suppressed while a skip mutation is in flight")
}

func TestToggleSkip_DetectsSkipFromSideTable(t *testing.T) {
	gw := &fakeGateway{
		skippedDays: []string{"2024-03-13"},
		sub:         api.Subscription{Tier: domain.TierStarter, DurationLimit: 7},
	}
	eng, _ := newTestEngine(t, gw)
	require.NoError(t, eng.Bootstrap(context.Background()))
	require.True(t, eng.View().Skipped.Contains("2024-03-13"))

	require.NoError(t, eng.ToggleSkip(context.Background(), time.Date(2024, 3, 13, 0, 0, 0, 0, time.Local)))

	assert.Equal(t, []string{"unskip:2024-03-13"}, gw.skipDateCalls)
	assert.False(t, eng.View().Skipped.Contains("2024-03-13"))
}
